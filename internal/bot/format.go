package bot

import (
	"fmt"

	"infosite/internal/models"
)

// mapsSearchURL is the Google Maps search endpoint the map links point to
const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// MapLink builds a Google Maps link for the coordinates.
// Values are used verbatim, as stored in the sheet.
func MapLink(latitude, longitude string) string {
	return mapsSearchURL + latitude + "," + longitude
}

// FormatSite renders a site as the fixed-layout reply sent to users
func FormatSite(site models.Site) string {
	return fmt.Sprintf("Codigo de Maximo: %s\n"+
		"ID: %s\n"+
		"Nombre: %s\n"+
		"Dirección: %s\n"+
		"Cuenta NIC: %s\n"+
		"Pto 0/1/0: %s\n"+
		"Pto 0/2/0: %s\n"+
		"Llaves: %s\n"+
		"Notas: %s\n"+
		"Coordenadas: %s, %s\n"+
		"\n"+
		"Ubicación en Maps: %s",
		site.AssetCode,
		site.ID,
		site.Name,
		site.Address,
		site.AccountReference,
		site.PortA,
		site.PortB,
		site.KeyLocation,
		site.Notes,
		site.Latitude, site.Longitude,
		MapLink(site.Latitude, site.Longitude),
	)
}
