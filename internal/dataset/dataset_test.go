package dataset

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"infosite/internal/models"
)

var testHeader = []interface{}{
	"COD MAX", "ID", "NOMBRE", "DIRECCION", "CTA NIC", "TX A", "TX B", "LLAVES", "OBSERVACIONES", "Columna1", "Columna2",
}

// buildWorkbook writes an XLSX with the given sheet, header and rows into memory
func buildWorkbook(t *testing.T, sheet string, header []interface{}, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func sampleWorkbook(t *testing.T) *bytes.Buffer {
	return buildWorkbook(t, DefaultSheet, testHeader,
		[]interface{}{"MX-1", "42", "parque simón bolívar", "Calle 63 # 68-95", "NIC-9", "p1", "p2", "Portería", "Acceso 24h", "4.65", "-74.1"},
		[]interface{}{"MX-2", "B-07", "Biblioteca Virgilio Barco", "Av. Carrera 60 # 57-60", "NIC-10", "p3", "p4", "Caja", "", "4.656", "-74.09"},
		[]interface{}{},
		[]interface{}{"MX-3", "43", "Parque Simón Bolívar", "Duplicado", "NIC-11", "", "", "", "", "4.6", "-74.0"},
	)
}

func loadSample(t *testing.T) *Store {
	t.Helper()
	store, err := Load(sampleWorkbook(t), DefaultSheet)
	require.NoError(t, err)
	return store
}

func TestLoad_ReadsRowsInOrder(t *testing.T) {
	store := loadSample(t)

	// blank row is skipped
	assert.Equal(t, 3, store.Len())

	site, ok := store.FindByID("42")
	require.True(t, ok)
	assert.Equal(t, "MX-1", site.AssetCode)
	assert.Equal(t, "parque simón bolívar", site.Name)
	assert.Equal(t, "Calle 63 # 68-95", site.Address)
	assert.Equal(t, "NIC-9", site.AccountReference)
	assert.Equal(t, "p1", site.PortA)
	assert.Equal(t, "p2", site.PortB)
	assert.Equal(t, "Portería", site.KeyLocation)
	assert.Equal(t, "Acceso 24h", site.Notes)
	assert.Equal(t, "4.65", site.Latitude)
	assert.Equal(t, "-74.1", site.Longitude)
}

func TestLoad_NumberFormatsDoNotAlterValues(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", DefaultSheet))
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A1", &testHeader))
	row := []interface{}{"MX-5", 43, "Parque El Virrey", "Calle 88", "NIC-12", "", "", "", "", 4.6582137, -74.0938452}
	require.NoError(t, f.SetSheetRow(DefaultSheet, "A2", &row))

	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(DefaultSheet, "J2", "K2", twoDecimals))

	padded := "000"
	zeroPadded, err := f.NewStyle(&excelize.Style{CustomNumFmt: &padded})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(DefaultSheet, "B2", "B2", zeroPadded))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	store, err := Load(buf, DefaultSheet)
	require.NoError(t, err)

	site, ok := store.FindByID("43")
	require.True(t, ok)
	assert.Equal(t, "43", site.ID)
	assert.Equal(t, "4.6582137", site.Latitude)
	assert.Equal(t, "-74.0938452", site.Longitude)
}

func TestLoad_ShortRowsYieldEmptyFields(t *testing.T) {
	buf := buildWorkbook(t, DefaultSheet, testHeader,
		[]interface{}{"MX-9", "9", "Solo nombre"},
	)

	store, err := Load(buf, DefaultSheet)
	require.NoError(t, err)

	site, ok := store.FindByID("9")
	require.True(t, ok)
	assert.Equal(t, "Solo nombre", site.Name)
	assert.Empty(t, site.Notes)
	assert.Empty(t, site.Latitude)
}

func TestLoad_HeadersAreCaseInsensitive(t *testing.T) {
	header := []interface{}{" cod max", "Id", "Nombre", "Dirección", "cta nic", "tx a", "tx b", "Llaves", "Observaciones", "columna1", "COLUMNA2"}
	buf := buildWorkbook(t, DefaultSheet, header,
		[]interface{}{"MX-1", "1", "Uno", "Dir", "NIC", "a", "b", "k", "n", "1.0", "2.0"},
	)

	store, err := Load(buf, DefaultSheet)
	require.NoError(t, err)

	site, ok := store.FindByID("1")
	require.True(t, ok)
	assert.Equal(t, "Dir", site.Address)
	assert.Equal(t, "2.0", site.Longitude)
}

func TestLoad_MissingSheet(t *testing.T) {
	_, err := Load(sampleWorkbook(t), "Sitios Medellin")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "Sitios Medellin")
}

func TestLoad_MissingColumns(t *testing.T) {
	header := []interface{}{"ID", "NOMBRE"}
	buf := buildWorkbook(t, DefaultSheet, header, []interface{}{"1", "Uno"})

	_, err := Load(buf, DefaultSheet)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "DIRECCION")
	assert.Contains(t, err.Error(), "COLUMNA2")
}

func TestLoad_NotAWorkbook(t *testing.T) {
	_, err := Load(strings.NewReader("definitely not a zip"), DefaultSheet)
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitios.xlsx")
	require.NoError(t, os.WriteFile(path, sampleWorkbook(t).Bytes(), 0o600))

	store, err := LoadFile(path, DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.xlsx"), DefaultSheet)
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestFindByID(t *testing.T) {
	store := loadSample(t)

	testCases := []struct {
		name   string
		query  string
		wantOK bool
		wantID string
	}{
		{name: "exact", query: "42", wantOK: true, wantID: "42"},
		{name: "surrounding spaces", query: "  42  ", wantOK: true, wantID: "42"},
		{name: "non numeric id", query: "B-07", wantOK: true, wantID: "B-07"},
		{name: "ids are not compared numerically", query: "042", wantOK: false},
		{name: "unknown", query: "nonexistent-id-xyz", wantOK: false},
		{name: "blank", query: "   ", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			site, ok := store.FindByID(tc.query)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantID, site.ID)
		})
	}
}

func TestFindByID_EveryRecordIsReachable(t *testing.T) {
	sites := []models.Site{
		{ID: "1", Name: "Uno"},
		{ID: "2", Name: "Dos"},
		{ID: "X-3", Name: "Tres"},
	}
	store := NewStore(sites)

	for _, s := range sites {
		got, ok := store.FindByID(s.ID)
		require.True(t, ok, s.ID)
		assert.Equal(t, s, got)

		got, ok = store.FindByID("\t " + s.ID + " ")
		require.True(t, ok, s.ID)
		assert.Equal(t, s, got)

		got, ok = store.FindByName(" " + strings.ToUpper(s.Name))
		require.True(t, ok, s.Name)
		assert.Equal(t, s, got)
	}
}

func TestFindByName(t *testing.T) {
	store := loadSample(t)

	site, ok := store.FindByName("  Parque SIMÓN Bolívar ")
	require.True(t, ok)
	// first match in sheet order wins over the later duplicate
	assert.Equal(t, "42", site.ID)

	site, ok = store.FindByName("biblioteca virgilio barco")
	require.True(t, ok)
	assert.Equal(t, "B-07", site.ID)

	_, ok = store.FindByName("Parque")
	assert.False(t, ok, "partial names must not match")

	_, ok = store.FindByName("")
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	body := sampleWorkbook(t).Bytes()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write(body)
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store, err := Fetch(ctx, server.Client(), server.URL+"/ok", DefaultSheet)
		require.NoError(t, err)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := Fetch(ctx, server.Client(), server.URL+"/missing", DefaultSheet)
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("timeout", func(t *testing.T) {
		client := &http.Client{Timeout: 20 * time.Millisecond}
		_, err := Fetch(ctx, client, server.URL+"/slow", DefaultSheet)
		var loadErr *LoadError
		assert.True(t, errors.As(err, &loadErr))
	})
}
