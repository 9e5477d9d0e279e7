// Package dataset loads the sites spreadsheet and answers exact-match lookups.
//
// The sheet is read once at startup and never modified afterwards, so a Store
// is safe for concurrent use without locking.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"infosite/internal/models"
)

// DefaultSheet is the sheet holding the Bogotá sites
const DefaultSheet = "Sitios Bogota"

// maxDownloadSize caps the workbook body read from the network
const maxDownloadSize = 64 << 20

// LoadError reports a dataset that could not be fetched or parsed
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dataset from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// column describes where a header's value lands in a Site
type column struct {
	headers []string
	set     func(s *models.Site, v string)
}

// columns lists every required column. Headers are compared upper-cased and trimmed.
var columns = []column{
	{[]string{"ID"}, func(s *models.Site, v string) { s.ID = v }},
	{[]string{"NOMBRE"}, func(s *models.Site, v string) { s.Name = v }},
	{[]string{"DIRECCION", "DIRECCIÓN"}, func(s *models.Site, v string) { s.Address = v }},
	{[]string{"COD MAX"}, func(s *models.Site, v string) { s.AssetCode = v }},
	{[]string{"CTA NIC"}, func(s *models.Site, v string) { s.AccountReference = v }},
	{[]string{"TX A"}, func(s *models.Site, v string) { s.PortA = v }},
	{[]string{"TX B"}, func(s *models.Site, v string) { s.PortB = v }},
	{[]string{"LLAVES"}, func(s *models.Site, v string) { s.KeyLocation = v }},
	{[]string{"OBSERVACIONES"}, func(s *models.Site, v string) { s.Notes = v }},
	{[]string{"COLUMNA1", "LATITUD"}, func(s *models.Site, v string) { s.Latitude = v }},
	{[]string{"COLUMNA2", "LONGITUD"}, func(s *models.Site, v string) { s.Longitude = v }},
}

// Store holds the loaded sites in sheet order
type Store struct {
	sites []models.Site
}

// NewStore creates a store over already parsed sites
func NewStore(sites []models.Site) *Store {
	return &Store{sites: sites}
}

// Load parses an XLSX workbook and reads every row of the given sheet
func Load(r io.Reader, sheet string) (*Store, error) {
	return load(r, sheet, "reader")
}

// LoadFile opens a local XLSX file and loads the given sheet
func LoadFile(path, sheet string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	return load(f, sheet, path)
}

// Fetch downloads the workbook with a single GET request and loads the given sheet.
// The client's timeout bounds the whole download.
func Fetch(ctx context.Context, client *http.Client, url, sheet string) (*Store, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return load(bytes.NewReader(body), sheet, url)
}

func load(r io.Reader, sheet, source string) (*Store, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer book.Close()

	if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("sheet %q not found", sheet)}
	}

	rows, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("sheet %q has no header row", sheet)}
	}

	positions, err := headerPositions(rows[0])
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	sites := make([]models.Site, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		var site models.Site
		for i, col := range columns {
			col.set(&site, cell(row, positions[i]))
		}
		sites = append(sites, site)
	}

	return NewStore(sites), nil
}

// headerPositions returns, for each entry of columns, its index in the header row
func headerPositions(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToUpper(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	positions := make([]int, len(columns))
	var missing []string
	for i, col := range columns {
		positions[i] = -1
		for _, name := range col.headers {
			if pos, ok := index[name]; ok {
				positions[i] = pos
				break
			}
		}
		if positions[i] < 0 {
			missing = append(missing, col.headers[0])
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return positions, nil
}

// cell returns the value at pos, GetRows trims trailing empty cells
func cell(row []string, pos int) string {
	if pos >= len(row) {
		return ""
	}
	return row[pos]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of loaded sites
func (s *Store) Len() int {
	return len(s.sites)
}

// FindByID returns the first site whose trimmed ID equals the trimmed input.
// IDs are compared as strings since they may contain non-digits.
func (s *Store) FindByID(id string) (models.Site, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Site{}, false
	}
	for _, site := range s.sites {
		if strings.TrimSpace(site.ID) == id {
			return site, true
		}
	}
	return models.Site{}, false
}

// FindByName returns the first site whose name matches ignoring case and surrounding spaces
func (s *Store) FindByName(name string) (models.Site, bool) {
	name = normalizeName(name)
	if name == "" {
		return models.Site{}, false
	}
	for _, site := range s.sites {
		if normalizeName(site.Name) == name {
			return site, true
		}
	}
	return models.Site{}, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
