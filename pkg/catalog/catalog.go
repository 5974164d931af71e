package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mediverifyng/mediverify/internal/utils"
)

// ErrCatalogUnavailable is returned when the catalog source is missing,
// unreadable or malformed. Without a catalog no verification is possible.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Record is one row of the reference catalog.
type Record struct {
	Code         string `json:"nafdac_number"`
	DrugName     string `json:"drug_name"`
	Manufacturer string `json:"manufacturer"`
	Status       string `json:"status"`
}

// Verified reports whether the record's status canonicalizes to VERIFIED.
// Any other status string, recognized or not, counts as not verified.
func (r Record) Verified() bool {
	return NormalizeCode(r.Status) == "VERIFIED"
}

// Catalog is the immutable in-memory reference table. It is safe to share
// across goroutines after load since nothing mutates it.
type Catalog struct {
	records []Record
	codes   []string // normalized, row order
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns the catalog rows in original order. Callers must not
// modify the returned slice.
func (c *Catalog) Records() []Record {
	return c.records
}

// Codes returns the normalized codes in original row order.
func (c *Catalog) Codes() []string {
	return c.codes
}

var requiredColumns = []string{"nafdac_number", "drug_name", "manufacturer", "status"}

// Read parses a catalog from CSV. The header must contain at least the
// nafdac_number, drug_name, manufacturer and status columns, in any order.
// Codes are normalized before being stored so lookups and catalog data go
// through the same canonicalization.
func Read(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCatalogUnavailable, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrCatalogUnavailable, col)
		}
	}

	cat := &Catalog{}
	seen := make(map[string]struct{})
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCatalogUnavailable, line, err)
		}

		rec := Record{
			Code:         NormalizeCode(row[idx["nafdac_number"]]),
			DrugName:     strings.TrimSpace(row[idx["drug_name"]]),
			Manufacturer: strings.TrimSpace(row[idx["manufacturer"]]),
			Status:       strings.TrimSpace(row[idx["status"]]),
		}
		if rec.Code == "" {
			continue
		}
		if _, dup := seen[rec.Code]; dup {
			// First row wins on lookup; keep the duplicate so row order
			// (and suggestion scoring) stays faithful to the source.
			utils.Log.Debugf("duplicate catalog code %s (line %d)", rec.Code, line)
		}
		seen[rec.Code] = struct{}{}
		cat.records = append(cat.records, rec)
		cat.codes = append(cat.codes, rec.Code)
	}

	return cat, nil
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]*Catalog)
)

// Load reads the catalog at path. The result is cached for the process
// lifetime: repeated calls with the same path return the same instance
// without re-reading the file.
func Load(path string) (*Catalog, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cat, ok := cache[abs]; ok {
		return cat, nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer f.Close()

	cat, err := Read(f)
	if err != nil {
		return nil, err
	}
	utils.Log.Debugf("loaded %d catalog records from %s", cat.Len(), abs)
	cache[abs] = cat
	return cat, nil
}
