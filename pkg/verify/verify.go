package verify

import (
	"github.com/mediverifyng/mediverify/pkg/catalog"
)

// Outcome classifies a single verification call.
type Outcome string

const (
	// Verified means the code matched a catalog record whose status is VERIFIED.
	Verified Outcome = "VERIFIED"
	// FoundUnverified means the code matched a record with any other status.
	FoundUnverified Outcome = "FOUND_UNVERIFIED"
	// NotFound means no catalog record matched. This is a normal outcome,
	// not an error.
	NotFound Outcome = "NOT_FOUND"
)

// LookupResult is the transient value produced per verification call.
type LookupResult struct {
	Outcome     Outcome         `json:"outcome"`
	Record      *catalog.Record `json:"record,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// Verify normalizes rawCode and scans the catalog for the first record with
// an equal normalized code. Row order decides between duplicates, so results
// are deterministic for a fixed catalog. Blank input yields NotFound rather
// than an error; callers are expected to reject it before getting here.
func Verify(cat *catalog.Catalog, rawCode string) LookupResult {
	code := catalog.NormalizeCode(rawCode)
	if code == "" {
		return LookupResult{Outcome: NotFound}
	}

	records := cat.Records()
	for i := range records {
		if records[i].Code != code {
			continue
		}
		rec := records[i]
		if rec.Verified() {
			return LookupResult{Outcome: Verified, Record: &rec}
		}
		return LookupResult{Outcome: FoundUnverified, Record: &rec}
	}
	return LookupResult{Outcome: NotFound}
}
