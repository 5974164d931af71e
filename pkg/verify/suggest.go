package verify

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/mediverifyng/mediverify/pkg/catalog"
)

const (
	// DefaultLimit caps how many suggestions a caller gets back.
	DefaultLimit = 5
	// DefaultThreshold is the similarity score a candidate must strictly
	// exceed to be suggested.
	DefaultThreshold = 80
)

// Ratio computes a length-normalized similarity score between two strings
// in the inclusive range [0,100]. Identical strings score 100; the score
// decreases monotonically with edit distance.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0
	}
	// Round to nearest integer.
	return (100*(longest-dist)*2 + longest) / (2 * longest)
}

// Suggest ranks every catalog code by similarity to rawCode and returns the
// best candidates, highest score first. At most limit codes come back, and
// only those scoring strictly above threshold. Ties keep catalog row order,
// so output is deterministic for a fixed catalog and input. Intended for use
// after Verify reports NotFound.
func Suggest(cat *catalog.Catalog, rawCode string, limit, threshold int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	code := catalog.NormalizeCode(rawCode)
	if code == "" {
		return nil
	}

	codes := cat.Codes()
	type scored struct {
		code  string
		score int
	}
	candidates := make([]scored, 0, len(codes))
	for _, c := range codes {
		candidates = append(candidates, scored{code: c, score: Ratio(code, c)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var out []string
	for _, c := range candidates {
		if c.score > threshold {
			out = append(out, c.code)
		}
	}
	return out
}
