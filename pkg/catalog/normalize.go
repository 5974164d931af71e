package catalog

import "strings"

// NormalizeCode canonicalizes a registration code for identity: surrounding
// whitespace is trimmed and the result is upper-cased. The same rule is
// applied to catalog rows and to user input, otherwise exact-match lookups
// silently miss.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
