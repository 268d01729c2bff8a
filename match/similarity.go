/*
similarity.go - Ratio-based string similarity

PURPOSE:
  Order-sensitive character-overlap similarity in [0, 1], used as the fuzzy
  fallback when two sources share no key column. Built on difflib's
  SequenceMatcher ratio, applied per character.

EDGE CASES:
  - Comparison is case- and whitespace-insensitive
  - A missing/empty side yields 0, never an error

SEE ALSO:
  - resolver.go: Uses similarity as the second matching strategy
*/
package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the sequence ratio between two strings in [0, 1].
// Both sides are lowercased and trimmed first; an empty side scores 0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
