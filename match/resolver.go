/*
resolver.go - Identity resolution strategies

PURPOSE:
  Determines which rows of a table belong to a given project identity. Two
  strategies, tried in order:

  1. ExactKey: normalize both sides (trim + upper-case) and require
     equality. Symmetric by construction.
  2. Fuzzy: similarity between the candidate and each row's name; accept
     the single highest-scoring row only when its score EXCEEDS the
     threshold. Ties keep the first maximal match under source row order.

  A failed resolution is "no data for that source", never an error.

SEE ALSO:
  - similarity.go: The ratio function
  - portfolio: Applies these strategies per source
*/
package match

import (
	"github.com/warp/portfolio-engine/normalize"
	"github.com/warp/portfolio-engine/tabular"
)

// DefaultThreshold is the fuzzy acceptance threshold; scores must exceed it.
// Policy constant, overridable through config.Thresholds.
const DefaultThreshold = 0.6

// KeysEqual reports whether two raw identifiers normalize to the same key.
// False when either side has no valid key.
func KeysEqual(a, b any) bool {
	ka, ok := normalize.Key(a)
	if !ok {
		return false
	}
	kb, ok := normalize.Key(b)
	if !ok {
		return false
	}
	return ka == kb
}

// ExactRows returns the indexes of all rows whose keyColumn value normalizes
// to the candidate key, in source order.
func ExactRows(t *tabular.Table, keyColumn string, candidate string) []int {
	key, ok := normalize.KeyString(candidate)
	if !ok || t.Empty() {
		return nil
	}
	var rows []int
	for i := 0; i < t.Len(); i++ {
		if k, ok := normalize.Key(t.Value(i, keyColumn)); ok && k == key {
			rows = append(rows, i)
		}
	}
	return rows
}

// BestFuzzyRow returns the row whose nameColumn value is most similar to the
// candidate, provided the score exceeds the threshold. ok=false when nothing
// clears the bar. First maximal match wins on ties.
func BestFuzzyRow(t *tabular.Table, nameColumn string, candidate string, threshold float64) (row int, score float64, ok bool) {
	if t.Empty() {
		return 0, 0, false
	}
	best := threshold
	bestRow := -1
	for i := 0; i < t.Len(); i++ {
		name, _ := normalize.Text(t.Value(i, nameColumn))
		if s := Similarity(candidate, name); s > best {
			best = s
			bestRow = i
		}
	}
	if bestRow < 0 {
		return 0, 0, false
	}
	return bestRow, best, true
}

// FuzzyValues returns the distinct raw values of column whose similarity to
// the candidate exceeds the threshold, in first-seen order. Used for actuals
// aggregation, where several raw spellings can belong to one project.
func FuzzyValues(t *tabular.Table, column string, candidate string, threshold float64) []string {
	if t.Empty() {
		return nil
	}
	seen := make(map[string]bool)
	var matched []string
	for i := 0; i < t.Len(); i++ {
		raw, ok := normalize.Text(t.Value(i, column))
		if !ok || seen[raw] {
			continue
		}
		seen[raw] = true
		if Similarity(candidate, raw) > threshold {
			matched = append(matched, raw)
		}
	}
	return matched
}
