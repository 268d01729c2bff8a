/*
mapper.go - Heuristic column detection

PURPOSE:
  Maps arbitrary spreadsheet headers onto the canonical semantic fields.
  Detection runs once at load time; everything downstream reads only the
  resulting ColumnMap.

MATCHING PASSES (per field, in order):
  1. Exact match after lowercasing and trimming both sides
  2. Substring match in either direction
  3. Match after stripping separators ("_", " ", "-") from both sides

  Within each pass, columns are scanned in table order and every pattern is
  tried against a column before moving to the next; the first hit wins, so
  an earlier COLUMN takes priority for ambiguous header sets.

ID FALLBACK:
  A table with no detectable id column falls back to its first column. That
  is a low-confidence default, so it is surfaced as an operator warning.
  Every other field is silently absent when undetected.

SEE ALSO:
  - patterns.go: The per-field pattern lists
  - table.go: The raw input model
*/
package tabular

import "strings"

// =============================================================================
// COLUMN MAP
// =============================================================================

// ColumnMap maps semantic fields to detected column names for one source.
// A field is present only when a column was confidently matched; absence
// means "field unavailable", never a placeholder.
type ColumnMap map[Field]string

// Column returns the detected column name for a field.
func (m ColumnMap) Column(f Field) (string, bool) {
	c, ok := m[f]
	return c, ok
}

// Has reports whether a field was detected.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// DetectResult is the outcome of column detection for one table.
type DetectResult struct {
	Columns ColumnMap

	// IDDefaulted is set when no id column matched and the mapper fell back
	// to the table's first column.
	IDDefaulted bool

	// Warnings carries operator-visible detection notes (currently only the
	// id fallback).
	Warnings []string
}

// Detect builds the ColumnMap for a table. Nil or empty tables yield an
// empty map with no warnings.
func Detect(t *Table) DetectResult {
	res := DetectResult{Columns: ColumnMap{}}
	if t.Empty() {
		return res
	}

	for _, spec := range fieldCatalog {
		col, ok := detectColumn(t, spec.patterns)
		if !ok {
			continue
		}
		// The name field only counts when it is a distinct column from id;
		// otherwise it would double-report the identifier.
		if spec.field == FieldName && col == res.Columns[FieldID] {
			continue
		}
		res.Columns[spec.field] = col
	}

	if !res.Columns.Has(FieldID) {
		res.Columns[FieldID] = t.FirstColumn()
		res.IDDefaulted = true
		res.Warnings = append(res.Warnings,
			"no project id column detected - defaulting to first column '"+t.FirstColumn()+"'")
	}

	return res
}

// detectColumn runs the three matching passes for one pattern list.
func detectColumn(t *Table, patterns []string) (string, bool) {
	cols := t.Columns()

	// Pass 1: exact normalized equality.
	for _, col := range cols {
		cl := normalizeHeader(col)
		for _, p := range patterns {
			if cl == normalizeHeader(p) {
				return col, true
			}
		}
	}

	// Pass 2: substring either direction.
	for _, col := range cols {
		cl := normalizeHeader(col)
		for _, p := range patterns {
			pl := normalizeHeader(p)
			if strings.Contains(cl, pl) || strings.Contains(pl, cl) {
				return col, true
			}
		}
	}

	// Pass 3: separator-stripped comparison.
	for _, col := range cols {
		cs := stripSeparators(normalizeHeader(col))
		for _, p := range patterns {
			ps := stripSeparators(normalizeHeader(p))
			if cs == ps || strings.Contains(cs, ps) {
				return col, true
			}
		}
	}

	return "", false
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stripSeparators(s string) string {
	r := strings.NewReplacer("_", "", " ", "", "-", "")
	return r.Replace(s)
}
