/*
table.go - Raw tabular input model

PURPOSE:
  Models a caller-supplied spreadsheet-like dataset: ordered named columns
  and ordered rows of heterogeneous cells. The engine only ever reads a
  Table; it never mutates one.

KEY CONCEPTS:
  - Table: ordered columns + ordered rows, cells are untyped (any)
  - Row order is significant: "latest snapshot" semantics depend on it,
    so nothing in this package ever re-sorts rows
  - Cell lookup is by column NAME, resolved through the column index
    built at construction time

DESIGN PRINCIPLES:
  1. Read-only: downstream packages receive values, never row storage
  2. Order preservation: rows and columns keep their source order
  3. No typing here: cell interpretation belongs to the normalize package

SEE ALSO:
  - mapper.go: Detects which column carries each semantic field
  - patterns.go: The semantic field catalog
*/
package tabular

// =============================================================================
// TABLE - Ordered columns, ordered rows, untyped cells
// =============================================================================

// Table is one raw tabular dataset (one per source).
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New builds a Table from column names and rows. Short rows are allowed;
// missing trailing cells read as nil.
func New(columns []string, rows [][]any) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    rows,
	}
	for i, c := range t.columns {
		// First occurrence wins for duplicate column names.
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
	return t
}

// Columns returns the column names in source order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no columns or no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.columns) == 0 || len(t.rows) == 0
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at (row, column name). Returns nil for unknown
// columns, out-of-range rows, or short rows.
func (t *Table) Value(row int, column string) any {
	if t == nil || row < 0 || row >= len(t.rows) {
		return nil
	}
	i, ok := t.index[column]
	if !ok || i >= len(t.rows[row]) {
		return nil
	}
	return t.rows[row][i]
}

// FirstColumn returns the name of the first column, or "" for an empty table.
func (t *Table) FirstColumn() string {
	if t == nil || len(t.columns) == 0 {
		return ""
	}
	return t.columns[0]
}
