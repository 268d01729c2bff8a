/*
aggregate.go - Per-identity joining of the three sources

PURPOSE:
  For one resolved identity, pulls the baseline row (exact key match ONLY -
  no fuzzy fallback for the plan of record), the latest forecast snapshot
  (exact key, then fuzzy name), and the sum of all matched actuals rows
  (exact key, or fuzzy over the distinct raw actual identifiers).

KEY INSIGHT:
  Row order is load-bearing. "Latest snapshot" is the LAST matching row in
  source order, and fuzzy ties keep the first maximal match, so nothing in
  here ever re-sorts source rows.

SEE ALSO:
  - match/resolver.go: The matching strategies
  - engine.go: Calls these per analyzed identity
*/
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/portfolio-engine/match"
	"github.com/warp/portfolio-engine/normalize"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// TYPED CELL EXTRACTION - nil when the column is absent or the cell is bad
// =============================================================================

func (s *Source) textAt(row int, f tabular.Field) *string {
	col, ok := s.Columns.Column(f)
	if !ok {
		return nil
	}
	v, ok := normalize.Text(s.Table.Value(row, col))
	if !ok {
		return nil
	}
	return &v
}

func (s *Source) numberAt(row int, f tabular.Field) *float64 {
	col, ok := s.Columns.Column(f)
	if !ok {
		return nil
	}
	v, ok := normalize.Number(s.Table.Value(row, col))
	if !ok {
		return nil
	}
	return &v
}

func (s *Source) moneyAt(row int, f tabular.Field) *decimal.Decimal {
	col, ok := s.Columns.Column(f)
	if !ok {
		return nil
	}
	v, ok := normalize.Money(s.Table.Value(row, col))
	if !ok {
		return nil
	}
	return &v
}

func (s *Source) dateAt(row int, f tabular.Field) *time.Time {
	col, ok := s.Columns.Column(f)
	if !ok {
		return nil
	}
	v, ok := normalize.Date(s.Table.Value(row, col))
	if !ok {
		return nil
	}
	return &v
}

// =============================================================================
// BASELINE - exact key match only
// =============================================================================

// baselineFor returns the baseline record and display name for an identity.
// The plan of record is authoritative, so only exact key matches count.
func (e *Engine) baselineFor(key string) (*BaselineMetrics, *string) {
	s := e.baseline
	if s == nil {
		return nil, nil
	}
	idCol, ok := s.Columns.Column(tabular.FieldID)
	if !ok {
		return nil, nil
	}
	rows := match.ExactRows(s.Table, idCol, key)
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]

	b := &BaselineMetrics{
		Start:             s.dateAt(row, tabular.FieldStartDate),
		Finish:            s.dateAt(row, tabular.FieldFinishDate),
		TotalBudget:       s.moneyAt(row, tabular.FieldBudget),
		Capex:             s.moneyAt(row, tabular.FieldCapex),
		Opex:              s.moneyAt(row, tabular.FieldOpex),
		EAC:               s.moneyAt(row, tabular.FieldEAC),
		PlannedHours:      s.numberAt(row, tabular.FieldHours),
		ScheduleHealth:    s.textAt(row, tabular.FieldScheduleHealth),
		BudgetHealth:      s.textAt(row, tabular.FieldBudgetHealth),
		RiskLevel:         s.textAt(row, tabular.FieldRisk),
		Owner:             s.textAt(row, tabular.FieldOwner),
		Strategic:         s.textAt(row, tabular.FieldStrategic),
		Benefits:          s.textAt(row, tabular.FieldBenefits),
		CompletionPct:     s.numberAt(row, tabular.FieldCompletion),
		Stage:             s.textAt(row, tabular.FieldStage),
		Interdependencies: s.textAt(row, tabular.FieldInterdeps),
	}
	return b, s.textAt(row, tabular.FieldName)
}

// =============================================================================
// FORECAST SNAPSHOT - exact key, then fuzzy name
// =============================================================================

// latestWaveRow resolves the latest snapshot row for an identity: last
// exact-key match in source order, else best fuzzy name match.
func (e *Engine) latestWaveRow(key string) (int, bool) {
	s := e.forecast
	if s == nil {
		return 0, false
	}
	if keyCol, ok := s.Columns.Column(tabular.FieldWaveNum); ok {
		if rows := match.ExactRows(s.Table, keyCol, key); len(rows) > 0 {
			return rows[len(rows)-1], true
		}
	}
	if nameCol, ok := s.Columns.Column(tabular.FieldName); ok {
		if row, _, ok := match.BestFuzzyRow(s.Table, nameCol, key, e.thresholds.FuzzyMatch); ok {
			return row, true
		}
	}
	return 0, false
}

func (e *Engine) waveFor(key string) *WaveSnapshot {
	row, ok := e.latestWaveRow(key)
	if !ok {
		return nil
	}
	s := e.forecast
	return &WaveSnapshot{
		SnapshotDate:   s.dateAt(row, tabular.FieldSnapshotDate),
		Status:         s.textAt(row, tabular.FieldStatus),
		Stage:          s.textAt(row, tabular.FieldStage),
		ForecastFinish: s.dateAt(row, tabular.FieldForecastFinish),
		CompletionPct:  s.numberAt(row, tabular.FieldCompletion),
		Complexity:     s.textAt(row, tabular.FieldComplexity),
		Owner:          s.textAt(row, tabular.FieldOwner),
		Budget:         s.moneyAt(row, tabular.FieldBudget),
		ValueLever:     s.textAt(row, tabular.FieldValueLever),
		ApprovalDate:   s.dateAt(row, tabular.FieldApprovalDate),
	}
}

// =============================================================================
// TREND EXTRACTION - needs the full snapshot history
// =============================================================================

// trendsFor tabulates a status histogram over all snapshot rows for the
// identity and flags recent deterioration. Requires a shared key column and
// at least two historical rows; below that, trends are absent.
func (e *Engine) trendsFor(key string) *WaveTrends {
	s := e.forecast
	if s == nil {
		return nil
	}
	keyCol, ok := s.Columns.Column(tabular.FieldWaveNum)
	if !ok {
		return nil
	}
	rows := match.ExactRows(s.Table, keyCol, key)
	if len(rows) < 2 {
		return nil
	}

	t := &WaveTrends{SnapshotCount: len(rows)}

	statusCol, ok := s.Columns.Column(tabular.FieldStatus)
	if !ok {
		return t
	}
	t.StatusDistribution = make(map[string]int)
	var known []string
	for _, row := range rows {
		status, ok := normalize.Text(s.Table.Value(row, statusCol))
		if !ok {
			continue
		}
		t.StatusDistribution[status]++
		known = append(known, status)
	}
	// Deterioration: either of the chronologically-last two known statuses
	// reads red or delayed (case-insensitive substring).
	tail := known
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	for _, status := range tail {
		if containsAny(status, "red", "delayed") {
			t.RecentDeterioration = true
		}
	}
	return t
}

// =============================================================================
// ACTUALS - summed over exact-key or fuzzy-id matched rows
// =============================================================================

// actualsRows collects the actuals rows for an identity: exact key on the
// shared key column when one exists, else fuzzy over the distinct raw ids.
func (e *Engine) actualsRows(key string) []int {
	s := e.actuals
	if s == nil {
		return nil
	}
	if keyCol, ok := s.Columns.Column(tabular.FieldWaveNum); ok {
		return match.ExactRows(s.Table, keyCol, key)
	}
	idCol, ok := s.Columns.Column(tabular.FieldID)
	if !ok {
		return nil
	}
	matched := match.FuzzyValues(s.Table, idCol, key, e.thresholds.FuzzyMatch)
	if len(matched) == 0 {
		return nil
	}
	want := make(map[string]bool, len(matched))
	for _, m := range matched {
		want[m] = true
	}
	var rows []int
	for i := 0; i < s.Table.Len(); i++ {
		if raw, ok := normalize.Text(s.Table.Value(i, idCol)); ok && want[raw] {
			rows = append(rows, i)
		}
	}
	return rows
}

func (e *Engine) actualsFor(key string) *ActualsSummary {
	rows := e.actualsRows(key)
	if len(rows) == 0 {
		return nil
	}
	s := e.actuals
	sum := &ActualsSummary{TransactionCount: len(rows)}

	// Hours: prefer the explicit actual-hours column, fall back to the
	// generic hours column. Missing CELLS are zero at summation time; a
	// missing COLUMN keeps the aggregate absent.
	hoursField, hasHours := tabular.FieldActualHours, s.Columns.Has(tabular.FieldActualHours)
	if !hasHours {
		hoursField, hasHours = tabular.FieldHours, s.Columns.Has(tabular.FieldHours)
	}
	if hasHours {
		total := 0.0
		for _, row := range rows {
			if v := s.numberAt(row, hoursField); v != nil {
				total += *v
			}
		}
		sum.TotalHours = &total
	}

	if s.Columns.Has(tabular.FieldActualCost) {
		total := decimal.Zero
		for _, row := range rows {
			if v := s.moneyAt(row, tabular.FieldActualCost); v != nil {
				total = total.Add(*v)
			}
		}
		sum.TotalCost = &total
	}

	if resCol, ok := s.Columns.Column(tabular.FieldResource); ok {
		distinct := make(map[string]bool)
		for _, row := range rows {
			if r, ok := normalize.Text(s.Table.Value(row, resCol)); ok {
				distinct[r] = true
			}
		}
		if len(distinct) > 0 {
			n := len(distinct)
			sum.UniqueResources = &n
		}
	}

	// Work span: first date field that parses for at least one matched row.
	for _, f := range tabular.DateFields() {
		if !s.Columns.Has(f) {
			continue
		}
		var earliest, latest *time.Time
		for _, row := range rows {
			d := s.dateAt(row, f)
			if d == nil {
				continue
			}
			if earliest == nil || d.Before(*earliest) {
				earliest = d
			}
			if latest == nil || d.After(*latest) {
				latest = d
			}
		}
		if earliest != nil {
			span := int(latest.Sub(*earliest).Hours() / 24)
			sum.WorkStart, sum.WorkEnd, sum.WorkSpanDays = earliest, latest, &span
			break
		}
	}

	return sum
}
