package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HELPERS
// =============================================================================

func money(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func fptr(f float64) *float64 { return &f }

func sptr(s string) *string { return &s }

func dateptr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// =============================================================================
// VARIANCE SIGN CONVENTION
// =============================================================================

func TestVariancePct_OverBudgetIsNegative(t *testing.T) {
	// GIVEN: 130K actual against a 100K baseline
	// WHEN: Computing variance
	// THEN: -30.0 (unfavorable), and the mirror case is +30.0

	pct, ok := variancePct(decimal.NewFromInt(130000), decimal.NewFromInt(100000))
	require.True(t, ok)
	assert.InDelta(t, -30.0, pct, 1e-9)

	pct, ok = variancePct(decimal.NewFromInt(70000), decimal.NewFromInt(100000))
	require.True(t, ok)
	assert.InDelta(t, 30.0, pct, 1e-9)
}

func TestVariancePct_ZeroBaseline_Absent(t *testing.T) {
	_, ok := variancePct(decimal.NewFromInt(500), decimal.Zero)
	assert.False(t, ok)
}

func TestVariancePct_NegativeBaseline_NormalizedByAbs(t *testing.T) {
	// Denominator is |baseline|, so the sign of the result tracks only the
	// baseline-minus-actual difference.
	pct, ok := variancePct(decimal.NewFromInt(-50), decimal.NewFromInt(-100))
	require.True(t, ok)
	assert.InDelta(t, -50.0, pct, 1e-9)
}

// =============================================================================
// METRIC GATING
// =============================================================================

func TestDeriveMetrics_AllInputsMissing_AllAbsent(t *testing.T) {
	d := deriveMetrics(nil, nil, nil)

	assert.Nil(t, d.CostVariancePct)
	assert.Nil(t, d.CostVarianceAmount)
	assert.Nil(t, d.EACVariancePct)
	assert.Nil(t, d.ScheduleVarianceDays)
	assert.Nil(t, d.DailyBurnRate)
	assert.Nil(t, d.CompletionPct)
	assert.Nil(t, d.RemainingBudget)
	assert.False(t, d.BudgetOverrun)
}

func TestDeriveMetrics_PartialInputs_OnlyComputableMetrics(t *testing.T) {
	// GIVEN: A budget but no actual cost
	// WHEN: Deriving metrics
	// THEN: Cost variance stays absent; nothing defaults to zero

	baseline := &BaselineMetrics{TotalBudget: money(100000)}
	d := deriveMetrics(baseline, nil, nil)

	assert.Nil(t, d.CostVariancePct)
	assert.Nil(t, d.RemainingBudget)
	assert.False(t, d.BudgetOverrun)
}

func TestDeriveMetrics_EACVariance(t *testing.T) {
	baseline := &BaselineMetrics{TotalBudget: money(100000), EAC: money(120000)}
	d := deriveMetrics(baseline, nil, nil)

	require.NotNil(t, d.EACVariancePct)
	assert.InDelta(t, -20.0, *d.EACVariancePct, 1e-9)
	require.NotNil(t, d.EACVarianceAmount)
	assert.True(t, d.EACVarianceAmount.Equal(decimal.NewFromInt(-20000)))
}

func TestDeriveMetrics_ScheduleVariance_NeedsBothFinishDates(t *testing.T) {
	baseline := &BaselineMetrics{Finish: dateptr(2024, time.June, 30)}

	d := deriveMetrics(baseline, &WaveSnapshot{}, nil)
	assert.Nil(t, d.ScheduleVarianceDays)

	wave := &WaveSnapshot{ForecastFinish: dateptr(2024, time.June, 10)}
	d = deriveMetrics(baseline, wave, nil)
	require.NotNil(t, d.ScheduleVarianceDays)
	assert.Equal(t, -20, *d.ScheduleVarianceDays) // ahead of plan
}

func TestDeriveMetrics_BurnRate_NeedsPositiveSpan(t *testing.T) {
	span0 := 0
	actuals := &ActualsSummary{TotalCost: money(5000), WorkSpanDays: &span0}
	d := deriveMetrics(nil, nil, actuals)
	assert.Nil(t, d.DailyBurnRate)

	span10 := 10
	actuals.WorkSpanDays = &span10
	d = deriveMetrics(nil, nil, actuals)
	require.NotNil(t, d.DailyBurnRate)
	assert.True(t, d.DailyBurnRate.Equal(decimal.NewFromInt(500)))
}

func TestDeriveMetrics_CompletionCoalesce_WaveWins(t *testing.T) {
	baseline := &BaselineMetrics{CompletionPct: fptr(40)}
	wave := &WaveSnapshot{CompletionPct: fptr(55)}

	d := deriveMetrics(baseline, wave, nil)
	require.NotNil(t, d.CompletionPct)
	assert.Equal(t, 55.0, *d.CompletionPct)

	// Snapshot silent: the baseline number stands in.
	d = deriveMetrics(baseline, &WaveSnapshot{}, nil)
	require.NotNil(t, d.CompletionPct)
	assert.Equal(t, 40.0, *d.CompletionPct)
}

func TestDeriveMetrics_ExplicitZeroCost_IsPresent(t *testing.T) {
	// GIVEN: An actual cost of exactly zero (distinct from "no cost data")
	// WHEN: Deriving metrics
	// THEN: Variance computes against the zero, remaining is the full budget

	zero := decimal.Zero
	baseline := &BaselineMetrics{TotalBudget: money(100000)}
	actuals := &ActualsSummary{TotalCost: &zero}

	d := deriveMetrics(baseline, nil, actuals)
	require.NotNil(t, d.CostVariancePct)
	assert.InDelta(t, 100.0, *d.CostVariancePct, 1e-9)
	require.NotNil(t, d.RemainingBudget)
	assert.True(t, d.RemainingBudget.Equal(decimal.NewFromInt(100000)))
	assert.False(t, d.BudgetOverrun)
}

// =============================================================================
// HEALTH CLASSIFICATION
// =============================================================================

func TestClassifyHealth_Boundaries(t *testing.T) {
	// All green: 3.0 -> On Track.
	assert.Equal(t, "On Track", ClassifyHealth(sptr("Green"), sptr("green"), sptr("Low")))
	// Two green one yellow: 2.67 -> still On Track.
	assert.Equal(t, "On Track", ClassifyHealth(sptr("Green"), sptr("Green"), sptr("Medium")))
	// Mixed: 2.0 -> At Risk.
	assert.Equal(t, "At Risk", ClassifyHealth(sptr("Green"), sptr("Yellow"), sptr("High")))
	// All bad: 1.0 -> Delayed.
	assert.Equal(t, "Delayed", ClassifyHealth(sptr("Red"), sptr("Red"), sptr("High")))
}

func TestClassifyHealth_UnknownDefaultsToMiddle(t *testing.T) {
	// GIVEN: No indicators at all
	// THEN: The project classifies At Risk, never On Track or Delayed

	assert.Equal(t, "At Risk", ClassifyHealth(nil, nil, nil))
	assert.Equal(t, "At Risk", ClassifyHealth(sptr("???"), nil, sptr("whatever")))
}

func TestClassifyHealth_OrderIndependent(t *testing.T) {
	a, b, c := sptr("Green"), sptr("Red"), sptr("Medium")
	want := ClassifyHealth(a, b, c)
	assert.Equal(t, want, ClassifyHealth(b, c, a))
	assert.Equal(t, want, ClassifyHealth(c, a, b))
}
