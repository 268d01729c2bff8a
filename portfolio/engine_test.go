package portfolio_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portfolio-engine/config"
	"github.com/warp/portfolio-engine/portfolio"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// baselineTable is the approved plan of record for one project: 100K budget,
// 1000 planned hours, all-green indicators, finishing June 30.
func baselineTable() *tabular.Table {
	return tabular.New(
		[]string{
			"project_id", "project_name", "baseline_start", "baseline_finish",
			"total_budget", "planned_hours", "schedule_health", "budget_health",
			"risk_level", "owner",
		},
		[][]any{
			{"P-100", "Phoenix Migration", "2024-01-01", "2024-06-30",
				100000, 1000, "Green", "Green", "Low", "Dana"},
		},
	)
}

// forecastTable holds two weekly snapshots for the project; the later row is
// the latest snapshot (65% complete, forecast finish Aug 15).
func forecastTable() *tabular.Table {
	return tabular.New(
		[]string{
			"Wave #", "project_name", "status", "forecast_finish",
			"completion_pct", "value_lever", "approval_date", "snapshot_date",
		},
		[][]any{
			{"P-100", "Phoenix Migration", "Green", "2024-08-15",
				60, "Cost Reduction", "2023-11-01", "2024-05-01"},
			{"P-100", "Phoenix Migration", "Green - On Track", "2024-08-15",
				65, "Cost Reduction", "2023-11-01", "2024-06-01"},
		},
	)
}

// actualsTable holds two execution transactions totalling 600 hours and
// 130K cost across a June 1 - July 15 work span (44 days).
func actualsTable() *tabular.Table {
	return tabular.New(
		[]string{"Wave #", "actual_hours", "actual_cost", "resource", "date"},
		[][]any{
			{"p-100", 300, 65000, "alice", "2024-06-01"},
			{"P-100", 300, 65000, "bob", "2024-07-15"},
		},
	)
}

func loadedEngine() *portfolio.Engine {
	e := portfolio.New(config.Default())
	e.LoadBaseline(baselineTable())
	e.LoadForecast(forecastTable())
	e.LoadActuals(actualsTable())
	return e
}

// =============================================================================
// CROSS-SOURCE JOIN
// =============================================================================

func TestAnalyzeProject_JoinsAllThreeSources(t *testing.T) {
	// GIVEN: All three sources carrying the same identity (mixed case)
	// WHEN: Analyzing the project
	// THEN: Every sub-record is present and aggregated correctly

	e := loadedEngine()

	p, err := e.AnalyzeProject("p-100")
	require.NoError(t, err)

	assert.Equal(t, "P-100", p.ID)
	assert.Equal(t, "Phoenix Migration", p.Name)
	assert.Equal(t, 3, p.SourcesAvailable())

	require.NotNil(t, p.Baseline)
	require.NotNil(t, p.Baseline.TotalBudget)
	assert.True(t, p.Baseline.TotalBudget.Equal(decimal.NewFromInt(100000)))
	require.NotNil(t, p.Baseline.PlannedHours)
	assert.Equal(t, 1000.0, *p.Baseline.PlannedHours)

	// Latest snapshot is the LAST matching forecast row in source order.
	require.NotNil(t, p.Wave)
	require.NotNil(t, p.Wave.Status)
	assert.Equal(t, "Green - On Track", *p.Wave.Status)
	require.NotNil(t, p.Wave.CompletionPct)
	assert.Equal(t, 65.0, *p.Wave.CompletionPct)
	require.NotNil(t, p.Wave.ValueLever)
	assert.Equal(t, "Cost Reduction", *p.Wave.ValueLever)

	require.NotNil(t, p.Trends)
	assert.Equal(t, 2, p.Trends.SnapshotCount)
	assert.Equal(t, map[string]int{"Green": 1, "Green - On Track": 1}, p.Trends.StatusDistribution)
	assert.False(t, p.Trends.RecentDeterioration)

	require.NotNil(t, p.Actuals)
	assert.Equal(t, 2, p.Actuals.TransactionCount)
	require.NotNil(t, p.Actuals.TotalHours)
	assert.Equal(t, 600.0, *p.Actuals.TotalHours)
	require.NotNil(t, p.Actuals.TotalCost)
	assert.True(t, p.Actuals.TotalCost.Equal(decimal.NewFromInt(130000)))
	require.NotNil(t, p.Actuals.UniqueResources)
	assert.Equal(t, 2, *p.Actuals.UniqueResources)
	require.NotNil(t, p.Actuals.WorkSpanDays)
	assert.Equal(t, 44, *p.Actuals.WorkSpanDays)
}

func TestAnalyzeProject_DerivedMetrics(t *testing.T) {
	// GIVEN: 130K actuals against a 100K budget, forecast finish Aug 15 vs
	//        baseline finish Jun 30
	// WHEN: Analyzing the project
	// THEN: Variance is -30% (over budget is negative), 46 days late,
	//       remaining budget -30K flagged as overrun

	e := loadedEngine()

	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	require.NotNil(t, p.Derived.CostVariancePct)
	assert.InDelta(t, -30.0, *p.Derived.CostVariancePct, 1e-9)
	require.NotNil(t, p.Derived.CostVarianceAmount)
	assert.True(t, p.Derived.CostVarianceAmount.Equal(decimal.NewFromInt(-30000)))

	require.NotNil(t, p.Derived.ScheduleVarianceDays)
	assert.Equal(t, 46, *p.Derived.ScheduleVarianceDays)

	require.NotNil(t, p.Derived.CompletionPct)
	assert.Equal(t, 65.0, *p.Derived.CompletionPct)

	require.NotNil(t, p.Derived.RemainingBudget)
	assert.True(t, p.Derived.RemainingBudget.Equal(decimal.NewFromInt(-30000)))
	assert.True(t, p.Derived.BudgetOverrun)

	require.NotNil(t, p.Derived.DailyBurnRate)
	assert.InDelta(t, 130000.0/44, p.Derived.DailyBurnRate.InexactFloat64(), 0.01)

	// No EAC recorded, so EAC variance must stay absent.
	assert.Nil(t, p.Derived.EACVariancePct)
	assert.Nil(t, p.Derived.EACVarianceAmount)
}

func TestAnalyzeProject_ConsistencyRules(t *testing.T) {
	// GIVEN: A green-reported project that is 30% over budget, 46 days late,
	//        and burning toward 200K on a 100K budget
	// WHEN: Evaluating rules
	// THEN: Exactly the three applicable rules fire

	e := loadedEngine()

	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	rules := make(map[string]portfolio.Severity, len(p.Violations))
	for _, v := range p.Violations {
		rules[v.Rule] = v.Severity
	}

	assert.Len(t, p.Violations, 3)
	assert.Equal(t, portfolio.SeverityWarning, rules["status_cost_mismatch"])
	assert.Equal(t, portfolio.SeverityCritical, rules["burn_rate_overrun"])
	assert.Equal(t, portfolio.SeverityWarning, rules["schedule_health_mismatch"])
}

func TestAnalyzeProject_Assessment(t *testing.T) {
	e := loadedEngine()

	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	a := p.Assessment
	assert.Equal(t, "On Track", a.Status) // all three indicators read green/low
	assert.Equal(t, "Green", a.Health)
	assert.Equal(t, "High", a.Confidence)
	assert.Equal(t, 3, a.SourcesAvailable)

	// Drivers: cost overrun, schedule delay, burn rate - capped at three.
	require.Len(t, a.KeyDrivers, 3)
	assert.Contains(t, a.KeyDrivers[0], "Cost overrun: 30.0%")
	assert.Contains(t, a.KeyDrivers[1], "46 days behind")

	assert.Contains(t, a.Summary, "'On Track'")
	assert.Contains(t, a.Summary, "-30.0%")
	// Complete data: the gaps list degrades to its sentinel.
	assert.Equal(t, []string{"Complete data from all three sources"}, a.DataGaps)
	assert.NotEqual(t, []string{"No significant risks detected"}, a.RisksWarnings)
}

func TestAnalyzeProject_Idempotent(t *testing.T) {
	// GIVEN: Identical loaded sources
	// WHEN: Analyzing the same identity twice
	// THEN: Everything except timestamps is identical

	e := loadedEngine()

	p1, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)
	p2, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	assert.Equal(t, p1.Derived, p2.Derived)
	assert.Equal(t, p1.Violations, p2.Violations)
	assert.Equal(t, p1.Baseline, p2.Baseline)
	assert.Equal(t, p1.Actuals, p2.Actuals)
	assert.Equal(t, p1.Assessment.Summary, p2.Assessment.Summary)
	assert.Equal(t, p1.Assessment.KeyDrivers, p2.Assessment.KeyDrivers)
}

// =============================================================================
// PARTIAL DATA AND ERRORS
// =============================================================================

func TestAnalyzeProject_SingleSource_MetricsStayAbsent(t *testing.T) {
	// GIVEN: Only the baseline loaded
	// WHEN: Analyzing the project
	// THEN: Cross-source metrics are absent, confidence Low, gaps reported

	e := portfolio.New(config.Default())
	e.LoadBaseline(baselineTable())

	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	assert.Nil(t, p.Wave)
	assert.Nil(t, p.Actuals)
	assert.Nil(t, p.Derived.CostVariancePct)
	assert.Nil(t, p.Derived.ScheduleVarianceDays)
	assert.False(t, p.Derived.BudgetOverrun)
	assert.Equal(t, "Low", p.Assessment.Confidence)
	assert.Contains(t, p.Assessment.DataGaps, "Missing actuals execution data")
	assert.Contains(t, p.Assessment.Observations, "No execution data found - project may not have started")
}

func TestAnalyzeProject_FuzzyWaveFallback(t *testing.T) {
	// GIVEN: A forecast with no shared key column, only a distinct name column
	// WHEN: Analyzing by a close-but-not-exact name
	// THEN: The snapshot resolves through fuzzy name matching

	e := portfolio.New(config.Default())
	e.LoadForecast(tabular.New(
		[]string{"proj id", "title", "status"},
		[][]any{{"X-1", "Phoenix Migration Project", "Amber"}},
	))

	p, err := e.AnalyzeProject("Phoenix Migration")
	require.NoError(t, err)
	require.NotNil(t, p.Wave)
	require.NotNil(t, p.Wave.Status)
	assert.Equal(t, "Amber", *p.Wave.Status)
}

func TestAnalyzeProject_Errors(t *testing.T) {
	empty := portfolio.New(config.Default())
	_, err := empty.AnalyzeProject("P-100")
	assert.ErrorIs(t, err, portfolio.ErrNoSources)

	e := loadedEngine()

	_, err = e.AnalyzeProject("GHOST-1")
	assert.ErrorIs(t, err, portfolio.ErrProjectNotFound)

	_, err = e.AnalyzeProject("unknown")
	assert.ErrorIs(t, err, portfolio.ErrInvalidProjectID)
	_, err = e.AnalyzeProject("   ")
	assert.ErrorIs(t, err, portfolio.ErrInvalidProjectID)
}

// =============================================================================
// FULL-PORTFOLIO RUN
// =============================================================================

func TestAnalyzeAll_DiscoversIdentityUnion(t *testing.T) {
	// GIVEN: All sources loaded (one shared identity)
	// WHEN: Running the full analysis
	// THEN: The run holds one project under its normalized key

	e := loadedEngine()

	assert.Equal(t, []string{"P-100"}, e.DiscoverIdentities())

	res := e.AnalyzeAll()
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"P-100"}, res.Order)

	p, ok := res.Get("P-100")
	require.True(t, ok)
	assert.Equal(t, "Phoenix Migration", p.Name)
}

func TestAnalyzeAll_NoSources_EmptyRun(t *testing.T) {
	e := portfolio.New(config.Default())
	res := e.AnalyzeAll()
	assert.Empty(t, res.Order)
	assert.Empty(t, res.Projects)
}

// =============================================================================
// PORTFOLIO SUMMARY
// =============================================================================

func TestSummary_Rollup(t *testing.T) {
	// GIVEN: A run with one over-budget, delayed, critical-flagged project
	// WHEN: Building the portfolio summary
	// THEN: Distributions, rollups, and risk flags reflect it

	th := config.Default()
	res := loadedEngine().AnalyzeAll()

	sum, err := res.Summary(th)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.TotalProjects)
	assert.Equal(t, map[string]int{"On Track": 1}, sum.StatusDistribution)
	assert.Equal(t, 1, sum.DataCompleteness.FullData)

	assert.True(t, sum.Metrics.TotalBaselineBudget.Equal(decimal.NewFromInt(100000)))
	assert.True(t, sum.Metrics.TotalActualCost.Equal(decimal.NewFromInt(130000)))
	require.NotNil(t, sum.Metrics.PortfolioVariancePct)
	assert.InDelta(t, -30.0, *sum.Metrics.PortfolioVariancePct, 1e-9)
	assert.Equal(t, 1, sum.Metrics.ProjectsOverBudget)
	assert.Equal(t, 1, sum.Metrics.ProjectsDelayed)

	// 1/1 over budget and delayed beats both portfolio ratios.
	risks := make([]string, 0, len(sum.PortfolioRisks))
	for _, r := range sum.PortfolioRisks {
		risks = append(risks, r.Risk)
	}
	assert.Equal(t, []string{"budget_trend", "schedule_trend"}, risks)

	require.Len(t, sum.CriticalIssues, 1)
	assert.Equal(t, "P-100", sum.CriticalIssues[0].ProjectID)
	assert.Contains(t, sum.TopConcerns, "1 critical issues requiring immediate attention")
}

func TestSummary_EmptyRun_IsError(t *testing.T) {
	res := portfolio.New(config.Default()).AnalyzeAll()
	_, err := res.Summary(config.Default())
	assert.True(t, errors.Is(err, portfolio.ErrNoProjects))
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_AbsentFieldsAbsentKeys(t *testing.T) {
	// GIVEN: A project with no EAC and no forecast budget
	// WHEN: Exporting the record
	// THEN: Absent fields are absent KEYS, present ones are plain values

	e := loadedEngine()
	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	m := p.Export()

	derived, ok := m["derived_metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, -30.0, derived["cost_variance_pct"])
	assert.Equal(t, true, derived["budget_overrun"])
	_, hasEAC := derived["eac_variance_pct"]
	assert.False(t, hasEAC)

	baseline, ok := m["baseline_metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-06-30", baseline["baseline_finish"])
	assert.Equal(t, 100000.0, baseline["total_budget"])
	_, hasCapex := baseline["capex"]
	assert.False(t, hasCapex)

	actuals, ok := m["actuals_summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 44, actuals["work_span_days"])

	rules, ok := m["rule_evaluations"].([]any)
	require.True(t, ok)
	assert.Len(t, rules, 3)
}

func TestExport_MissingSubRecords_OmittedEntirely(t *testing.T) {
	e := portfolio.New(config.Default())
	e.LoadBaseline(baselineTable())

	p, err := e.AnalyzeProject("P-100")
	require.NoError(t, err)

	m := p.Export()
	_, hasWave := m["latest_wave_snapshot"]
	assert.False(t, hasWave)
	_, hasActuals := m["actuals_summary"]
	assert.False(t, hasActuals)
	_, hasTrends := m["wave_trends"]
	assert.False(t, hasTrends)
	assert.Contains(t, m, "assessment")
	assert.Contains(t, m, "derived_metrics")
}
