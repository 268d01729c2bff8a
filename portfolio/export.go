/*
export.go - Boundary serialization

PURPOSE:
  Reduces every domain type to a plain nested key-value structure (strings,
  numbers, lists, maps) for the presentation layer. This structure is the
  ONLY contract the presentation layer may depend on.

PRESENCE RULE:
  An absent field is an absent KEY, never a null or a zero. Round-tripping
  the export through JSON preserves exactly which fields existed, so the
  consumer can distinguish "no budget recorded" from "budget of 0".

SEE ALSO:
  - api/handlers.go: Serves these structures as JSON
*/
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

const exportDateLayout = "2006-01-02"

func putStr(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

func putMoney(m map[string]any, key string, v *decimal.Decimal) {
	if v != nil {
		m[key] = v.InexactFloat64()
	}
}

func putDate(m map[string]any, key string, v *time.Time) {
	if v != nil {
		m[key] = v.Format(exportDateLayout)
	}
}

// =============================================================================
// SUB-RECORD EXPORT
// =============================================================================

func (b *BaselineMetrics) export() map[string]any {
	m := map[string]any{}
	putDate(m, "baseline_start", b.Start)
	putDate(m, "baseline_finish", b.Finish)
	putMoney(m, "total_budget", b.TotalBudget)
	putMoney(m, "capex", b.Capex)
	putMoney(m, "opex", b.Opex)
	putMoney(m, "eac", b.EAC)
	putFloat(m, "planned_hours", b.PlannedHours)
	putStr(m, "schedule_health", b.ScheduleHealth)
	putStr(m, "budget_health", b.BudgetHealth)
	putStr(m, "risk_level", b.RiskLevel)
	putStr(m, "owner", b.Owner)
	putStr(m, "strategic_alignment", b.Strategic)
	putStr(m, "benefits", b.Benefits)
	putFloat(m, "completion_pct", b.CompletionPct)
	putStr(m, "stage", b.Stage)
	putStr(m, "interdependencies", b.Interdependencies)
	return m
}

func (w *WaveSnapshot) export() map[string]any {
	m := map[string]any{}
	putDate(m, "snapshot_date", w.SnapshotDate)
	putStr(m, "status", w.Status)
	putStr(m, "stage", w.Stage)
	putDate(m, "forecast_finish", w.ForecastFinish)
	putFloat(m, "completion_pct", w.CompletionPct)
	putStr(m, "complexity", w.Complexity)
	putStr(m, "owner", w.Owner)
	putMoney(m, "budget", w.Budget)
	putStr(m, "value_lever", w.ValueLever)
	putDate(m, "approval_date", w.ApprovalDate)
	return m
}

func (t *WaveTrends) export() map[string]any {
	m := map[string]any{"snapshot_count": t.SnapshotCount}
	if len(t.StatusDistribution) > 0 {
		dist := make(map[string]any, len(t.StatusDistribution))
		for k, v := range t.StatusDistribution {
			dist[k] = v
		}
		m["status_distribution"] = dist
	}
	if t.RecentDeterioration {
		m["recent_deterioration"] = true
	}
	return m
}

func (a *ActualsSummary) export() map[string]any {
	m := map[string]any{"transaction_count": a.TransactionCount}
	putFloat(m, "total_hours", a.TotalHours)
	putMoney(m, "total_cost", a.TotalCost)
	putInt(m, "unique_resources", a.UniqueResources)
	putDate(m, "work_start_date", a.WorkStart)
	putDate(m, "work_end_date", a.WorkEnd)
	putInt(m, "work_span_days", a.WorkSpanDays)
	return m
}

func (d DerivedMetrics) export() map[string]any {
	m := map[string]any{}
	putFloat(m, "cost_variance_pct", d.CostVariancePct)
	putMoney(m, "cost_variance_amount", d.CostVarianceAmount)
	putFloat(m, "eac_variance_pct", d.EACVariancePct)
	putMoney(m, "eac_variance_amount", d.EACVarianceAmount)
	putInt(m, "schedule_variance_days", d.ScheduleVarianceDays)
	putMoney(m, "daily_burn_rate", d.DailyBurnRate)
	putFloat(m, "completion_pct", d.CompletionPct)
	putMoney(m, "remaining_budget", d.RemainingBudget)
	if d.BudgetOverrun {
		m["budget_overrun"] = true
	}
	return m
}

func (v RuleViolation) export() map[string]any {
	return map[string]any{
		"rule":           v.Rule,
		"severity":       string(v.Severity),
		"description":    v.Description,
		"recommendation": v.Recommendation,
	}
}

func (a Assessment) export() map[string]any {
	return map[string]any{
		"project_id":   a.ProjectID,
		"project_name": a.ProjectName,
		"timestamp":    a.GeneratedAt.Format(time.RFC3339),
		"overall_assessment": map[string]any{
			"status":                 a.Status,
			"health":                 a.Health,
			"confidence_level":       a.Confidence,
			"data_sources_available": a.SourcesAvailable,
			"summary":                a.Summary,
		},
		"key_drivers":               toAnyList(a.KeyDrivers),
		"cross_source_observations": toAnyList(a.Observations),
		"risks_warnings":            toAnyList(a.RisksWarnings),
		"positive_signals":          toAnyList(a.PositiveSignals),
		"data_gaps":                 toAnyList(a.DataGaps),
		"recommendations":           toAnyList(a.Recommendations),
	}
}

// =============================================================================
// RECORD AND RUN EXPORT
// =============================================================================

// Export reduces one project record to the plain boundary structure.
// Sub-records are present as keys only when their source contributed.
func (p *ProjectAnalysis) Export() map[string]any {
	m := map[string]any{
		"project_metadata": map[string]any{
			"project_id":   p.ID,
			"project_name": p.Name,
		},
		"derived_metrics": p.Derived.export(),
		"assessment":      p.Assessment.export(),
	}
	if p.Baseline != nil {
		m["baseline_metrics"] = p.Baseline.export()
	}
	if p.Wave != nil {
		m["latest_wave_snapshot"] = p.Wave.export()
	}
	if p.Trends != nil {
		m["wave_trends"] = p.Trends.export()
	}
	if p.Actuals != nil {
		m["actuals_summary"] = p.Actuals.export()
	}
	rules := make([]any, 0, len(p.Violations))
	for _, v := range p.Violations {
		rules = append(rules, v.export())
	}
	m["rule_evaluations"] = rules
	return m
}

// Export reduces the portfolio summary to the boundary structure.
func (s *PortfolioSummary) Export() map[string]any {
	metrics := map[string]any{
		"total_baseline_budget": s.Metrics.TotalBaselineBudget.InexactFloat64(),
		"total_actual_cost":     s.Metrics.TotalActualCost.InexactFloat64(),
		"projects_over_budget":  s.Metrics.ProjectsOverBudget,
		"projects_delayed":      s.Metrics.ProjectsDelayed,
	}
	putFloat(metrics, "portfolio_variance_pct", s.Metrics.PortfolioVariancePct)

	issues := make([]any, 0, len(s.CriticalIssues))
	for _, c := range s.CriticalIssues {
		issues = append(issues, map[string]any{
			"project_id":     c.ProjectID,
			"project_name":   c.ProjectName,
			"issue":          c.Issue,
			"recommendation": c.Recommendation,
		})
	}
	risks := make([]any, 0, len(s.PortfolioRisks))
	for _, r := range s.PortfolioRisks {
		risks = append(risks, map[string]any{
			"risk":        r.Risk,
			"severity":    string(r.Severity),
			"description": r.Description,
			"impact":      r.Impact,
		})
	}

	return map[string]any{
		"portfolio_overview": map[string]any{
			"total_projects":     s.TotalProjects,
			"analysis_timestamp": s.GeneratedAt.Format(time.RFC3339),
		},
		"status_distribution":     toAnyMap(s.StatusDistribution),
		"health_distribution":     toAnyMap(s.HealthDistribution),
		"confidence_distribution": toAnyMap(s.ConfidenceDistribution),
		"data_completeness": map[string]any{
			"full_data":    s.DataCompleteness.FullData,
			"partial_data": s.DataCompleteness.PartialData,
			"minimal_data": s.DataCompleteness.MinimalData,
		},
		"portfolio_metrics": metrics,
		"critical_issues":   issues,
		"portfolio_risks":   risks,
		"top_concerns":      toAnyList(s.TopConcerns),
	}
}

// Export reduces the full run to the boundary structure (projects keyed by
// identity, in addition to run metadata).
func (r *Result) Export() map[string]any {
	projects := make(map[string]any, len(r.Projects))
	r.Each(func(p *ProjectAnalysis) {
		projects[p.ID] = p.Export()
	})
	return map[string]any{
		"run_id":       r.RunID,
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"projects":     projects,
	}
}

func toAnyList(list []string) []any {
	out := make([]any, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}

func toAnyMap(m map[string]int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
