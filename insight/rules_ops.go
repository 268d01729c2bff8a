/*
rules_ops.go - Operational insight formulas (tier 3)

PURPOSE:
  Rules about how work is actually being executed: Effort-Progress
  Mismatch, Resource Utilization Quality, Managerial Span
  Effectiveness, and Burnout Risk Radar. Mostly manager and VP facing.
*/
package insight

import (
	"fmt"
	"sort"

	"github.com/warp/portfolio-engine/portfolio"
)

// =============================================================================
// 9. EFFORT-PROGRESS MISMATCH
// =============================================================================

func (g *Generator) effortProgressMismatch(res *portfolio.Result, s *Set) {
	th := g.thresholds
	var mismatched []any

	res.Each(func(p *portfolio.ProjectAnalysis) {
		actual, ok := hoursOf(p)
		if !ok {
			return
		}
		if p.Baseline == nil || p.Baseline.PlannedHours == nil || *p.Baseline.PlannedHours <= 0 {
			return
		}
		completion := p.Derived.CompletionPct
		if completion == nil {
			return
		}
		planned := *p.Baseline.PlannedHours
		if actual <= planned*th.EffortMismatchRatio || *completion >= th.EffortMismatchMaxPct {
			return
		}
		implied := actual / planned * 100
		ref := projectRef(p)
		ref["actual_hours"] = actual
		ref["planned_hours"] = planned
		ref["completion_pct"] = *completion
		ref["implied_completion_pct"] = implied
		ref["gap_pts"] = implied - *completion
		mismatched = append(mismatched, ref)
	})

	if len(mismatched) == 0 {
		return
	}

	s.add(Insight{
		Category:       "data_hygiene",
		Title:          fmt.Sprintf("Effort-Progress Mismatch: %d Projects Burning Hours Without Progress", len(mismatched)),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%d projects consumed over half their planned hours while reporting under %.0f%% complete", len(mismatched), g.thresholds.EffortMismatchMaxPct),
		Impact:         "Effort spend outpacing reported progress signals rework or misreporting",
		Recommendation: "Audit progress reporting and scope on flagged projects",
		Metrics: map[string]any{
			"mismatched_count":    len(mismatched),
			"mismatched_projects": mismatched,
		},
		FormulaUsed: "Actual hours > 50% planned AND Completion < 40%",
		DataSources: []string{"actuals", "baseline"},
		Confidence:  "High",
		Personas:    []Persona{PersonaManager},
	})
}

// =============================================================================
// 10. RESOURCE UTILIZATION QUALITY
// =============================================================================

func (g *Generator) resourceUtilizationQuality(res *portfolio.Result, s *Set) {
	th := g.thresholds
	var totalHours, strategicHours float64

	res.Each(func(p *portfolio.ProjectAnalysis) {
		hours, ok := hoursOf(p)
		if !ok {
			return
		}
		totalHours += hours
		if p.Wave != nil {
			strategicHours += hours
		}
	})

	if totalHours <= 0 {
		return
	}
	utilPct := strategicHours / totalHours * 100
	if utilPct >= th.StrategicUtilFloorPct {
		return
	}

	s.add(Insight{
		Category:       "resource_utilization",
		Title:          fmt.Sprintf("Strategic Utilization: Only %.1f%% of Effort on Forecast Initiatives", utilPct),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%.1f%% of logged hours trace to forecast-tracked initiatives, below the %.0f%% floor", utilPct, th.StrategicUtilFloorPct),
		Impact:         fmt.Sprintf("%.0f hours flowing to work outside the strategic plan", totalHours-strategicHours),
		Recommendation: "Reconcile non-strategic effort against the forecast plan",
		Metrics: map[string]any{
			"strategic_utilization_pct": utilPct,
			"strategic_hours":           strategicHours,
			"total_hours":               totalHours,
		},
		FormulaUsed: "Strategic Utilization = Forecast-linked effort / Total effort",
		DataSources: []string{"actuals", "forecast"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP},
	})
}

// =============================================================================
// 11. MANAGERIAL SPAN EFFECTIVENESS
// =============================================================================

func (g *Generator) managerialSpanEffectiveness(res *portfolio.Result, s *Set) {
	th := g.thresholds

	type load struct {
		projects   int
		totalDelay int
		overBudget int
	}
	loads := map[string]*load{}

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if p.Baseline == nil || p.Baseline.Owner == nil || *p.Baseline.Owner == "" {
			return
		}
		owner := *p.Baseline.Owner
		l := loads[owner]
		if l == nil {
			l = &load{}
			loads[owner] = l
		}
		l.projects++
		if p.Derived.ScheduleVarianceDays != nil && *p.Derived.ScheduleVarianceDays > 0 {
			l.totalDelay += *p.Derived.ScheduleVarianceDays
		}
		if p.Derived.BudgetOverrun {
			l.overBudget++
		}
	})

	owners := make([]string, 0, len(loads))
	for owner := range loads {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var overloaded []any
	for _, owner := range owners {
		l := loads[owner]
		if l.projects < th.SpanMinProjects {
			continue
		}
		// Delay averages over the owner's whole span, not just the
		// slipped projects.
		avgDelay := float64(l.totalDelay) / float64(l.projects)
		if avgDelay <= th.SpanAvgDelayDays && float64(l.overBudget) <= float64(l.projects)*th.SpanOverBudgetRatio {
			continue
		}
		overloaded = append(overloaded, map[string]any{
			"owner":             owner,
			"project_count":     l.projects,
			"avg_delay_days":    avgDelay,
			"over_budget_count": l.overBudget,
		})
	}

	if len(overloaded) == 0 {
		return
	}

	s.add(Insight{
		Category:       "resource_utilization",
		Title:          fmt.Sprintf("Managerial Span Effectiveness: %d Owners Show Correlated Strain", len(overloaded)),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%d owners carry %d+ projects with correlated delays or overruns", len(overloaded), th.SpanMinProjects),
		Impact:         "Concentrated ownership degrading delivery across the owner's portfolio",
		Recommendation: "Rebalance project ownership or add delivery support",
		Metrics: map[string]any{
			"overloaded_count":  len(overloaded),
			"overloaded_owners": overloaded,
		},
		FormulaUsed: "High project count + Correlated delays/overruns",
		DataSources: []string{"baseline", "forecast", "actuals"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP},
	})
}

// =============================================================================
// 12. BURNOUT RISK RADAR
// =============================================================================

func (g *Generator) burnoutRiskRadar(res *portfolio.Result, s *Set) {
	th := g.thresholds
	var atRisk []any

	res.Each(func(p *portfolio.ProjectAnalysis) {
		hours, ok := hoursOf(p)
		if !ok {
			return
		}
		if p.Actuals.WorkSpanDays == nil || *p.Actuals.WorkSpanDays <= th.BurnoutMinSpanDays {
			return
		}
		if p.Actuals.UniqueResources == nil || *p.Actuals.UniqueResources <= 0 {
			return
		}
		perHead := hours / float64(*p.Actuals.UniqueResources)
		if perHead <= th.BurnoutHoursPerHead {
			return
		}
		completion := p.Derived.CompletionPct
		if completion == nil || *completion >= th.BurnoutMaxCompletion {
			return
		}
		ref := projectRef(p)
		ref["hours_per_resource"] = perHead
		ref["work_span_days"] = *p.Actuals.WorkSpanDays
		ref["completion_pct"] = *completion
		atRisk = append(atRisk, ref)
	})

	if len(atRisk) == 0 {
		return
	}

	s.add(Insight{
		Category:       "resource_utilization",
		Title:          fmt.Sprintf("Burnout Risk Radar: %d Projects with Sustained High Effort, Low Progress", len(atRisk)),
		Severity:       portfolio.SeverityCritical,
		Description:    fmt.Sprintf("%d projects show over %.0f hours per person across a long span with under %.0f%% completion", len(atRisk), th.BurnoutHoursPerHead, th.BurnoutMaxCompletion),
		Impact:         "Team sustainability and retention risk on flagged projects",
		Recommendation: "Review workload, staffing, and scope on flagged projects immediately",
		Metrics: map[string]any{
			"at_risk_count":    len(atRisk),
			"at_risk_projects": atRisk,
		},
		FormulaUsed: "Sustained effort (>200 hrs/person) + Low progress (<50%)",
		DataSources: []string{"actuals", "baseline"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP, PersonaManager},
	})
}
