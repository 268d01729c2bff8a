/*
rules.go - Board-level insight formulas (tier 1) and shared rule helpers

PURPOSE:
  The four board-level rules: Value Leakage Index, Strategy-Execution
  Coverage, Top/Bottom Analysis, Delivery Confidence Forecast. Each rule
  records the literal formula it applied in FormulaUsed.

EVIDENCE BARS:
  - Value leakage needs at least one contributing source
  - Coverage needs at least one forecast initiative
  - Top/Bottom needs 10+ projects with effort data
  - Delivery confidence needs 2+ signals from 2+ independent sources

SEE ALSO:
  - rules_portfolio.go, rules_ops.go, rules_hygiene.go: tiers 2-4
*/
package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/portfolio-engine/portfolio"
)

// =============================================================================
// SHARED HELPERS
// =============================================================================

// effortOf returns the project's effort figure: actual hours, else actual
// cost, else baseline budget. false when none is present or positive.
func effortOf(p *portfolio.ProjectAnalysis) (float64, bool) {
	if p.Actuals != nil {
		if p.Actuals.TotalHours != nil && *p.Actuals.TotalHours > 0 {
			return *p.Actuals.TotalHours, true
		}
		if p.Actuals.TotalCost != nil && p.Actuals.TotalCost.IsPositive() {
			return p.Actuals.TotalCost.InexactFloat64(), true
		}
	}
	if p.Baseline != nil && p.Baseline.TotalBudget != nil && p.Baseline.TotalBudget.IsPositive() {
		return p.Baseline.TotalBudget.InexactFloat64(), true
	}
	return 0, false
}

// progressOf returns the project's progress figure, zero when unreported.
func progressOf(p *portfolio.ProjectAnalysis) float64 {
	if p.Derived.CompletionPct != nil {
		return *p.Derived.CompletionPct
	}
	if p.Baseline != nil && p.Baseline.CompletionPct != nil {
		return *p.Baseline.CompletionPct
	}
	return 0
}

// hasValueLever reports whether the forecast snapshot names a real value
// lever (non-empty, not the literal "none").
func hasValueLever(p *portfolio.ProjectAnalysis) bool {
	if p.Wave == nil || p.Wave.ValueLever == nil {
		return false
	}
	lever := strings.TrimSpace(*p.Wave.ValueLever)
	return lever != "" && !strings.EqualFold(lever, "none")
}

// hoursOf returns the project's actual hours when present and positive.
func hoursOf(p *portfolio.ProjectAnalysis) (float64, bool) {
	if p.Actuals != nil && p.Actuals.TotalHours != nil && *p.Actuals.TotalHours > 0 {
		return *p.Actuals.TotalHours, true
	}
	return 0, false
}

// projectRef is the standard per-project metrics payload entry.
func projectRef(p *portfolio.ProjectAnalysis) map[string]any {
	return map[string]any{
		"project_id":   p.ID,
		"project_name": p.Name,
	}
}

// sourcesList renders a source set in fixed order for stable payloads.
func sourcesList(baseline, forecast, actuals bool) []string {
	var out []string
	if baseline {
		out = append(out, "baseline")
	}
	if forecast {
		out = append(out, "forecast")
	}
	if actuals {
		out = append(out, "actuals")
	}
	return out
}

// =============================================================================
// 1. VALUE LEAKAGE INDEX
// =============================================================================

func (g *Generator) valueLeakageIndex(res *portfolio.Result, s *Set) {
	th := g.thresholds

	var totalEffort, leakageEffort float64
	var contributors []any
	var srcBaseline, srcForecast, srcActuals bool

	res.Each(func(p *portfolio.ProjectAnalysis) {
		effort, ok := effortOf(p)
		if !ok {
			return
		}
		totalEffort += effort
		srcBaseline = srcBaseline || p.Baseline != nil
		srcForecast = srcForecast || p.Wave != nil
		srcActuals = srcActuals || p.Actuals != nil

		status := ""
		if p.Wave != nil && p.Wave.Status != nil {
			status = strings.ToLower(*p.Wave.Status)
		}
		schedHealth := ""
		if p.Baseline != nil && p.Baseline.ScheduleHealth != nil {
			schedHealth = strings.ToLower(*p.Baseline.ScheduleHealth)
		}
		stalled := strings.Contains(status, "stalled") || strings.Contains(status, "delayed") ||
			strings.Contains(schedHealth, "red")
		noLever := !hasValueLever(p)

		if noLever || stalled {
			leakageEffort += effort
			reason := "Stalled status"
			if noLever {
				reason = "No value lever"
			}
			ref := projectRef(p)
			ref["effort"] = effort
			ref["reason"] = reason
			contributors = append(contributors, ref)
		}
	})

	sources := sourcesList(srcBaseline, srcForecast, srcActuals)
	if totalEffort <= 0 || len(sources) < 1 {
		return
	}
	leakagePct := leakageEffort / totalEffort * 100
	if leakagePct <= th.ValueLeakagePct {
		return
	}

	confidence := "Medium"
	if len(sources) >= 2 {
		confidence = "High"
	}

	s.add(Insight{
		Category:       "value_leakage",
		Title:          fmt.Sprintf("Value Leakage Index: %.1f%% Portfolio Effort at Risk", leakagePct),
		Severity:       portfolio.SeverityCritical,
		Description:    fmt.Sprintf("%.1f%% of portfolio effort/cost is on projects with no clear value lever or stalled status", leakagePct),
		Impact:         fmt.Sprintf("$%.0fK effort potentially not delivering value", leakageEffort/1000),
		Recommendation: "Review value mapping for all projects and address stalled initiatives",
		Metrics: map[string]any{
			"leakage_pct":           leakagePct,
			"leakage_effort":        leakageEffort,
			"total_effort":          totalEffort,
			"leakage_project_count": len(contributors),
			"top_contributors":      contributors,
		},
		FormulaUsed: "Value Leakage % = (Effort on no-value/stalled projects) / Total Effort",
		DataSources: sources,
		Confidence:  confidence,
		Personas:    []Persona{PersonaExecutive, PersonaVP},
	})
}

// =============================================================================
// 2. STRATEGY-EXECUTION COVERAGE
// =============================================================================

func (g *Generator) strategyExecutionCoverage(res *portfolio.Result, s *Set) {
	th := g.thresholds

	var total, covered int
	var uncovered []any
	var srcBaseline, srcActuals bool

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if p.Wave == nil {
			return
		}
		total++
		hasBaseline := p.Baseline != nil
		_, hasHours := hoursOf(p)
		srcBaseline = srcBaseline || hasBaseline
		srcActuals = srcActuals || hasHours

		if hasBaseline && hasHours {
			covered++
			return
		}
		missing := "actuals hours"
		if !hasBaseline {
			missing = "baseline"
		}
		ref := projectRef(p)
		ref["missing"] = missing
		uncovered = append(uncovered, ref)
	})

	if total == 0 {
		return
	}
	coveragePct := float64(covered) / float64(total) * 100
	sources := sourcesList(srcBaseline, true, srcActuals)

	confidence := "Low"
	if len(sources) == 3 {
		confidence = "High"
	}

	metrics := map[string]any{
		"coverage_pct":          coveragePct,
		"covered_count":         covered,
		"total_count":           total,
		"uncovered_initiatives": uncovered,
	}
	formula := "Coverage % = Initiatives with (baseline AND actuals) / Total forecast initiatives"

	switch {
	case coveragePct < th.CoverageCriticalPct:
		s.add(Insight{
			Category:       "strategic_alignment",
			Title:          fmt.Sprintf("Strategy-Execution Coverage: Only %.1f%% Fully Linked", coveragePct),
			Severity:       portfolio.SeverityCritical,
			Description:    fmt.Sprintf("Only %d of %d forecast initiatives have both baseline and execution data", covered, total),
			Impact:         "Strategic initiatives not fully traceable from plan to execution",
			Recommendation: "Establish full traceability for all initiatives across plan and execution systems",
			Metrics:        metrics,
			FormulaUsed:    formula,
			DataSources:    sources,
			Confidence:     confidence,
			Personas:       []Persona{PersonaExecutive},
		})
	case coveragePct < th.CoverageWarningPct:
		s.add(Insight{
			Category:       "strategic_alignment",
			Title:          fmt.Sprintf("Strategy-Execution Coverage: %.1f%% Linked", coveragePct),
			Severity:       portfolio.SeverityWarning,
			Description:    fmt.Sprintf("%d of %d forecast initiatives have full traceability", covered, total),
			Impact:         "Some strategic initiatives lack complete tracking",
			Recommendation: "Improve data linkage for remaining initiatives",
			Metrics:        metrics,
			FormulaUsed:    formula,
			DataSources:    sources,
			Confidence:     confidence,
			Personas:       []Persona{PersonaVP},
		})
	}
}

// =============================================================================
// 3. TOP/BOTTOM ANALYSIS
// =============================================================================

func (g *Generator) topBottomAnalysis(res *portfolio.Result, s *Set) {
	type candidate struct {
		p        *portfolio.ProjectAnalysis
		effort   float64
		progress float64
	}
	var candidates []candidate

	res.Each(func(p *portfolio.ProjectAnalysis) {
		var effort float64
		if h, ok := hoursOf(p); ok {
			effort = h
		} else if p.Actuals != nil && p.Actuals.TotalCost != nil && p.Actuals.TotalCost.IsPositive() {
			effort = p.Actuals.TotalCost.InexactFloat64()
		} else {
			return
		}
		candidates = append(candidates, candidate{p: p, effort: effort, progress: progressOf(p)})
	})

	if len(candidates) < g.thresholds.TopBottomMinProjects {
		return
	}

	decile := len(candidates) / 10
	if decile < 1 {
		decile = 1
	}

	byEffort := append([]candidate(nil), candidates...)
	sort.SliceStable(byEffort, func(a, b int) bool { return byEffort[a].effort > byEffort[b].effort })
	byProgress := append([]candidate(nil), candidates...)
	sort.SliceStable(byProgress, func(a, b int) bool { return byProgress[a].progress < byProgress[b].progress })

	bottom := make(map[string]bool, decile)
	for _, c := range byProgress[:decile] {
		bottom[c.p.ID] = true
	}

	var flagged []any
	for _, c := range byEffort[:decile] {
		if bottom[c.p.ID] {
			ref := projectRef(c.p)
			ref["effort"] = c.effort
			ref["progress"] = c.progress
			flagged = append(flagged, ref)
		}
	}
	if len(flagged) == 0 {
		return
	}

	s.add(Insight{
		Category:       "value_leakage",
		Title:          fmt.Sprintf("Top 10%% Effort / Bottom 10%% Outcome: %d Projects Flagged", len(flagged)),
		Severity:       portfolio.SeverityCritical,
		Description:    fmt.Sprintf("%d projects consuming highest effort but delivering lowest progress/value", len(flagged)),
		Impact:         "Significant resource investment with minimal return",
		Recommendation: "Immediate review for scope reduction, reprioritization, or termination",
		Metrics: map[string]any{
			"flagged_count":    len(flagged),
			"flagged_projects": flagged,
		},
		FormulaUsed: "Top 10% effort INTERSECT Bottom 10% progress",
		DataSources: []string{"actuals", "baseline", "forecast"},
		Confidence:  "High",
		Personas:    []Persona{PersonaExecutive, PersonaVP},
	})
}

// =============================================================================
// 4. DELIVERY CONFIDENCE FORECAST
// =============================================================================

func (g *Generator) deliveryConfidenceForecast(res *portfolio.Result, s *Set) {
	th := g.thresholds
	var atRisk []any

	res.Each(func(p *portfolio.ProjectAnalysis) {
		dataSources := 0
		var signals []any

		completion := p.Derived.CompletionPct
		span := 0
		if p.Actuals != nil && p.Actuals.WorkSpanDays != nil {
			span = *p.Actuals.WorkSpanDays
		}
		if completion != nil && span > th.VelocityMinWorkDays {
			dataSources++
			if *completion/float64(span) < th.VelocityFloor {
				signals = append(signals, "Low velocity")
			}
		}

		if p.Derived.DailyBurnRate != nil && p.Derived.DailyBurnRate.IsPositive() &&
			p.Derived.RemainingBudget != nil {
			dataSources++
			runway := p.Derived.RemainingBudget.Div(*p.Derived.DailyBurnRate).InexactFloat64()
			if runway < th.RunwayFloorDays {
				signals = append(signals, "High burn rate")
			}
		}

		if p.Trends != nil && p.Trends.RecentDeterioration {
			dataSources++
			signals = append(signals, "Task slippage trend")
		}

		if dataSources >= 2 && len(signals) >= 2 {
			ref := projectRef(p)
			ref["risk_signals"] = signals
			ref["forecast"] = "Likely to Miss"
			atRisk = append(atRisk, ref)
		}
	})

	if len(atRisk) == 0 {
		return
	}

	s.add(Insight{
		Category:       "predictive_risk",
		Title:          fmt.Sprintf("Delivery Confidence Forecast: %d Projects Likely to Miss", len(atRisk)),
		Severity:       portfolio.SeverityCritical,
		Description:    fmt.Sprintf("%d projects show multiple risk signals indicating delivery failure", len(atRisk)),
		Impact:         "Portfolio delivery commitments at risk",
		Recommendation: "Implement recovery plans or adjust expectations immediately",
		Metrics: map[string]any{
			"at_risk_count":    len(atRisk),
			"at_risk_projects": atRisk,
		},
		FormulaUsed: "Risk Score = Low velocity + High burn + Slippage (binary: Likely to Miss)",
		DataSources: []string{"actuals", "baseline", "forecast"},
		Confidence:  "High",
		Personas:    []Persona{PersonaExecutive, PersonaVP},
	})
}
