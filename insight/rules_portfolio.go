/*
rules_portfolio.go - VP-level insight formulas (tier 2)

PURPOSE:
  Portfolio-shaping rules for planning leaders: Cost per Strategic
  Outcome, Execution Drag Index, Investment Map, and Hidden Dependency
  Risk. These surface where money and attention concentrate rather
  than single-project failures.
*/
package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/portfolio-engine/portfolio"
)

// =============================================================================
// 5. COST PER STRATEGIC OUTCOME
// =============================================================================

func (g *Generator) costPerStrategicOutcome(res *portfolio.Result, s *Set) {
	type bucket struct {
		cost     decimal.Decimal
		projects []string
	}
	buckets := map[string]*bucket{}

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if !hasValueLever(p) {
			return
		}
		if p.Actuals == nil || p.Actuals.TotalCost == nil || !p.Actuals.TotalCost.IsPositive() {
			return
		}
		lever := strings.TrimSpace(*p.Wave.ValueLever)
		b := buckets[lever]
		if b == nil {
			b = &bucket{}
			buckets[lever] = b
		}
		b.cost = b.cost.Add(*p.Actuals.TotalCost)
		b.projects = append(b.projects, p.ID)
	})

	if len(buckets) == 0 {
		return
	}

	levers := make([]string, 0, len(buckets))
	for lever := range buckets {
		levers = append(levers, lever)
	}
	sort.Slice(levers, func(a, b int) bool {
		ca, cb := buckets[levers[a]].cost, buckets[levers[b]].cost
		if !ca.Equal(cb) {
			return ca.GreaterThan(cb)
		}
		return levers[a] < levers[b]
	})

	var top []any
	var total decimal.Decimal
	for _, lever := range levers {
		b := buckets[lever]
		total = total.Add(b.cost)
		top = append(top, map[string]any{
			"value_lever":   lever,
			"total_cost":    b.cost.InexactFloat64(),
			"project_count": len(b.projects),
		})
	}

	s.add(Insight{
		Category:       "value_leakage",
		Title:          fmt.Sprintf("Cost per Strategic Outcome: %d Value Levers Funded", len(levers)),
		Severity:       portfolio.SeverityInfo,
		Description:    fmt.Sprintf("$%.0fK actual spend distributed across %d strategic value levers", total.InexactFloat64()/1000, len(levers)),
		Impact:         "Visibility into where investment concentrates by outcome",
		Recommendation: "Validate that spend concentration matches strategic priorities",
		Metrics: map[string]any{
			"lever_count":     len(levers),
			"total_cost":      total.InexactFloat64(),
			"top_investments": top,
		},
		FormulaUsed: "Cost per Value Lever = Total actual cost / Value Lever",
		DataSources: []string{"forecast", "actuals"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP},
	})
}

// =============================================================================
// 6. EXECUTION DRAG INDEX
// =============================================================================

func (g *Generator) executionDragIndex(res *portfolio.Result, s *Set) {
	th := g.thresholds
	var dragged []any
	var totalDrag int

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if p.Baseline == nil || p.Baseline.Start == nil {
			return
		}
		if p.Wave == nil || p.Wave.ApprovalDate == nil {
			return
		}
		if !p.Baseline.Start.After(*p.Wave.ApprovalDate) {
			return
		}
		drag := int(p.Baseline.Start.Sub(*p.Wave.ApprovalDate).Hours() / 24)
		if drag <= th.ExecutionDragDays {
			return
		}
		totalDrag += drag
		ref := projectRef(p)
		ref["drag_days"] = drag
		ref["approval_date"] = p.Wave.ApprovalDate.Format("2006-01-02")
		ref["start_date"] = p.Baseline.Start.Format("2006-01-02")
		dragged = append(dragged, ref)
	})

	if len(dragged) == 0 {
		return
	}

	sort.SliceStable(dragged, func(a, b int) bool {
		return dragged[a].(map[string]any)["drag_days"].(int) > dragged[b].(map[string]any)["drag_days"].(int)
	})
	avgDrag := float64(totalDrag) / float64(len(dragged))

	s.add(Insight{
		Category:       "velocity",
		Title:          fmt.Sprintf("Execution Drag Index: %.0f Days Average Approval-to-Start", avgDrag),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%d projects took more than %d days from approval to first task start", len(dragged), th.ExecutionDragDays),
		Impact:         "Approved initiatives losing momentum before execution begins",
		Recommendation: "Investigate mobilization bottlenecks between approval and kickoff",
		Metrics: map[string]any{
			"dragged_count":   len(dragged),
			"avg_drag_days":   avgDrag,
			"worst_offenders": dragged,
		},
		FormulaUsed: "Drag Days = Task Start Date - Approval Date",
		DataSources: []string{"baseline", "forecast"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP, PersonaManager},
	})
}

// =============================================================================
// 7. INVESTMENT MAP
// =============================================================================

func (g *Generator) investmentMap(res *portfolio.Result, s *Set) {
	type entry struct {
		p        *portfolio.ProjectAnalysis
		effort   float64
		hasValue bool
	}
	var entries []entry

	res.Each(func(p *portfolio.ProjectAnalysis) {
		effort, ok := effortOf(p)
		if !ok {
			return
		}
		entries = append(entries, entry{p: p, effort: effort, hasValue: hasValueLever(p)})
	})

	if len(entries) < g.thresholds.InvestmentMinProjects {
		return
	}

	efforts := make([]float64, len(entries))
	for i, e := range entries {
		efforts[i] = e.effort
	}
	sort.Float64s(efforts)
	median := efforts[len(efforts)/2]

	var over, under []any
	for _, e := range entries {
		switch {
		case e.effort > median && !e.hasValue:
			ref := projectRef(e.p)
			ref["effort"] = e.effort
			over = append(over, ref)
		case e.effort < median && e.hasValue:
			ref := projectRef(e.p)
			ref["effort"] = e.effort
			under = append(under, ref)
		}
	}

	if len(over) > 0 {
		s.add(Insight{
			Category:       "prioritization",
			Title:          fmt.Sprintf("Over-Investment: %d High-Effort Projects Without Value Levers", len(over)),
			Severity:       portfolio.SeverityWarning,
			Description:    fmt.Sprintf("%d projects consume above-median effort with no mapped value lever", len(over)),
			Impact:         "Premium effort flowing to unmapped outcomes",
			Recommendation: "Map these projects to value levers or reduce investment",
			Metrics: map[string]any{
				"median_effort": median,
				"over_invested": over,
			},
			FormulaUsed: "Effort > median AND no value lever",
			DataSources: []string{"actuals", "forecast"},
			Confidence:  "High",
			Personas:    []Persona{PersonaVP},
		})
	}
	if len(under) > 0 {
		s.add(Insight{
			Category:       "prioritization",
			Title:          fmt.Sprintf("Under-Investment: %d Strategic Projects Below Median Effort", len(under)),
			Severity:       portfolio.SeverityInfo,
			Description:    fmt.Sprintf("%d value-mapped projects receive below-median effort", len(under)),
			Impact:         "Strategic initiatives may be starved of capacity",
			Recommendation: "Confirm these initiatives are resourced to plan",
			Metrics: map[string]any{
				"median_effort":  median,
				"under_invested": under,
			},
			FormulaUsed: "Effort < median AND has value lever",
			DataSources: []string{"actuals", "forecast"},
			Confidence:  "High",
			Personas:    []Persona{PersonaVP},
		})
	}
}

// =============================================================================
// 8. HIDDEN DEPENDENCY RISK
// =============================================================================

func (g *Generator) hiddenDependencyRisk(res *portfolio.Result, s *Set) {
	var suspect []any

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if p.Baseline == nil || p.Baseline.ScheduleHealth == nil {
			return
		}
		if !strings.Contains(strings.ToLower(*p.Baseline.ScheduleHealth), "green") {
			return
		}
		_, hasHours := hoursOf(p)
		hasDeps := p.Baseline.Interdependencies != nil && strings.TrimSpace(*p.Baseline.Interdependencies) != ""
		if hasHours && !hasDeps {
			return
		}
		reason := "No effort logged despite green status"
		if hasDeps {
			reason = "Green status with open dependencies"
		}
		ref := projectRef(p)
		ref["reason"] = reason
		suspect = append(suspect, ref)
	})

	if len(suspect) == 0 {
		return
	}

	s.add(Insight{
		Category:       "execution_health",
		Title:          fmt.Sprintf("Hidden Dependency Risk: %d Green Projects Warrant Scrutiny", len(suspect)),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%d projects report green health but show no effort or carry dependencies", len(suspect)),
		Impact:         "Green statuses may mask blocked or not-yet-started work",
		Recommendation: "Verify green statuses against actual activity and dependency state",
		Metrics: map[string]any{
			"suspect_count":    len(suspect),
			"suspect_projects": suspect,
		},
		FormulaUsed: "Green status AND (No effort OR Has dependencies)",
		DataSources: []string{"baseline", "actuals"},
		Confidence:  "High",
		Personas:    []Persona{PersonaVP, PersonaManager},
	})
}
