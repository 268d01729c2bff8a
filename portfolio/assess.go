/*
assess.go - Assessment synthesis

PURPOSE:
  Turns the joined record, derived metrics, and rule violations into the
  structured human-readable assessment: status classification, key drivers,
  cross-source observations, risks, positive signals, data gaps, and
  recommendations.

STATUS CLASSIFICATION:
  Each of schedule-health, budget-health, and risk-level maps onto a 3/2/1
  score through a fixed lexicon; unrecognized or absent text scores the
  middle value 2. The average of the three buckets the project:
  >= 2.5 On Track, >= 1.5 At Risk, else Delayed. The classification is
  order-independent in its three inputs.

FALLBACK SENTINELS:
  Every synthesized list degrades to a single fixed "nothing to report"
  line, never to an empty list, so the presentation layer renders uniformly.

SEE ALSO:
  - rules.go: Source of risks and recommendations
  - derive.go: Source of drivers and gaps
*/
package portfolio

import (
	"fmt"
	"strings"
	"time"
)

// healthLexicon maps health/risk wording onto 3 (good) / 2 (middling) / 1 (bad).
var healthLexicon = map[string]int{
	"green": 3, "yellow": 2, "red": 1,
	"on track": 3, "at risk": 2, "delayed": 1,
	"low": 3, "medium": 2, "high": 1,
}

func healthScore(s *string) int {
	if s == nil {
		return 2
	}
	if score, ok := healthLexicon[strings.ToLower(strings.TrimSpace(*s))]; ok {
		return score
	}
	return 2
}

// ClassifyHealth buckets a project from its three tri-state indicators.
// Unrecognized text defaults to the middle score, so a project with no
// indicators at all classifies "At Risk" rather than anything stronger.
func ClassifyHealth(scheduleHealth, budgetHealth, riskLevel *string) string {
	avg := float64(healthScore(scheduleHealth)+healthScore(budgetHealth)+healthScore(riskLevel)) / 3
	switch {
	case avg >= 2.5:
		return "On Track"
	case avg >= 1.5:
		return "At Risk"
	default:
		return "Delayed"
	}
}

// buildAssessment synthesizes the full assessment for one joined record.
func (e *Engine) buildAssessment(p *ProjectAnalysis) Assessment {
	th := e.thresholds
	baseline, wave, actuals := p.Baseline, p.Wave, p.Actuals
	derived := p.Derived

	a := Assessment{
		ProjectID:        p.ID,
		ProjectName:      p.Name,
		GeneratedAt:      time.Now().UTC(),
		SourcesAvailable: p.SourcesAvailable(),
		Health:           "Unknown",
	}

	var schedHealth, budgetHealth, riskLevel *string
	if baseline != nil {
		schedHealth = baseline.ScheduleHealth
		budgetHealth = baseline.BudgetHealth
		riskLevel = baseline.RiskLevel
		if baseline.BudgetHealth != nil {
			a.Health = *baseline.BudgetHealth
		}
	}
	a.Status = ClassifyHealth(schedHealth, budgetHealth, riskLevel)

	switch a.SourcesAvailable {
	case 3:
		a.Confidence = "High"
	case 2:
		a.Confidence = "Medium"
	default:
		a.Confidence = "Low"
	}

	// Key drivers: cost variance beyond the driver threshold, schedule drift,
	// burn rate - in that priority order, capped at three.
	var drivers []string
	if cv := derived.CostVariancePct; cv != nil {
		if *cv < -th.KeyDriverVariancePct {
			drivers = append(drivers, fmt.Sprintf("Cost overrun: %.1f%% over baseline budget", -*cv))
		} else if *cv > th.KeyDriverVariancePct {
			drivers = append(drivers, fmt.Sprintf("Cost underrun: %.1f%% under baseline budget", *cv))
		}
	}
	if sv := derived.ScheduleVarianceDays; sv != nil {
		if *sv > 0 {
			drivers = append(drivers, fmt.Sprintf("Schedule delay: %d days behind baseline", *sv))
		} else if *sv < 0 {
			drivers = append(drivers, fmt.Sprintf("Schedule ahead: %d days ahead of baseline", -*sv))
		}
	}
	if derived.DailyBurnRate != nil {
		drivers = append(drivers, fmt.Sprintf("Daily burn rate: $%s/day", derived.DailyBurnRate.Round(0)))
	}
	if len(drivers) > 3 {
		drivers = drivers[:3]
	}
	a.KeyDrivers = orSentinel(drivers, "Insufficient data for key drivers")

	// Cross-source observations.
	var obs []string
	if wave != nil && actuals != nil {
		status := "unknown"
		if wave.Status != nil {
			status = *wave.Status
		}
		obs = append(obs, fmt.Sprintf("Forecast reports %s status", status))
		if actuals.TotalCost != nil {
			obs = append(obs, fmt.Sprintf("Actuals show $%s actual cost incurred", actuals.TotalCost.Round(0)))
		}
	}
	if p.Trends != nil && p.Trends.RecentDeterioration {
		obs = append(obs, "Forecast history shows recent status deterioration")
	}
	if actuals == nil && baseline != nil {
		obs = append(obs, "No execution data found - project may not have started")
	}
	a.Observations = orSentinel(obs, "Single source data - limited cross-validation")

	// Risks from warning/critical rule violations.
	var risks []string
	for _, v := range p.Violations {
		if v.Severity == SeverityCritical || v.Severity == SeverityWarning {
			risks = append(risks, fmt.Sprintf("[%s] %s", strings.ToUpper(string(v.Severity)), v.Description))
		}
	}
	a.RisksWarnings = orSentinel(risks, "No significant risks detected")

	// Positive signals.
	var positives []string
	if derived.CostVariancePct != nil && *derived.CostVariancePct >= 0 {
		positives = append(positives, "Cost tracking within or under budget")
	}
	if derived.ScheduleVarianceDays != nil && *derived.ScheduleVarianceDays <= 0 {
		positives = append(positives, "Schedule on track or ahead")
	}
	if budgetHealth != nil && strings.EqualFold(strings.TrimSpace(*budgetHealth), "green") {
		positives = append(positives, "Budget health marked as green")
	}
	a.PositiveSignals = orSentinel(positives, "No strong positive signals identified")

	// Data gaps: one line per missing source, one per uncomputable metric.
	var gaps []string
	if baseline == nil {
		gaps = append(gaps, "Missing baseline plan data")
	}
	if wave == nil {
		gaps = append(gaps, "Missing forecast snapshot data")
	}
	if actuals == nil {
		gaps = append(gaps, "Missing actuals execution data")
	}
	if derived.CostVariancePct == nil {
		gaps = append(gaps, "Cannot calculate cost variance - missing budget or actuals")
	}
	if derived.ScheduleVarianceDays == nil {
		gaps = append(gaps, "Cannot calculate schedule variance - missing dates")
	}
	a.DataGaps = orSentinel(gaps, "Complete data from all three sources")

	// Recommendations sourced from rule violations, capped at three.
	var recs []string
	for _, v := range p.Violations {
		if v.Recommendation != "" {
			recs = append(recs, v.Recommendation)
		}
	}
	if len(recs) > 3 {
		recs = recs[:3]
	}
	a.Recommendations = orSentinel(recs, "Continue monitoring with current data")

	a.Summary = e.buildSummary(a.Status, actuals, derived, p.Violations)
	return a
}

// buildSummary writes the 2-3 sentence executive summary.
func (e *Engine) buildSummary(status string, actuals *ActualsSummary, derived DerivedMetrics, violations []RuleViolation) string {
	parts := []string{fmt.Sprintf("Project classified as '%s' based on cross-source analysis.", status)}

	cv, sv := derived.CostVariancePct, derived.ScheduleVarianceDays
	switch {
	case cv != nil && abs(*cv) > e.thresholds.KeyDriverVariancePct:
		direction := "underrun"
		if *cv < 0 {
			direction = "overrun"
		}
		parts = append(parts, fmt.Sprintf("Cost variance of %.1f%% indicates %s.", *cv, direction))
	case sv != nil && absInt(*sv) > e.thresholds.SummaryScheduleDriftDays:
		direction := "acceleration"
		if *sv > 0 {
			direction = "delay"
		}
		parts = append(parts, fmt.Sprintf("Schedule variance of %d days shows %s.", *sv, direction))
	case actuals != nil && actuals.TotalHours != nil:
		parts = append(parts, fmt.Sprintf("Execution tracking shows %.0f hours logged to date.", *actuals.TotalHours))
	default:
		parts = append(parts, "Limited execution data available for detailed analysis.")
	}

	for _, v := range violations {
		if v.Severity == SeverityCritical {
			parts = append(parts, "Critical issue: "+v.Description)
			break
		}
	}

	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ")
}

func orSentinel(list []string, sentinel string) []string {
	if len(list) == 0 {
		return []string{sentinel}
	}
	return list
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
