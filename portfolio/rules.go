/*
rules.go - Cross-source consistency rules

PURPOSE:
  Checks the joined record against a fixed set of sanity rules. Every rule
  requires its specific inputs to be present before it evaluates - a rule
  never fires on partial data it cannot interpret. Each violation carries a
  description with the offending numbers substituted in and a fixed per-rule
  recommendation.

THE RULES:
  status_cost_mismatch       (warning)  green status vs cost overrun
  burn_rate_overrun          (critical) burn-projected total beats budget
  schedule_health_mismatch   (warning)  late forecast vs green schedule health
  missing_actuals            (info)     active status with no execution data
  completion_effort_mismatch (warning)  reported vs hours-implied completion

SEE ALSO:
  - derive.go: The gated inputs these rules consume
  - config: The trigger thresholds
*/
package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// evaluateRules runs the fixed rule set over one joined record.
func (e *Engine) evaluateRules(baseline *BaselineMetrics, wave *WaveSnapshot, actuals *ActualsSummary, derived DerivedMetrics) []RuleViolation {
	th := e.thresholds
	var out []RuleViolation

	// status_cost_mismatch: management reports green while cost runs over.
	if wave != nil && wave.Status != nil && derived.CostVariancePct != nil {
		if containsAny(*wave.Status, "green", "on track") && *derived.CostVariancePct < th.StatusCostVariancePct {
			out = append(out, RuleViolation{
				Rule:     "status_cost_mismatch",
				Severity: SeverityWarning,
				Description: fmt.Sprintf("Status is '%s' but cost variance is %.1f%%",
					*wave.Status, *derived.CostVariancePct),
				Recommendation: "Review status accuracy or investigate cost drivers",
			})
		}
	}

	// burn_rate_overrun: projecting total cost from the current burn rate
	// exceeds the approved budget by more than the projection factor.
	if baseline != nil && actuals != nil &&
		baseline.TotalBudget != nil && baseline.TotalBudget.IsPositive() &&
		actuals.TotalCost != nil && actuals.TotalCost.IsPositive() &&
		derived.CompletionPct != nil && *derived.CompletionPct > 0 {
		completion := decimal.NewFromFloat(*derived.CompletionPct / 100)
		projected := actuals.TotalCost.Div(completion)
		limit := baseline.TotalBudget.Mul(decimal.NewFromFloat(th.BurnProjectionFactor))
		if projected.GreaterThan(limit) {
			out = append(out, RuleViolation{
				Rule:     "burn_rate_overrun",
				Severity: SeverityCritical,
				Description: fmt.Sprintf("Current burn rate projects %sK total cost vs %sK budget",
					projected.Div(decimal.NewFromInt(1000)).Round(0),
					baseline.TotalBudget.Div(decimal.NewFromInt(1000)).Round(0)),
				Recommendation: "Immediate budget review required",
			})
		}
	}

	// schedule_health_mismatch: forecast slipped but the baseline indicator
	// still reads green.
	if derived.ScheduleVarianceDays != nil && *derived.ScheduleVarianceDays > th.ScheduleMismatchDays &&
		baseline != nil && baseline.ScheduleHealth != nil &&
		containsAny(*baseline.ScheduleHealth, "green", "on track") {
		out = append(out, RuleViolation{
			Rule:     "schedule_health_mismatch",
			Severity: SeverityWarning,
			Description: fmt.Sprintf("Schedule delayed %d days but health shows '%s'",
				*derived.ScheduleVarianceDays, *baseline.ScheduleHealth),
			Recommendation: "Update schedule health indicator",
		})
	}

	// missing_actuals: reported active with no execution record at all.
	if wave != nil && actuals == nil && wave.Status != nil &&
		containsAny(*wave.Status, "active", "in progress", "green") {
		out = append(out, RuleViolation{
			Rule:           "missing_actuals",
			Severity:       SeverityInfo,
			Description:    "Project marked active but no execution data found",
			Recommendation: "Verify project has started or update status",
		})
	}

	// completion_effort_mismatch: hours-implied completion diverges from the
	// reported number by more than the allowed gap.
	if baseline != nil && actuals != nil &&
		baseline.PlannedHours != nil && *baseline.PlannedHours > 0 &&
		actuals.TotalHours != nil && *actuals.TotalHours > 0 &&
		derived.CompletionPct != nil {
		implied := *actuals.TotalHours / *baseline.PlannedHours * 100
		gap := *derived.CompletionPct - implied
		if gap < 0 {
			gap = -gap
		}
		if gap > th.CompletionEffortGapPts {
			out = append(out, RuleViolation{
				Rule:     "completion_effort_mismatch",
				Severity: SeverityWarning,
				Description: fmt.Sprintf("Reported %.0f%% complete but hours suggest %.0f%%",
					*derived.CompletionPct, implied),
				Recommendation: "Reconcile completion % with actual effort",
			})
		}
	}

	return out
}
