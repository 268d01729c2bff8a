/*
derive.go - Derived metric computation

PURPOSE:
  Computes variance, burn-rate, and completion metrics from the joined
  record. Every metric is gated: it is computed only when every named input
  is present and any denominator is non-zero. No metric EVER defaults to
  zero on missing input - absence must stay distinguishable downstream so
  consistency rules can be suppressed instead of firing spuriously.

SIGN CONVENTION:
  Variance is favorability: (baseline - actual) / |baseline| * 100.
  Over budget is NEGATIVE. A 130K actual on a 100K budget is -30.0.
  Schedule variance is days LATE: forecast minus baseline finish, positive
  when the forecast slips past the plan.

SEE ALSO:
  - rules.go: Consumes these with the same absence gating
  - types.go: DerivedMetrics
*/
package portfolio

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// variancePct returns (baseline - actual) / |baseline| * 100, or false when
// the baseline is zero.
func variancePct(actual, baseline decimal.Decimal) (float64, bool) {
	if baseline.IsZero() {
		return 0, false
	}
	pct := baseline.Sub(actual).Div(baseline.Abs()).Mul(hundred)
	return pct.InexactFloat64(), true
}

// deriveMetrics computes all derived metrics for one joined record.
func deriveMetrics(baseline *BaselineMetrics, wave *WaveSnapshot, actuals *ActualsSummary) DerivedMetrics {
	var d DerivedMetrics

	var budget, cost, eac *decimal.Decimal
	if baseline != nil {
		budget = baseline.TotalBudget
		eac = baseline.EAC
	}
	if actuals != nil {
		cost = actuals.TotalCost
	}

	if budget != nil && cost != nil {
		if pct, ok := variancePct(*cost, *budget); ok {
			amount := budget.Sub(*cost)
			d.CostVariancePct = &pct
			d.CostVarianceAmount = &amount
		}
	}

	if budget != nil && eac != nil {
		if pct, ok := variancePct(*eac, *budget); ok {
			amount := budget.Sub(*eac)
			d.EACVariancePct = &pct
			d.EACVarianceAmount = &amount
		}
	}

	if baseline != nil && baseline.Finish != nil && wave != nil && wave.ForecastFinish != nil {
		days := int(wave.ForecastFinish.Sub(*baseline.Finish).Hours() / 24)
		d.ScheduleVarianceDays = &days
	}

	if cost != nil && actuals.WorkSpanDays != nil && *actuals.WorkSpanDays > 0 {
		span := decimal.NewFromInt(int64(*actuals.WorkSpanDays))
		burn := cost.Div(span)
		d.DailyBurnRate = &burn
	}

	// Completion: forecast snapshot first, baseline as fallback, else absent.
	switch {
	case wave != nil && wave.CompletionPct != nil:
		d.CompletionPct = wave.CompletionPct
	case baseline != nil && baseline.CompletionPct != nil:
		d.CompletionPct = baseline.CompletionPct
	}

	if budget != nil && cost != nil {
		remaining := budget.Sub(*cost)
		d.RemainingBudget = &remaining
		if remaining.IsNegative() {
			d.BudgetOverrun = true
		}
	}

	return d
}

// containsAny reports whether s (lowercased) contains any of the needles.
func containsAny(s string, needles ...string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// strVal dereferences an optional string, "" when absent.
func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
