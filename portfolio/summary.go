/*
summary.go - Portfolio-level rollup

PURPOSE:
  Aggregates per-project assessments into portfolio-wide distributions,
  budget rollups, and risk flags. An empty run is an explicit error
  (ErrNoProjects), never a zero-filled aggregate.

RISK FLAGS (fixed ratios, from config.Thresholds):
  budget_trend    over-budget projects exceed 30% of the portfolio
  schedule_trend  delayed projects exceed 40%
  top concerns    At Risk + Delayed > 50%, minimal-data > 30%, or any
                  critical issue exists

SEE ALSO:
  - engine.go: Produces the Result this summarizes
  - derive.go: The shared variance formula
*/
package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/portfolio-engine/config"
)

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// CriticalIssue surfaces one critical rule violation portfolio-wide.
type CriticalIssue struct {
	ProjectID      string
	ProjectName    string
	Issue          string
	Recommendation string
}

// PortfolioRisk is a threshold-triggered portfolio-level risk flag.
type PortfolioRisk struct {
	Risk        string
	Severity    Severity
	Description string
	Impact      string
}

// DataCompleteness is the 3-tier source-availability histogram.
type DataCompleteness struct {
	FullData    int // all three sources
	PartialData int // two sources
	MinimalData int // one source
}

// PortfolioMetrics holds the portfolio-wide budget rollup.
type PortfolioMetrics struct {
	TotalBaselineBudget  decimal.Decimal
	TotalActualCost      decimal.Decimal
	PortfolioVariancePct *float64 // absent when no budget was recorded
	ProjectsOverBudget   int
	ProjectsDelayed      int
}

// PortfolioSummary is the full portfolio rollup for one run.
type PortfolioSummary struct {
	TotalProjects int
	GeneratedAt   time.Time

	StatusDistribution     map[string]int
	HealthDistribution     map[string]int
	ConfidenceDistribution map[string]int
	DataCompleteness       DataCompleteness

	Metrics        PortfolioMetrics
	CriticalIssues []CriticalIssue
	PortfolioRisks []PortfolioRisk
	TopConcerns    []string
}

// =============================================================================
// ROLLUP
// =============================================================================

// Summary aggregates the run. ErrNoProjects when the run is empty.
func (r *Result) Summary(th config.Thresholds) (*PortfolioSummary, error) {
	if len(r.Projects) == 0 {
		return nil, ErrNoProjects
	}

	s := &PortfolioSummary{
		TotalProjects:          len(r.Projects),
		GeneratedAt:            time.Now().UTC(),
		StatusDistribution:     make(map[string]int),
		HealthDistribution:     make(map[string]int),
		ConfidenceDistribution: make(map[string]int),
	}

	totalBudget := decimal.Zero
	totalActuals := decimal.Zero
	hasBudget := false

	r.Each(func(p *ProjectAnalysis) {
		a := p.Assessment
		s.StatusDistribution[a.Status]++
		s.HealthDistribution[a.Health]++
		s.ConfidenceDistribution[a.Confidence]++

		switch a.SourcesAvailable {
		case 3:
			s.DataCompleteness.FullData++
		case 2:
			s.DataCompleteness.PartialData++
		default:
			s.DataCompleteness.MinimalData++
		}

		if p.Baseline != nil && p.Baseline.TotalBudget != nil {
			totalBudget = totalBudget.Add(*p.Baseline.TotalBudget)
			hasBudget = true
		}
		if p.Actuals != nil && p.Actuals.TotalCost != nil {
			totalActuals = totalActuals.Add(*p.Actuals.TotalCost)
		}
		if p.Derived.BudgetOverrun {
			s.Metrics.ProjectsOverBudget++
		}
		if p.Derived.ScheduleVarianceDays != nil && *p.Derived.ScheduleVarianceDays > 0 {
			s.Metrics.ProjectsDelayed++
		}

		for _, v := range p.Violations {
			if v.Severity == SeverityCritical {
				s.CriticalIssues = append(s.CriticalIssues, CriticalIssue{
					ProjectID:      p.ID,
					ProjectName:    p.Name,
					Issue:          v.Description,
					Recommendation: v.Recommendation,
				})
			}
		}
	})

	s.Metrics.TotalBaselineBudget = totalBudget
	s.Metrics.TotalActualCost = totalActuals
	if hasBudget && !totalBudget.IsZero() {
		if pct, ok := variancePct(totalActuals, totalBudget); ok {
			s.Metrics.PortfolioVariancePct = &pct
		}
	}

	n := float64(len(r.Projects))

	if float64(s.Metrics.ProjectsOverBudget) > n*th.OverBudgetRatio {
		s.PortfolioRisks = append(s.PortfolioRisks, PortfolioRisk{
			Risk:     "budget_trend",
			Severity: SeverityHigh,
			Description: fmt.Sprintf("%d of %d projects showing budget overruns",
				s.Metrics.ProjectsOverBudget, len(r.Projects)),
			Impact: "Portfolio-wide cost pressure",
		})
	}
	if float64(s.Metrics.ProjectsDelayed) > n*th.DelayedRatio {
		s.PortfolioRisks = append(s.PortfolioRisks, PortfolioRisk{
			Risk:     "schedule_trend",
			Severity: SeverityHigh,
			Description: fmt.Sprintf("%d of %d projects experiencing delays",
				s.Metrics.ProjectsDelayed, len(r.Projects)),
			Impact: "Portfolio delivery timeline at risk",
		})
	}

	troubled := s.StatusDistribution["At Risk"] + s.StatusDistribution["Delayed"]
	if float64(troubled) > n*th.TroubledRatio {
		s.TopConcerns = append(s.TopConcerns,
			fmt.Sprintf("Over 50%% of projects (%d/%d) are At Risk or Delayed", troubled, len(r.Projects)))
	}
	if float64(s.DataCompleteness.MinimalData) > n*th.MinimalDataRatio {
		s.TopConcerns = append(s.TopConcerns,
			fmt.Sprintf("%d projects have incomplete data across sources", s.DataCompleteness.MinimalData))
	}
	if len(s.CriticalIssues) > 0 {
		s.TopConcerns = append(s.TopConcerns,
			fmt.Sprintf("%d critical issues requiring immediate attention", len(s.CriticalIssues)))
	}

	return s, nil
}
