/*
Package portfolio reconciles project data from three independently
maintained sources into per-project and portfolio-level assessments.

PURPOSE:
  This package contains the record-linkage and cross-source reconciliation
  core: it joins an approved baseline, the latest weekly forecast snapshot,
  and aggregated execution actuals into one record per project identity,
  computes derived metrics with strict null-propagation, evaluates
  cross-source consistency rules, and synthesizes a human-readable
  assessment.

KEY CONCEPTS IN THIS FILE (types.go):
  - BaselineMetrics / WaveSnapshot / ActualsSummary: per-source sub-records,
    every field optional (nil = "absent", never zero)
  - DerivedMetrics: computed values, each gated on its inputs
  - RuleViolation: a consistency-rule hit with severity
  - ProjectAnalysis: the full joined record for one identity
  - Result: one immutable analysis run over all identities

DESIGN PRINCIPLES:
  1. Absence is a type-level state: optional fields are pointers and an
     absent field is nil, distinguishable from an explicit zero everywhere
  2. Precision: money is decimal.Decimal, never float
  3. Immutability: a Result is built once per run and not mutated after

SEE ALSO:
  - engine.go: Source loading and run orchestration
  - derive.go: DerivedMetrics computation
  - rules.go: Consistency rules
  - assess.go: Assessment synthesis
*/
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity grades rule violations and insights.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityRank orders severities for display: critical first, info last.
// Unknown severities sort after info.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// =============================================================================
// PER-SOURCE SUB-RECORDS
// =============================================================================

// BaselineMetrics carries the approved plan-of-record fields for one
// project. Immutable after aggregation; any field may be absent.
type BaselineMetrics struct {
	Start             *time.Time
	Finish            *time.Time
	TotalBudget       *decimal.Decimal
	Capex             *decimal.Decimal
	Opex              *decimal.Decimal
	EAC               *decimal.Decimal
	PlannedHours      *float64
	ScheduleHealth    *string
	BudgetHealth      *string
	RiskLevel         *string
	Owner             *string
	Strategic         *string
	Benefits          *string
	CompletionPct     *float64
	Stage             *string
	Interdependencies *string
}

// WaveSnapshot is the most recent weekly status record for a project.
// "Most recent" means the last matching row in source order.
type WaveSnapshot struct {
	SnapshotDate   *time.Time
	Status         *string
	Stage          *string
	ForecastFinish *time.Time
	CompletionPct  *float64
	Complexity     *string
	Owner          *string
	Budget         *decimal.Decimal
	ValueLever     *string
	ApprovalDate   *time.Time
}

// WaveTrends summarizes the full snapshot history for a project. Only built
// when at least two historical rows exist.
type WaveTrends struct {
	SnapshotCount       int
	StatusDistribution  map[string]int
	RecentDeterioration bool
}

// ActualsSummary aggregates all matched execution rows for a project. A
// project with no matched rows has no ActualsSummary at all, not a
// zero-valued one.
type ActualsSummary struct {
	TransactionCount int
	TotalHours       *float64
	TotalCost        *decimal.Decimal
	UniqueResources  *int
	WorkStart        *time.Time
	WorkEnd          *time.Time
	WorkSpanDays     *int
}

// =============================================================================
// DERIVED METRICS
// =============================================================================

// DerivedMetrics holds computed values. Each field is present only when all
// of its inputs were present and any denominator was non-zero; an absent
// field downstream means "insufficient data", never zero.
//
// Sign convention: variance is favorability. Negative = unfavorable
// (over budget / EAC above budget); positive = under budget.
type DerivedMetrics struct {
	CostVariancePct      *float64
	CostVarianceAmount   *decimal.Decimal
	EACVariancePct       *float64
	EACVarianceAmount    *decimal.Decimal
	ScheduleVarianceDays *int
	DailyBurnRate        *decimal.Decimal
	CompletionPct        *float64
	RemainingBudget      *decimal.Decimal
	BudgetOverrun        bool
}

// =============================================================================
// RULE VIOLATIONS
// =============================================================================

// RuleViolation is one consistency-rule hit for one project.
type RuleViolation struct {
	Rule           string
	Severity       Severity
	Description    string
	Recommendation string
}

// =============================================================================
// ASSESSMENT
// =============================================================================

// Assessment is the synthesized human-readable view of one project. Every
// list falls back to a single fixed sentinel line when empty, so consumers
// can render uniformly.
type Assessment struct {
	ProjectID   string
	ProjectName string
	GeneratedAt time.Time

	Status           string // On Track | At Risk | Delayed
	Health           string // baseline budget health, or "Unknown"
	Confidence       string // High | Medium | Low
	SourcesAvailable int
	Summary          string

	KeyDrivers      []string
	Observations    []string
	RisksWarnings   []string
	PositiveSignals []string
	DataGaps        []string
	Recommendations []string
}

// =============================================================================
// JOINED RECORD AND RUN RESULT
// =============================================================================

// ProjectAnalysis is the full joined record for one project identity.
type ProjectAnalysis struct {
	ID   string // normalized identity key
	Name string // display name (baseline name when available, else the key)

	Baseline *BaselineMetrics
	Wave     *WaveSnapshot
	Trends   *WaveTrends
	Actuals  *ActualsSummary

	Derived    DerivedMetrics
	Violations []RuleViolation
	Assessment Assessment
}

// SourcesAvailable counts how many of the three sources contributed.
func (p *ProjectAnalysis) SourcesAvailable() int {
	n := 0
	if p.Baseline != nil {
		n++
	}
	if p.Wave != nil {
		n++
	}
	if p.Actuals != nil {
		n++
	}
	return n
}

// Source is one loaded raw table with its detected column map.
type Source struct {
	Table       *tabular.Table
	Columns     tabular.ColumnMap
	IDDefaulted bool
}

// Result is one immutable analysis run. Projects are keyed by normalized
// identity; Order holds the identity-sorted iteration order.
type Result struct {
	RunID       string
	GeneratedAt time.Time

	Projects map[string]*ProjectAnalysis
	Order    []string

	// Raw sources, retained for the table-level hygiene insights.
	Baseline *Source
	Forecast *Source
	Actuals  *Source
}

// Get returns the analysis for a normalized identity key.
func (r *Result) Get(id string) (*ProjectAnalysis, bool) {
	p, ok := r.Projects[id]
	return p, ok
}

// Each iterates projects in identity-sorted order.
func (r *Result) Each(fn func(*ProjectAnalysis)) {
	for _, id := range r.Order {
		fn(r.Projects[id])
	}
}
