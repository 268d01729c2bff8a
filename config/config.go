/*
config.go - Threshold policy surface

PURPOSE:
  Collects every tunable policy constant in one place: the fuzzy-match
  acceptance threshold, the consistency-rule triggers, the 16 insight
  thresholds, and the portfolio risk ratios. The defaults reproduce the
  reference behavior; a YAML file can override any of them.

  These numbers are POLICY, not physics. None of them has a documented
  derivation, which is exactly why they live here instead of being buried
  in rule code.

USAGE:
  th := config.Default()
  th, err := config.Load("thresholds.yaml")   // defaults + file overrides

SEE ALSO:
  - portfolio/rules.go, portfolio/summary.go: consistency/portfolio consumers
  - insight/rules.go: insight-formula consumers
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds every policy constant the engine evaluates against.
type Thresholds struct {
	// FuzzyMatch is the similarity score a fuzzy name match must exceed.
	FuzzyMatch float64 `yaml:"fuzzy_match"`

	// Consistency rules.
	StatusCostVariancePct    float64 `yaml:"status_cost_variance_pct"`    // rule fires below this (negative = overrun)
	BurnProjectionFactor     float64 `yaml:"burn_projection_factor"`      // projected cost > budget * factor
	ScheduleMismatchDays     int     `yaml:"schedule_mismatch_days"`      // late days before health mismatch fires
	CompletionEffortGapPts   float64 `yaml:"completion_effort_gap_pts"`   // reported vs implied completion gap
	KeyDriverVariancePct     float64 `yaml:"key_driver_variance_pct"`     // |cost variance| worth reporting as a driver
	SummaryScheduleDriftDays int     `yaml:"summary_schedule_drift_days"` // schedule drift worth a summary sentence

	// Insight formulas.
	ValueLeakagePct        float64 `yaml:"value_leakage_pct"`
	CoverageCriticalPct    float64 `yaml:"coverage_critical_pct"`
	CoverageWarningPct     float64 `yaml:"coverage_warning_pct"`
	TopBottomMinProjects   int     `yaml:"top_bottom_min_projects"`
	VelocityFloor          float64 `yaml:"velocity_floor"`       // completion pts per work day
	VelocityMinWorkDays    int     `yaml:"velocity_min_work_days"`
	RunwayFloorDays        float64 `yaml:"runway_floor_days"`    // budget runway below this = high burn
	ExecutionDragDays      int     `yaml:"execution_drag_days"`
	InvestmentMinProjects  int     `yaml:"investment_min_projects"`
	EffortMismatchRatio    float64 `yaml:"effort_mismatch_ratio"` // actual hours vs planned hours
	EffortMismatchMaxPct   float64 `yaml:"effort_mismatch_max_pct"`
	StrategicUtilFloorPct  float64 `yaml:"strategic_util_floor_pct"`
	SpanMinProjects        int     `yaml:"span_min_projects"`
	SpanAvgDelayDays       float64 `yaml:"span_avg_delay_days"`
	SpanOverBudgetRatio    float64 `yaml:"span_over_budget_ratio"`
	BurnoutMinSpanDays     int     `yaml:"burnout_min_span_days"`
	BurnoutHoursPerHead    float64 `yaml:"burnout_hours_per_head"`
	BurnoutMaxCompletion   float64 `yaml:"burnout_max_completion"`
	TaskHygieneFloorPct    float64 `yaml:"task_hygiene_floor_pct"`
	IdleHoursCeiling       float64 `yaml:"idle_hours_ceiling"`
	IdleMinResources       int     `yaml:"idle_min_resources"`
	VelocityMinTeams       int     `yaml:"velocity_min_teams"`

	// Portfolio rollup risk ratios.
	OverBudgetRatio  float64 `yaml:"over_budget_ratio"`
	DelayedRatio     float64 `yaml:"delayed_ratio"`
	TroubledRatio    float64 `yaml:"troubled_ratio"`
	MinimalDataRatio float64 `yaml:"minimal_data_ratio"`
}

// Default returns the reference thresholds.
func Default() Thresholds {
	return Thresholds{
		FuzzyMatch: 0.6,

		StatusCostVariancePct:    -10,
		BurnProjectionFactor:     1.2,
		ScheduleMismatchDays:     30,
		CompletionEffortGapPts:   20,
		KeyDriverVariancePct:     10,
		SummaryScheduleDriftDays: 15,

		ValueLeakagePct:       20,
		CoverageCriticalPct:   60,
		CoverageWarningPct:    80,
		TopBottomMinProjects:  10,
		VelocityFloor:         0.5,
		VelocityMinWorkDays:   30,
		RunwayFloorDays:       30,
		ExecutionDragDays:     30,
		InvestmentMinProjects: 4,
		EffortMismatchRatio:   0.5,
		EffortMismatchMaxPct:  40,
		StrategicUtilFloorPct: 70,
		SpanMinProjects:       5,
		SpanAvgDelayDays:      30,
		SpanOverBudgetRatio:   0.5,
		BurnoutMinSpanDays:    60,
		BurnoutHoursPerHead:   200,
		BurnoutMaxCompletion:  50,
		TaskHygieneFloorPct:   70,
		IdleHoursCeiling:      100,
		IdleMinResources:      5,
		VelocityMinTeams:      3,

		OverBudgetRatio:  0.3,
		DelayedRatio:     0.4,
		TroubledRatio:    0.5,
		MinimalDataRatio: 0.3,
	}
}

// Load reads a YAML thresholds file on top of the defaults. Fields absent
// from the file keep their default values.
func Load(path string) (Thresholds, error) {
	th := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read thresholds: %w", err)
	}
	if err := yaml.Unmarshal(data, &th); err != nil {
		return th, fmt.Errorf("parse thresholds: %w", err)
	}
	return th, nil
}
