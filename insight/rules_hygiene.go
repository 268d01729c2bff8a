/*
rules_hygiene.go - Data-hygiene and team-level insight formulas (tier 4)

PURPOSE:
  Rules that read the raw source tables rather than the joined project
  records: Phantom Work Detection, Task Hygiene Score, Idle Capacity
  Hotspots, and Execution Velocity by Team. These catch problems that
  only show up below the project grain.
*/
package insight

import (
	"fmt"
	"sort"

	"github.com/warp/portfolio-engine/normalize"
	"github.com/warp/portfolio-engine/portfolio"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// 13. PHANTOM WORK DETECTION
// =============================================================================

func (g *Generator) phantomWorkDetection(res *portfolio.Result, s *Set) {
	if res.Actuals == nil {
		return
	}

	var phantom []any
	var phantomHours float64

	res.Each(func(p *portfolio.ProjectAnalysis) {
		hours, ok := hoursOf(p)
		if !ok {
			return
		}
		if p.Baseline != nil || p.Wave != nil {
			return
		}
		phantomHours += hours
		ref := projectRef(p)
		ref["hours"] = hours
		phantom = append(phantom, ref)
	})

	if phantomHours <= 0 {
		return
	}

	s.add(Insight{
		Category:       "data_hygiene",
		Title:          fmt.Sprintf("Phantom Work: %.0f Hours Logged Outside the Plan", phantomHours),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("%d identities have logged effort but appear in neither the baseline nor the forecast", len(phantom)),
		Impact:         fmt.Sprintf("%.0f hours of untracked work with no planned outcome", phantomHours),
		Recommendation: "Map phantom identities to planned work or stop the untracked effort",
		Metrics: map[string]any{
			"phantom_count":    len(phantom),
			"phantom_hours":    phantomHours,
			"phantom_projects": phantom,
		},
		FormulaUsed: "Actual hours AND (No baseline task AND No forecast mapping)",
		DataSources: []string{"actuals"},
		Confidence:  "High",
		Personas:    []Persona{PersonaManager},
	})
}

// =============================================================================
// 14. TASK HYGIENE SCORE
// =============================================================================

func (g *Generator) taskHygieneScore(res *portfolio.Result, s *Set) {
	th := g.thresholds
	src := res.Baseline
	if src == nil || src.Table.Empty() {
		return
	}

	ownerCol, hasOwner := src.Columns[tabular.FieldOwner]
	startCol, hasStart := src.Columns[tabular.FieldStartDate]
	finishCol, hasFinish := src.Columns[tabular.FieldFinishDate]
	hoursCol, hasHours := src.Columns[tabular.FieldHours]

	total := src.Table.Len()
	complete := 0
	for row := 0; row < total; row++ {
		if !hasOwner {
			continue
		}
		if _, ok := normalize.Text(src.Table.Value(row, ownerCol)); !ok {
			continue
		}
		if !hasStart || !hasFinish {
			continue
		}
		if _, ok := normalize.Date(src.Table.Value(row, startCol)); !ok {
			continue
		}
		if _, ok := normalize.Date(src.Table.Value(row, finishCol)); !ok {
			continue
		}
		if !hasHours {
			continue
		}
		if hours, ok := normalize.Number(src.Table.Value(row, hoursCol)); !ok || hours <= 0 {
			continue
		}
		complete++
	}

	hygienePct := float64(complete) / float64(total) * 100
	if hygienePct >= th.TaskHygieneFloorPct {
		return
	}

	s.add(Insight{
		Category:       "data_hygiene",
		Title:          fmt.Sprintf("Task Hygiene Score: %.1f%% of Baseline Rows Fully Populated", hygienePct),
		Severity:       portfolio.SeverityWarning,
		Description:    fmt.Sprintf("Only %d of %d baseline rows carry an owner, both dates, and a positive effort estimate", complete, total),
		Impact:         "Downstream variance and velocity metrics degrade on incomplete rows",
		Recommendation: "Enforce owner, date, and effort fields on baseline entry",
		Metrics: map[string]any{
			"hygiene_pct":   hygienePct,
			"complete_rows": complete,
			"total_rows":    total,
			"threshold_pct": th.TaskHygieneFloorPct,
		},
		FormulaUsed: "Hygiene % = Tasks with (owner + dates + effort) / Total tasks",
		DataSources: []string{"baseline"},
		Confidence:  "High",
		Personas:    []Persona{PersonaManager},
	})
}

// =============================================================================
// 15. IDLE CAPACITY HOTSPOTS
// =============================================================================

func (g *Generator) idleCapacityHotspots(res *portfolio.Result, s *Set) {
	th := g.thresholds
	src := res.Actuals
	if src == nil || src.Table.Empty() {
		return
	}
	resourceCol, ok := src.Columns[tabular.FieldResource]
	if !ok {
		return
	}

	hoursCol, hasHours := src.Columns[tabular.FieldActualHours]
	if !hasHours {
		hoursCol, hasHours = src.Columns[tabular.FieldHours]
	}
	if !hasHours {
		return
	}
	keyCol, hasKey := src.Columns[tabular.FieldWaveNum]
	if !hasKey {
		keyCol, hasKey = src.Columns[tabular.FieldID]
	}

	type usage struct {
		hours    float64
		projects map[string]bool
	}
	usages := map[string]*usage{}

	for row := 0; row < src.Table.Len(); row++ {
		name, ok := normalize.Text(src.Table.Value(row, resourceCol))
		if !ok {
			continue
		}
		u := usages[name]
		if u == nil {
			u = &usage{projects: map[string]bool{}}
			usages[name] = u
		}
		if hours, ok := normalize.Number(src.Table.Value(row, hoursCol)); ok {
			u.hours += hours
		}
		if hasKey {
			if key, ok := normalize.Key(src.Table.Value(row, keyCol)); ok {
				u.projects[key] = true
			}
		}
	}

	names := make([]string, 0, len(usages))
	for name := range usages {
		names = append(names, name)
	}
	sort.Strings(names)

	var idle []any
	var idleHours float64
	for _, name := range names {
		u := usages[name]
		if u.hours >= th.IdleHoursCeiling {
			continue
		}
		idleHours += u.hours
		idle = append(idle, map[string]any{
			"resource":      name,
			"total_hours":   u.hours,
			"project_count": len(u.projects),
		})
	}

	if len(idle) <= th.IdleMinResources {
		return
	}

	s.add(Insight{
		Category:       "resource_utilization",
		Title:          fmt.Sprintf("Idle Capacity Hotspots: %d Resources Under %.0f Logged Hours", len(idle), th.IdleHoursCeiling),
		Severity:       portfolio.SeverityInfo,
		Description:    fmt.Sprintf("%d resources logged under %.0f hours across the tracked period", len(idle), th.IdleHoursCeiling),
		Impact:         "Potential unallocated capacity, or time tracking gaps",
		Recommendation: "Confirm whether these resources are under-allocated or under-reporting",
		Metrics: map[string]any{
			"idle_count":       len(idle),
			"idle_total_hours": idleHours,
			"idle_resources":   idle,
		},
		FormulaUsed: "Resources with <100 hours logged",
		DataSources: []string{"actuals"},
		Confidence:  "Medium",
		Personas:    []Persona{PersonaManager},
	})
}

// =============================================================================
// 16. EXECUTION VELOCITY BY TEAM
// =============================================================================

func (g *Generator) executionVelocityByTeam(res *portfolio.Result, s *Set) {
	th := g.thresholds

	type team struct {
		completion float64
		hours      float64
		projects   int
	}
	teams := map[string]*team{}

	res.Each(func(p *portfolio.ProjectAnalysis) {
		if p.Baseline == nil || p.Baseline.Owner == nil || *p.Baseline.Owner == "" {
			return
		}
		completion := p.Derived.CompletionPct
		if completion == nil {
			return
		}
		hours, ok := hoursOf(p)
		if !ok {
			return
		}
		owner := *p.Baseline.Owner
		t := teams[owner]
		if t == nil {
			t = &team{}
			teams[owner] = t
		}
		t.completion += *completion
		t.hours += hours
		t.projects++
	})

	if len(teams) < th.VelocityMinTeams {
		return
	}

	type ranked struct {
		owner    string
		velocity float64
		projects int
	}
	rankings := make([]ranked, 0, len(teams))
	for owner, t := range teams {
		rankings = append(rankings, ranked{owner: owner, velocity: t.completion / t.hours, projects: t.projects})
	}
	sort.Slice(rankings, func(a, b int) bool {
		if rankings[a].velocity != rankings[b].velocity {
			return rankings[a].velocity < rankings[b].velocity
		}
		return rankings[a].owner < rankings[b].owner
	})

	slowest := rankings
	if len(slowest) > 3 {
		slowest = slowest[:3]
	}
	var lowest []any
	for _, r := range slowest {
		lowest = append(lowest, map[string]any{
			"owner":         r.owner,
			"velocity":      r.velocity,
			"project_count": r.projects,
		})
	}

	s.add(Insight{
		Category:       "velocity",
		Title:          fmt.Sprintf("Execution Velocity by Team: %d Teams Ranked", len(rankings)),
		Severity:       portfolio.SeverityInfo,
		Description:    fmt.Sprintf("Completion-per-hour velocity computed for %d owner teams", len(rankings)),
		Impact:         "Relative delivery pace visible across teams",
		Recommendation: "Investigate practices on the slowest teams for correctable drag",
		Metrics: map[string]any{
			"team_count":    len(rankings),
			"slowest_teams": lowest,
		},
		FormulaUsed: "Velocity = Completion % / Effort hours",
		DataSources: []string{"actuals", "baseline"},
		Confidence:  "High",
		Personas:    []Persona{PersonaManager},
	})
}
