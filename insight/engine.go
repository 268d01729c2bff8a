/*
engine.go - Insight generation and retrieval

PURPOSE:
  Runs the 16 formula rules over one analysis run and serves the results
  by persona (and optionally by project), always sorted by severity rank:
  critical, high, warning, info.

DE-DUPLICATION:
  Insights are stored once with persona tags. The combined "all personas"
  view de-duplicates on (title, category, severity); per-persona views
  return value copies so consumers can safely mutate what they receive.

SEE ALSO:
  - rules.go: The rule implementations
  - types.go: Insight and Set
*/
package insight

import (
	"sort"
	"time"

	"github.com/warp/portfolio-engine/config"
	"github.com/warp/portfolio-engine/portfolio"
)

// Generator evaluates the insight catalog against a run.
type Generator struct {
	thresholds config.Thresholds
}

// NewGenerator creates a generator with the given thresholds.
func NewGenerator(th config.Thresholds) *Generator {
	return &Generator{thresholds: th}
}

// Generate runs every rule, in the fixed catalog order, over the run.
// Rules whose evidence bar is not met contribute nothing.
func (g *Generator) Generate(res *portfolio.Result) *Set {
	s := &Set{GeneratedAt: time.Now().UTC()}

	// Board level.
	g.valueLeakageIndex(res, s)
	g.strategyExecutionCoverage(res, s)
	g.topBottomAnalysis(res, s)
	g.deliveryConfidenceForecast(res, s)

	// Portfolio and P&L.
	g.costPerStrategicOutcome(res, s)
	g.executionDragIndex(res, s)
	g.investmentMap(res, s)
	g.hiddenDependencyRisk(res, s)

	// Operational excellence.
	g.effortProgressMismatch(res, s)
	g.resourceUtilizationQuality(res, s)
	g.managerialSpanEffectiveness(res, s)
	g.burnoutRiskRadar(res, s)

	// Execution hygiene.
	g.phantomWorkDetection(res, s)
	g.taskHygieneScore(res, s)
	g.idleCapacityHotspots(res, s)
	g.executionVelocityByTeam(res, s)

	return s
}

// =============================================================================
// RETRIEVAL - always severity-ranked, always copies
// =============================================================================

// ForPersona returns the persona's insights, severity-ranked, as value
// copies.
func (s *Set) ForPersona(p Persona) []Insight {
	var out []Insight
	for _, i := range s.insights {
		if i.ForPersona(p) {
			out = append(out, i.clone())
		}
	}
	sortBySeverity(out)
	return out
}

// ForPersonaProject returns the persona's insights filtered by project id.
// Portfolio-wide insights (nil project id) are excluded.
func (s *Set) ForPersonaProject(p Persona, projectID string) []Insight {
	var out []Insight
	for _, i := range s.insights {
		if i.ForPersona(p) && i.ProjectID != nil && *i.ProjectID == projectID {
			out = append(out, i.clone())
		}
	}
	sortBySeverity(out)
	return out
}

// All returns the combined view across personas, de-duplicated on
// (title, category, severity) and severity-ranked.
func (s *Set) All() []Insight {
	type key struct {
		title    string
		category string
		severity portfolio.Severity
	}
	seen := make(map[key]bool)
	var out []Insight
	for _, i := range s.insights {
		k := key{i.Title, i.Category, i.Severity}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, i.clone())
	}
	sortBySeverity(out)
	return out
}

// Export reduces a persona's insight list to the boundary structure.
func (s *Set) Export(p Persona) []any {
	list := s.ForPersona(p)
	out := make([]any, 0, len(list))
	for _, i := range list {
		out = append(out, i.Export())
	}
	return out
}

// sortBySeverity orders by severity rank, keeping generation order within a
// rank.
func sortBySeverity(list []Insight) {
	sort.SliceStable(list, func(a, b int) bool {
		return portfolio.SeverityRank(list[a].Severity) < portfolio.SeverityRank(list[b].Severity)
	})
}
