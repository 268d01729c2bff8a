/*
Package insight derives the fixed catalog of formula-based insights from a
completed portfolio analysis run.

PURPOSE:
  16 independent rules, each with an explicit evidence bar, fixed numeric
  thresholds, and a literal formula string recorded for auditability. A
  rule that cannot meet its evidence bar produces nothing - that is normal
  operation, not an error. No rule ever infers past its data.

KEY CONCEPTS IN THIS FILE (types.go):
  - Persona: one of the three consumer roles
  - Insight: a single finding, tagged with its target personas (one record,
    persona tags, no physical duplication - copies are made at retrieval)
  - Set: the run's full insight collection with persona-filtered,
    severity-ranked retrieval

SEE ALSO:
  - rules.go: The 16 formulas
  - engine.go: Generation and retrieval
*/
package insight

import (
	"time"

	"github.com/warp/portfolio-engine/portfolio"
)

// =============================================================================
// PERSONAS
// =============================================================================

// Persona is one of the three insight consumer roles.
type Persona string

const (
	PersonaExecutive Persona = "executive"
	PersonaVP        Persona = "vp"
	PersonaManager   Persona = "manager"
)

// Personas lists the roles in routing order.
func Personas() []Persona {
	return []Persona{PersonaExecutive, PersonaVP, PersonaManager}
}

// =============================================================================
// INSIGHT
// =============================================================================

// Insight is one formula-rule finding. ProjectID is nil for portfolio-wide
// insights. Metrics carries the rule-specific supporting payload.
type Insight struct {
	Category       string
	Title          string
	Severity       portfolio.Severity
	Description    string
	Impact         string
	Recommendation string
	Metrics        map[string]any
	FormulaUsed    string
	DataSources    []string
	ProjectID      *string
	Confidence     string // Low | Medium | High
	Personas       []Persona
}

// ForPersona reports whether this insight is routed to the given role.
func (i Insight) ForPersona(p Persona) bool {
	for _, t := range i.Personas {
		if t == p {
			return true
		}
	}
	return false
}

// Export reduces the insight to the plain boundary structure.
func (i Insight) Export() map[string]any {
	m := map[string]any{
		"category":          i.Category,
		"title":             i.Title,
		"severity":          string(i.Severity),
		"description":       i.Description,
		"impact":            i.Impact,
		"recommendation":    i.Recommendation,
		"metrics":           i.Metrics,
		"formula_used":      i.FormulaUsed,
		"data_sources_used": toAnyList(i.DataSources),
		"confidence":        i.Confidence,
	}
	if i.ProjectID != nil {
		m["project_id"] = *i.ProjectID
	}
	return m
}

// clone deep-copies the insight so one consumer's mutation cannot leak into
// another's view.
func (i Insight) clone() Insight {
	c := i
	c.Metrics = cloneValue(i.Metrics).(map[string]any)
	c.DataSources = append([]string(nil), i.DataSources...)
	c.Personas = append([]Persona(nil), i.Personas...)
	if i.ProjectID != nil {
		id := *i.ProjectID
		c.ProjectID = &id
	}
	return c
}

// cloneValue deep-copies the map/slice/scalar payloads insights carry.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for j, e := range x {
			out[j] = cloneValue(e)
		}
		return out
	default:
		return x
	}
}

func toAnyList(list []string) []any {
	out := make([]any, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}

// =============================================================================
// SET
// =============================================================================

// Set is one run's insight collection.
type Set struct {
	GeneratedAt time.Time
	insights    []Insight
}

// add appends one insight in generation order.
func (s *Set) add(i Insight) {
	s.insights = append(s.insights, i)
}

// Len returns the number of distinct insight records.
func (s *Set) Len() int {
	return len(s.insights)
}
