/*
engine.go - Source loading and run orchestration

PURPOSE:
  The Engine owns the three loaded sources and orchestrates an analysis
  run: discover the union of valid identities, join the sources per
  identity, derive metrics, evaluate rules, synthesize assessments, and
  return one immutable Result.

LIFECYCLE:
  engine := portfolio.New(config.Default())
  engine.LoadBaseline(table)       // reloading a source replaces it wholesale
  engine.LoadForecast(table)
  engine.LoadActuals(table)
  res := engine.AnalyzeAll()       // immutable run aggregate
  sum, err := res.Summary(th)

FAILURE ISOLATION:
  A panic while analyzing one identity is recovered, logged with the
  identifier, and that project is omitted from the run. The batch always
  runs to completion.

SEE ALSO:
  - aggregate.go: Per-identity source joining
  - summary.go: Portfolio rollup over a Result
*/
package portfolio

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/warp/portfolio-engine/config"
	"github.com/warp/portfolio-engine/normalize"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the loaded sources and the active thresholds. It accumulates
// no per-run state: every AnalyzeAll call builds a fresh Result.
type Engine struct {
	thresholds config.Thresholds

	baseline *Source
	forecast *Source
	actuals  *Source
}

// New creates an engine with the given thresholds.
func New(th config.Thresholds) *Engine {
	return &Engine{thresholds: th}
}

// LoadReport tells the operator what column detection decided for a source.
type LoadReport struct {
	Source   string
	Rows     int
	Columns  tabular.ColumnMap
	Warnings []string
}

func (e *Engine) load(name string, t *tabular.Table) (*Source, LoadReport) {
	det := tabular.Detect(t)
	src := &Source{Table: t, Columns: det.Columns, IDDefaulted: det.IDDefaulted}
	rep := LoadReport{Source: name, Rows: t.Len(), Columns: det.Columns, Warnings: det.Warnings}
	log.Printf("loaded %s: %d rows, %d columns mapped", name, t.Len(), len(det.Columns))
	if id, ok := det.Columns.Column(tabular.FieldID); ok && !det.IDDefaulted {
		log.Printf("  %s id column: %q", name, id)
	}
	if key, ok := det.Columns.Column(tabular.FieldWaveNum); ok {
		log.Printf("  %s shared key column: %q", name, key)
	}
	for _, w := range det.Warnings {
		log.Printf("  warning: %s: %s", name, w)
	}
	return src, rep
}

// LoadBaseline loads (or wholesale replaces) the baseline source.
func (e *Engine) LoadBaseline(t *tabular.Table) LoadReport {
	src, rep := e.load("baseline", t)
	e.baseline = src
	return rep
}

// LoadForecast loads (or wholesale replaces) the forecast-snapshot source.
func (e *Engine) LoadForecast(t *tabular.Table) LoadReport {
	src, rep := e.load("forecast", t)
	e.forecast = src
	return rep
}

// LoadActuals loads (or wholesale replaces) the actuals source.
func (e *Engine) LoadActuals(t *tabular.Table) LoadReport {
	src, rep := e.load("actuals", t)
	e.actuals = src
	return rep
}

// =============================================================================
// SINGLE-PROJECT ANALYSIS
// =============================================================================

// AnalyzeProject joins all sources for one raw identifier and returns the
// full assessment record. Idempotent for identical inputs (timestamps
// aside). ErrProjectNotFound when no source has any trace of the identity.
func (e *Engine) AnalyzeProject(rawID string) (*ProjectAnalysis, error) {
	key, ok := normalize.KeyString(rawID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProjectID, rawID)
	}
	if e.baseline == nil && e.forecast == nil && e.actuals == nil {
		return nil, ErrNoSources
	}

	p := &ProjectAnalysis{ID: key, Name: key}

	var baselineName *string
	p.Baseline, baselineName = e.baselineFor(key)
	if baselineName != nil {
		p.Name = *baselineName
	}
	p.Wave = e.waveFor(key)
	p.Trends = e.trendsFor(key)
	p.Actuals = e.actualsFor(key)

	if p.Baseline == nil && p.Wave == nil && p.Actuals == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, key)
	}

	p.Derived = deriveMetrics(p.Baseline, p.Wave, p.Actuals)
	p.Violations = e.evaluateRules(p.Baseline, p.Wave, p.Actuals, p.Derived)
	p.Assessment = e.buildAssessment(p)
	return p, nil
}

// =============================================================================
// FULL-PORTFOLIO ANALYSIS
// =============================================================================

// DiscoverIdentities returns the sorted union of valid identities across
// all loaded sources, read from each source's id / shared-key columns.
func (e *Engine) DiscoverIdentities() []string {
	seen := make(map[string]bool)

	collect := func(s *Source, f tabular.Field) {
		if s == nil {
			return
		}
		col, ok := s.Columns.Column(f)
		if !ok {
			return
		}
		for i := 0; i < s.Table.Len(); i++ {
			if key, ok := normalize.Key(s.Table.Value(i, col)); ok {
				seen[key] = true
			}
		}
	}

	collect(e.baseline, tabular.FieldID)
	collect(e.baseline, tabular.FieldWaveNum)
	collect(e.forecast, tabular.FieldWaveNum)
	collect(e.actuals, tabular.FieldWaveNum)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AnalyzeAll analyzes every discovered identity and returns the run result.
// With zero sources loaded the result is simply empty. A failure in one
// project is logged and that project omitted; the batch continues.
func (e *Engine) AnalyzeAll() *Result {
	res := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Projects:    make(map[string]*ProjectAnalysis),
		Baseline:    e.baseline,
		Forecast:    e.forecast,
		Actuals:     e.actuals,
	}

	ids := e.DiscoverIdentities()
	log.Printf("portfolio analysis: %d unique projects across all sources", len(ids))

	for _, id := range ids {
		p, err := e.analyzeIsolated(id)
		if err != nil {
			log.Printf("skipping project %s: %v", id, err)
			continue
		}
		res.Projects[p.ID] = p
		res.Order = append(res.Order, p.ID)
	}

	log.Printf("portfolio analysis complete: %d of %d projects analyzed", len(res.Order), len(ids))
	return res
}

// analyzeIsolated wraps AnalyzeProject so a panic in one project cannot
// abort the batch.
func (e *Engine) analyzeIsolated(id string) (p *ProjectAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &ProjectError{ProjectID: id, Err: fmt.Errorf("analysis panic: %v", r)}
		}
	}()
	p, err = e.AnalyzeProject(id)
	if err != nil {
		return nil, &ProjectError{ProjectID: id, Err: err}
	}
	return p, nil
}

// Thresholds exposes the active policy constants (read-only copy).
func (e *Engine) Thresholds() config.Thresholds {
	return e.thresholds
}
