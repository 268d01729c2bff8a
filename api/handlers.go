/*
handlers.go - HTTP API handlers for the portfolio analysis engine

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Sources:
    POST   /api/sources/baseline       Load/replace the baseline table
    POST   /api/sources/forecast       Load/replace the forecast table
    POST   /api/sources/actuals        Load/replace the actuals table

  Analysis:
    POST   /api/analyze                Run full-portfolio analysis
    GET    /api/projects               Project index for the last run
    GET    /api/projects/{id}          Full record for one project
    GET    /api/identities             Discovered identity union

  Consumption:
    GET    /api/insights/{persona}     Persona-routed insights (?project=)
    GET    /api/summary                Portfolio rollup
    GET    /api/export                 Full run export

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Engine: loaded sources + thresholds
  - Generator: insight formula catalog
  - Last completed run (result + insight set), guarded by a RWMutex

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, generator, rollup)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown project, no completed run
  - 409: Analysis requested with no sources loaded
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/portfolio-engine/config"
	"github.com/warp/portfolio-engine/insight"
	"github.com/warp/portfolio-engine/portfolio"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	mu        sync.RWMutex
	engine    *portfolio.Engine
	generator *insight.Generator

	// Last completed run. nil until the first successful /api/analyze.
	result   *portfolio.Result
	insights *insight.Set
}

// NewHandler creates a new handler with the given thresholds.
func NewHandler(th config.Thresholds) *Handler {
	return &Handler{
		engine:    portfolio.New(th),
		generator: insight.NewGenerator(th),
	}
}

// =============================================================================
// SOURCE HANDLERS
// =============================================================================

// LoadSource loads or wholesale-replaces one source table.
// POST /api/sources/{source}
func (h *Handler) LoadSource(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	var req TableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Columns) == 0 {
		writeError(w, http.StatusBadRequest, "Table has no columns", nil)
		return
	}

	t := toTable(req)

	h.mu.Lock()
	defer h.mu.Unlock()

	var rep portfolio.LoadReport
	switch source {
	case "baseline":
		rep = h.engine.LoadBaseline(t)
	case "forecast":
		rep = h.engine.LoadForecast(t)
	case "actuals":
		rep = h.engine.LoadActuals(t)
	default:
		writeError(w, http.StatusBadRequest, "Unknown source: "+source, nil)
		return
	}

	// A replaced source invalidates the previous run.
	h.result = nil
	h.insights = nil

	writeJSON(w, http.StatusOK, toLoadResponse(rep))
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// Analyze runs the full-portfolio analysis and insight generation.
// POST /api/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.engine.DiscoverIdentities()) == 0 {
		writeError(w, http.StatusConflict, "No sources loaded", portfolio.ErrNoSources)
		return
	}

	res := h.engine.AnalyzeAll()
	set := h.generator.Generate(res)
	h.result = res
	h.insights = set

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		RunID:        res.RunID,
		GeneratedAt:  res.GeneratedAt.Format(time.RFC3339),
		ProjectCount: len(res.Order),
		InsightCount: set.Len(),
	})
}

// ListProjects returns the project index for the last run.
// GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	res, ok := h.lastRun(w)
	if !ok {
		return
	}

	items := make([]ProjectListItemDTO, 0, len(res.Order))
	res.Each(func(p *portfolio.ProjectAnalysis) {
		items = append(items, toProjectListItem(p))
	})
	writeJSON(w, http.StatusOK, items)
}

// GetProject returns the full joined record for one project, analyzed
// fresh against the loaded sources.
// GET /api/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.RLock()
	defer h.mu.RUnlock()

	p, err := h.engine.AnalyzeProject(id)
	switch {
	case errors.Is(err, portfolio.ErrInvalidProjectID):
		writeError(w, http.StatusBadRequest, "Invalid project id", err)
		return
	case errors.Is(err, portfolio.ErrNoSources):
		writeError(w, http.StatusConflict, "No sources loaded", err)
		return
	case errors.Is(err, portfolio.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "Project not found", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Analysis failed", err)
		return
	}

	writeJSON(w, http.StatusOK, p.Export())
}

// ListIdentities returns the discovered identity union across sources.
// GET /api/identities
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := h.engine.DiscoverIdentities()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(ids),
		"identities": ids,
	})
}

// =============================================================================
// CONSUMPTION HANDLERS
// =============================================================================

// GetInsights returns the persona-routed insights for the last run.
// "all" returns the de-duplicated combined view. An optional ?project=
// query narrows to project-scoped insights.
// GET /api/insights/{persona}?project={id}
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	persona := insight.Persona(chi.URLParam(r, "persona"))

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.lastRun(w); !ok {
		return
	}

	var list []insight.Insight
	switch {
	case persona == "all":
		list = h.insights.All()
	case !validPersona(persona):
		writeError(w, http.StatusBadRequest, "Unknown persona: "+string(persona), nil)
		return
	case r.URL.Query().Get("project") != "":
		list = h.insights.ForPersonaProject(persona, r.URL.Query().Get("project"))
	default:
		list = h.insights.ForPersona(persona)
	}

	out := make([]any, 0, len(list))
	for _, i := range list {
		out = append(out, i.Export())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"persona":  string(persona),
		"count":    len(out),
		"insights": out,
	})
}

// GetSummary returns the portfolio rollup for the last run.
// GET /api/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	res, ok := h.lastRun(w)
	if !ok {
		return
	}

	sum, err := res.Summary(h.engine.Thresholds())
	if errors.Is(err, portfolio.ErrNoProjects) {
		writeError(w, http.StatusNotFound, "Run contains no analyzable projects", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Summary failed", err)
		return
	}

	writeJSON(w, http.StatusOK, sum.Export())
}

// Export returns the full run export: every project record plus run
// metadata.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	res, ok := h.lastRun(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Export())
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// lastRun fetches the last completed run, writing a 404 when none exists.
// Callers must hold at least the read lock.
func (h *Handler) lastRun(w http.ResponseWriter) (*portfolio.Result, bool) {
	if h.result == nil {
		writeError(w, http.StatusNotFound, "No completed analysis run", nil)
		return nil, false
	}
	return h.result, true
}

func validPersona(p insight.Persona) bool {
	for _, known := range insight.Personas() {
		if p == known {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
