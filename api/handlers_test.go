package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portfolio-engine/api"
	"github.com/warp/portfolio-engine/config"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestRouter() http.Handler {
	return api.NewRouter(api.NewHandler(config.Default()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func baselineRequest() api.TableRequest {
	return api.TableRequest{
		Columns: []string{"project_id", "project_name", "baseline_start", "baseline_finish", "total_budget", "planned_hours", "schedule_health", "budget_health", "risk_level", "owner"},
		Rows: [][]any{
			{"P-100", "Phoenix Migration", "2024-01-01", "2024-06-30", 100000, 1000, "Green", "Green", "Low", "Dana"},
		},
	}
}

func forecastRequest() api.TableRequest {
	return api.TableRequest{
		Columns: []string{"Wave #", "project_name", "status", "forecast_finish", "completion_pct", "value_lever", "approval_date", "snapshot_date"},
		Rows: [][]any{
			{"P-100", "Phoenix Migration", "Green", "2024-08-15", 60, "Cost Reduction", "2023-11-01", "2024-05-01"},
			{"P-100", "Phoenix Migration", "Green - On Track", "2024-08-15", 65, "Cost Reduction", "2023-11-01", "2024-06-01"},
		},
	}
}

func actualsRequest() api.TableRequest {
	return api.TableRequest{
		Columns: []string{"Wave #", "actual_hours", "actual_cost", "resource", "date"},
		Rows: [][]any{
			{"p-100", 300, 65000, "alice", "2024-06-01"},
			{"P-100", 300, 65000, "bob", "2024-07-15"},
		},
	}
}

// loadAll posts all three sources, failing the test on any non-200.
func loadAll(t *testing.T, router http.Handler) {
	t.Helper()
	for source, req := range map[string]api.TableRequest{
		"baseline": baselineRequest(),
		"forecast": forecastRequest(),
		"actuals":  actualsRequest(),
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/sources/"+source, req)
		require.Equal(t, http.StatusOK, rec.Code, "loading %s: %s", source, rec.Body.String())
	}
}

// =============================================================================
// SOURCE LOADING
// =============================================================================

func TestLoadSource_ReportsDetectedColumns(t *testing.T) {
	// GIVEN: A baseline table with recognizable headers
	// WHEN: Posting it
	// THEN: The response reports the detected column map and row count

	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/sources/baseline", baselineRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "baseline", body["source"])
	assert.Equal(t, float64(1), body["rows"])

	cols := body["columns"].(map[string]any)
	assert.Equal(t, "project_id", cols["id"])
	assert.Equal(t, "project_name", cols["name"])
	assert.Equal(t, "total_budget", cols["budget"])
}

func TestLoadSource_UnknownSource(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/sources/ledger", baselineRequest())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["error"], "Unknown source")
}

func TestLoadSource_EmptyColumns(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/sources/baseline", api.TableRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadSource_MalformedBody(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/sources/baseline", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ANALYSIS FLOW
// =============================================================================

func TestAnalyze_NoSources_Conflict(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/analyze", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAnalyze_FullFlow(t *testing.T) {
	// GIVEN: All three sources loaded
	// WHEN: Running the analysis
	// THEN: The run summary, project index, and detail endpoints all serve it

	router := newTestRouter()
	loadAll(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	run := decodeMap(t, rec)
	assert.NotEmpty(t, run["run_id"])
	assert.Equal(t, float64(1), run["project_count"])

	rec = doJSON(t, router, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "P-100", items[0]["project_id"])
	assert.Equal(t, "Phoenix Migration", items[0]["project_name"])
	assert.Equal(t, float64(3), items[0]["sources_available"])

	rec = doJSON(t, router, http.MethodGet, "/api/projects/P-100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeMap(t, rec)
	meta := detail["project_metadata"].(map[string]any)
	assert.Equal(t, "P-100", meta["project_id"])
	assert.Contains(t, detail, "derived_metrics")
	assert.Contains(t, detail, "assessment")
	assert.Contains(t, detail, "baseline_metrics")
}

func TestGetProject_CaseInsensitiveLookup(t *testing.T) {
	router := newTestRouter()
	loadAll(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/p-100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	meta := decodeMap(t, rec)["project_metadata"].(map[string]any)
	assert.Equal(t, "P-100", meta["project_id"])
}

func TestGetProject_Errors(t *testing.T) {
	router := newTestRouter()

	// No sources at all.
	rec := doJSON(t, router, http.MethodGet, "/api/projects/P-100", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	loadAll(t, router)

	rec = doJSON(t, router, http.MethodGet, "/api/projects/GHOST-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Sentinel keys are never valid identities.
	rec = doJSON(t, router, http.MethodGet, "/api/projects/unknown", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListIdentities(t *testing.T) {
	router := newTestRouter()
	loadAll(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/identities", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []any{"P-100"}, body["identities"].([]any))
}

// =============================================================================
// CONSUMPTION
// =============================================================================

func TestGetInsights_PersonaRouting(t *testing.T) {
	router := newTestRouter()
	loadAll(t, router)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/analyze", nil).Code)

	for _, persona := range []string{"executive", "vp", "manager", "all"} {
		rec := doJSON(t, router, http.MethodGet, "/api/insights/"+persona, nil)
		require.Equal(t, http.StatusOK, rec.Code, persona)
		body := decodeMap(t, rec)
		assert.Equal(t, persona, body["persona"])
		assert.Contains(t, body, "insights")
	}
}

func TestGetInsights_UnknownPersona(t *testing.T) {
	router := newTestRouter()
	loadAll(t, router)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/analyze", nil).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/insights/board", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInsights_BeforeAnalyze(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/api/insights/executive", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no run yet")

	loadAll(t, router)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/analyze", nil).Code)

	rec = doJSON(t, router, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	overview := body["portfolio_overview"].(map[string]any)
	assert.Equal(t, float64(1), overview["total_projects"])
	assert.Contains(t, body, "status_distribution")
	assert.Contains(t, body, "portfolio_risks")
}

func TestExport_FullRun(t *testing.T) {
	router := newTestRouter()
	loadAll(t, router)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/analyze", nil).Code)

	rec := doJSON(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.NotEmpty(t, body["run_id"])
	projects := body["projects"].(map[string]any)
	require.Len(t, projects, 1)
	assert.Contains(t, projects, "P-100")
}

// =============================================================================
// RUN INVALIDATION
// =============================================================================

func TestLoadSource_InvalidatesPreviousRun(t *testing.T) {
	// GIVEN: A completed run
	// WHEN: Replacing a source table
	// THEN: Run-scoped endpoints 404 until the next analyze

	router := newTestRouter()
	loadAll(t, router)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/analyze", nil).Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/api/projects", nil).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/sources/actuals", actualsRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/projects", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/summary", nil).Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeMap(t, rec)["status"])
}
