/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Sources:
    TableRequest, LoadResponse

  Analysis:
    AnalyzeResponse, ProjectListItemDTO

  Generic:
    ErrorResponse

  Project detail, summary, insight, and export payloads are the engine's
  Export() maps passed through verbatim, so the JSON contract matches the
  engine's boundary structure exactly.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - portfolio/export.go: The Export() boundary structures
*/
package api

import (
	"github.com/warp/portfolio-engine/portfolio"
	"github.com/warp/portfolio-engine/tabular"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TableRequest is a raw tabular dataset posted for one source. Rows are
// positional against Columns; cells are untyped JSON values.
type TableRequest struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// LoadResponse reports what column detection decided for a posted source.
type LoadResponse struct {
	Source   string            `json:"source"`
	Rows     int               `json:"rows"`
	Columns  map[string]string `json:"columns"` // semantic field -> source column
	Warnings []string          `json:"warnings,omitempty"`
}

// AnalyzeResponse summarizes a completed analysis run.
type AnalyzeResponse struct {
	RunID        string `json:"run_id"`
	GeneratedAt  string `json:"generated_at"`
	ProjectCount int    `json:"project_count"`
	InsightCount int    `json:"insight_count"`
}

// ProjectListItemDTO is one row of the project index.
type ProjectListItemDTO struct {
	ID               string `json:"project_id"`
	Name             string `json:"project_name"`
	Status           string `json:"status"`
	Confidence       string `json:"confidence"`
	SourcesAvailable int    `json:"sources_available"`
	ViolationCount   int    `json:"violation_count"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLoadResponse(rep portfolio.LoadReport) LoadResponse {
	cols := make(map[string]string, len(rep.Columns))
	for field, column := range rep.Columns {
		cols[string(field)] = column
	}
	return LoadResponse{
		Source:   rep.Source,
		Rows:     rep.Rows,
		Columns:  cols,
		Warnings: rep.Warnings,
	}
}

func toTable(req TableRequest) *tabular.Table {
	return tabular.New(req.Columns, req.Rows)
}

func toProjectListItem(p *portfolio.ProjectAnalysis) ProjectListItemDTO {
	return ProjectListItemDTO{
		ID:               p.ID,
		Name:             p.Name,
		Status:           p.Assessment.Status,
		Confidence:       p.Assessment.Confidence,
		SourcesAvailable: p.SourcesAvailable(),
		ViolationCount:   len(p.Violations),
	}
}
