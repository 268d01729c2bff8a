/*
errors.go - Centralized error types for the portfolio engine

PURPOSE:
  All engine-level errors in one place. Missing DATA is never an error in
  this system - it propagates as absent fields. Errors are reserved for
  misuse of the engine lifecycle (summarizing before analyzing, asking for
  an unknown project) and for invalid identifiers.

USAGE:
  if errors.Is(err, portfolio.ErrNoProjects) {
      // empty run: render the explicit "no projects" state
  }

SEE ALSO:
  - engine.go: Returns these from lifecycle operations
  - summary.go: ErrNoProjects on an empty run
*/
package portfolio

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoSources is returned when analysis is requested before any source
	// has been loaded.
	ErrNoSources = errors.New("no sources loaded")

	// ErrNoProjects is returned by Summary when the run contains no
	// analyzed projects. Consumers must render this explicitly instead of
	// showing zero-filled aggregates.
	ErrNoProjects = errors.New("no projects analyzed")

	// ErrProjectNotFound is returned when a requested identity matched no
	// source after both exact and fuzzy resolution.
	ErrProjectNotFound = errors.New("project not found in any source")

	// ErrInvalidProjectID is returned for identifiers that normalize to
	// nothing usable (empty, "UNKNOWN", "NOT SPECIFIED").
	ErrInvalidProjectID = errors.New("invalid project identifier")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ProjectError wraps a per-project analysis failure with its identity.
type ProjectError struct {
	ProjectID string
	Err       error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %s: %v", e.ProjectID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}
