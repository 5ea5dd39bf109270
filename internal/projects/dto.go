package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
)

// SpecificationInput is one labelled value on a project spec sheet.
type SpecificationInput struct {
	Name  string
	Value string
}

// CreateProjectInput captures the fields accepted when creating a portfolio entry.
type CreateProjectInput struct {
	Title          string
	Description    string
	Type           string
	URL            *string
	Materials      []string
	CompletionDate *time.Time
	Featured       bool
	ImageMediaIDs  []uuid.UUID
	ModelMediaIDs  []uuid.UUID
	Specifications []SpecificationInput
}

// UpdateProjectInput carries the optional fields for a project update.
// Nil pointers leave stored values untouched. Non-nil media ID slices
// replace the assets of that kind; a non-nil specification slice replaces
// the whole spec sheet.
type UpdateProjectInput struct {
	Title               *string
	Description         *string
	Type                *string
	URL                 *string
	Materials           *[]string
	CompletionDate      *time.Time
	ClearCompletionDate bool
	Featured            *bool
	ImageMediaIDs       *[]uuid.UUID
	ModelMediaIDs       *[]uuid.UUID
	Specifications      *[]SpecificationInput
}

// ProjectListFilters describe the supported filter knobs for the portfolio list.
type ProjectListFilters struct {
	Type     *string
	Featured *bool
	Query    string
}

// ListProjectsInput captures pagination plus filters for the list endpoint.
type ListProjectsInput struct {
	Filters    ProjectListFilters
	Pagination pagination.Params
}

// ProjectList wraps the paginated projects plus the next page cursor.
type ProjectList struct {
	Projects   []models.Project `json:"projects"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
