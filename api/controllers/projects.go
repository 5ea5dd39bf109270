package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/printforge/printshop-backend/api/responses"
	"github.com/printforge/printshop-backend/api/validators"
	projectsvc "github.com/printforge/printshop-backend/internal/projects"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/logger"
)

type specificationRequest struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type createProjectRequest struct {
	Title          string                 `json:"title" validate:"required"`
	Description    string                 `json:"description" validate:"required"`
	Type           string                 `json:"type" validate:"required"`
	URL            *string                `json:"url,omitempty"`
	Materials      []string               `json:"materials,omitempty"`
	CompletionDate *string                `json:"completion_date,omitempty"`
	Featured       bool                   `json:"featured,omitempty"`
	ImageMediaIDs  []string               `json:"image_media_ids,omitempty"`
	ModelMediaIDs  []string               `json:"model_media_ids,omitempty"`
	Specifications []specificationRequest `json:"specifications,omitempty" validate:"omitempty,dive"`
}

type updateProjectRequest struct {
	Title               *string                 `json:"title,omitempty"`
	Description         *string                 `json:"description,omitempty"`
	Type                *string                 `json:"type,omitempty"`
	URL                 *string                 `json:"url,omitempty"`
	Materials           *[]string               `json:"materials,omitempty"`
	CompletionDate      *string                 `json:"completion_date,omitempty"`
	ClearCompletionDate bool                    `json:"clear_completion_date,omitempty"`
	Featured            *bool                   `json:"featured,omitempty"`
	ImageMediaIDs       *[]string               `json:"image_media_ids,omitempty"`
	ModelMediaIDs       *[]string               `json:"model_media_ids,omitempty"`
	Specifications      *[]specificationRequest `json:"specifications,omitempty" validate:"omitempty,dive"`
}

func toSpecificationInputs(specs []specificationRequest) []projectsvc.SpecificationInput {
	inputs := make([]projectsvc.SpecificationInput, 0, len(specs))
	for _, spec := range specs {
		inputs = append(inputs, projectsvc.SpecificationInput{
			Name:  spec.Name,
			Value: spec.Value,
		})
	}
	return inputs
}

func (req createProjectRequest) toInput() (projectsvc.CreateProjectInput, error) {
	imageIDs, err := parseUUIDList(req.ImageMediaIDs)
	if err != nil {
		return projectsvc.CreateProjectInput{}, err
	}
	modelIDs, err := parseUUIDList(req.ModelMediaIDs)
	if err != nil {
		return projectsvc.CreateProjectInput{}, err
	}
	completionDate, err := parseOptionalDate("completion_date", req.CompletionDate)
	if err != nil {
		return projectsvc.CreateProjectInput{}, err
	}

	return projectsvc.CreateProjectInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		URL:            req.URL,
		Materials:      req.Materials,
		CompletionDate: completionDate,
		Featured:       req.Featured,
		ImageMediaIDs:  imageIDs,
		ModelMediaIDs:  modelIDs,
		Specifications: toSpecificationInputs(req.Specifications),
	}, nil
}

func (req updateProjectRequest) toInput() (projectsvc.UpdateProjectInput, error) {
	input := projectsvc.UpdateProjectInput{
		Title:               req.Title,
		Description:         req.Description,
		Type:                req.Type,
		URL:                 req.URL,
		Materials:           req.Materials,
		ClearCompletionDate: req.ClearCompletionDate,
		Featured:            req.Featured,
	}

	completionDate, err := parseOptionalDate("completion_date", req.CompletionDate)
	if err != nil {
		return projectsvc.UpdateProjectInput{}, err
	}
	input.CompletionDate = completionDate

	if req.ImageMediaIDs != nil {
		ids, err := parseUUIDList(*req.ImageMediaIDs)
		if err != nil {
			return projectsvc.UpdateProjectInput{}, err
		}
		input.ImageMediaIDs = &ids
	}
	if req.ModelMediaIDs != nil {
		ids, err := parseUUIDList(*req.ModelMediaIDs)
		if err != nil {
			return projectsvc.UpdateProjectInput{}, err
		}
		input.ModelMediaIDs = &ids
	}
	if req.Specifications != nil {
		specs := toSpecificationInputs(*req.Specifications)
		input.Specifications = &specs
	}

	return input, nil
}

type projectAssetResponse struct {
	ID       uuid.UUID      `json:"id"`
	MediaID  uuid.UUID      `json:"media_id"`
	Media    *mediaResponse `json:"media,omitempty"`
	Position int            `json:"position"`
}

type projectSpecificationResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type projectResponse struct {
	ID             uuid.UUID                      `json:"id"`
	Title          string                         `json:"title"`
	Description    string                         `json:"description"`
	Type           string                         `json:"type"`
	URL            *string                        `json:"url,omitempty"`
	Materials      []string                       `json:"materials"`
	CompletionDate *string                        `json:"completion_date,omitempty"`
	Featured       bool                           `json:"featured"`
	Images         []projectAssetResponse         `json:"images"`
	Models         []projectAssetResponse         `json:"models"`
	Specifications []projectSpecificationResponse `json:"specifications"`
	CreatedAt      time.Time                      `json:"created_at"`
	UpdatedAt      time.Time                      `json:"updated_at"`
}

type projectListResponse struct {
	Projects   []projectResponse `json:"projects"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newProjectAssetResponse(asset *models.ProjectAsset) projectAssetResponse {
	resp := projectAssetResponse{
		ID:       asset.ID,
		MediaID:  asset.MediaID,
		Position: asset.Position,
	}
	if asset.Media != nil {
		media := newMediaResponse(asset.Media)
		resp.Media = &media
	}
	return resp
}

func newProjectResponse(project *models.Project) projectResponse {
	images := make([]projectAssetResponse, 0)
	modelFiles := make([]projectAssetResponse, 0)
	for i := range project.Assets {
		asset := &project.Assets[i]
		if asset.Kind == enums.MediaKindProjectModel {
			modelFiles = append(modelFiles, newProjectAssetResponse(asset))
			continue
		}
		images = append(images, newProjectAssetResponse(asset))
	}

	specs := make([]projectSpecificationResponse, 0, len(project.Specifications))
	for _, spec := range project.Specifications {
		specs = append(specs, projectSpecificationResponse{Name: spec.Name, Value: spec.Value})
	}

	resp := projectResponse{
		ID:             project.ID,
		Title:          project.Title,
		Description:    project.Description,
		Type:           project.Type,
		URL:            project.URL,
		Materials:      project.Materials,
		Featured:       project.Featured,
		Images:         images,
		Models:         modelFiles,
		Specifications: specs,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
	if project.CompletionDate != nil {
		date := project.CompletionDate.Format(dateLayout)
		resp.CompletionDate = &date
	}
	return resp
}

func newProjectListResponse(list *projectsvc.ProjectList) projectListResponse {
	items := make([]projectResponse, 0, len(list.Projects))
	for i := range list.Projects {
		items = append(items, newProjectResponse(&list.Projects[i]))
	}
	return projectListResponse{Projects: items, NextCursor: list.NextCursor}
}

// ProjectCreate handles creating a portfolio entry with its assets.
func ProjectCreate(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		var payload createProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProjectResponse(project))
	}
}

// ProjectDetail returns one portfolio entry with assets and specifications.
func ProjectDetail(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProjectResponse(project))
	}
}

// ProjectList returns a cursor-paginated page of the portfolio.
func ProjectList(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := projectsvc.ProjectListFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}
		if projectType := validators.SanitizeString(r.URL.Query().Get("type"), 120); projectType != "" {
			filters.Type = &projectType
		}
		if filters.Featured, err = validators.ParseQueryBool(r, "featured"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), projectsvc.ListProjectsInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProjectListResponse(list))
	}
}

// ProjectUpdate applies a partial update, replacing assets per kind when provided.
func ProjectUpdate(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProjectResponse(project))
	}
}

// ProjectDelete removes a portfolio entry, its assets, and spec sheet.
func ProjectDelete(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "project service unavailable"))
			return
		}

		id, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
