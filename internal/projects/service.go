package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mediaFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

// MediaRemover deletes an uploaded object once nothing references it.
type MediaRemover interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service defines portfolio operations exposed to the API layer.
type Service interface {
	Create(ctx context.Context, input CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, input ListProjectsInput) (*ProjectList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	tx      txRunner
	media   mediaFinder
	cleanup MediaRemover
}

// NewService builds a projects service with the required dependencies.
func NewService(repo Repository, tx txRunner, media mediaFinder, cleanup MediaRemover) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if media == nil {
		return nil, fmt.Errorf("media finder required")
	}
	if cleanup == nil {
		return nil, fmt.Errorf("media remover required")
	}
	return &service{repo: repo, tx: tx, media: media, cleanup: cleanup}, nil
}

func (s *service) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	projectType := strings.TrimSpace(input.Type)
	if title == "" || description == "" || projectType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, description, and type are required")
	}
	if err := checkSpecifications(input.Specifications); err != nil {
		return nil, err
	}
	if err := s.checkAssets(ctx, input.ImageMediaIDs, enums.MediaKindProjectImage); err != nil {
		return nil, err
	}
	if err := s.checkAssets(ctx, input.ModelMediaIDs, enums.MediaKindProjectModel); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:          title,
		Description:    description,
		Type:           projectType,
		URL:            input.URL,
		Materials:      input.Materials,
		CompletionDate: input.CompletionDate,
		Featured:       input.Featured,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
		}
		if err := repo.ReplaceAssets(ctx, project.ID, enums.MediaKindProjectImage, buildAssets(project.ID, enums.MediaKindProjectImage, input.ImageMediaIDs)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach project images")
		}
		if err := repo.ReplaceAssets(ctx, project.ID, enums.MediaKindProjectModel, buildAssets(project.ID, enums.MediaKindProjectModel, input.ModelMediaIDs)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach project models")
		}
		if err := repo.ReplaceSpecifications(ctx, project.ID, buildSpecifications(project.ID, input.Specifications)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach project specifications")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, project.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func (s *service) List(ctx context.Context, input ListProjectsInput) (*ProjectList, error) {
	list, err := s.repo.List(ctx, input.Pagination, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	return list, nil
}

// Update applies the provided header fields and replaces assets per kind
// and the spec sheet when the respective slices are provided. Replaced
// assets that lost their last reference are cleaned up afterwards.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
	}
	if input.Type != nil && strings.TrimSpace(*input.Type) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type cannot be empty")
	}
	if input.Specifications != nil {
		if err := checkSpecifications(*input.Specifications); err != nil {
			return nil, err
		}
	}
	if input.ImageMediaIDs != nil {
		if err := s.checkAssets(ctx, *input.ImageMediaIDs, enums.MediaKindProjectImage); err != nil {
			return nil, err
		}
	}
	if input.ModelMediaIDs != nil {
		if err := s.checkAssets(ctx, *input.ModelMediaIDs, enums.MediaKindProjectModel); err != nil {
			return nil, err
		}
	}

	var replaced []uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		project, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}

		applyProjectUpdate(project, input)
		if _, err := repo.Update(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
		}

		if input.ImageMediaIDs != nil {
			replaced = append(replaced, droppedAssets(project.Assets, enums.MediaKindProjectImage, *input.ImageMediaIDs)...)
			if err := repo.ReplaceAssets(ctx, project.ID, enums.MediaKindProjectImage, buildAssets(project.ID, enums.MediaKindProjectImage, *input.ImageMediaIDs)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace project images")
			}
		}
		if input.ModelMediaIDs != nil {
			replaced = append(replaced, droppedAssets(project.Assets, enums.MediaKindProjectModel, *input.ModelMediaIDs)...)
			if err := repo.ReplaceAssets(ctx, project.ID, enums.MediaKindProjectModel, buildAssets(project.ID, enums.MediaKindProjectModel, *input.ModelMediaIDs)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace project models")
			}
		}
		if input.Specifications != nil {
			if err := repo.ReplaceSpecifications(ctx, project.ID, buildSpecifications(project.ID, *input.Specifications)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace project specifications")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cleanupMedia(ctx, replaced)

	return s.Get(ctx, id)
}

// Delete removes the project with its assets and specifications, then cleans
// up the stored objects that lost their last reference.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}

	var orphaned []uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		project, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		for _, asset := range project.Assets {
			orphaned = append(orphaned, asset.MediaID)
		}

		if err := repo.DeleteAllChildren(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project children")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cleanupMedia(ctx, orphaned)
	return nil
}

// cleanupMedia removes media rows that are no longer referenced. Conflicts
// mean another row still uses the object; those are left alone.
func (s *service) cleanupMedia(ctx context.Context, ids []uuid.UUID) {
	for _, mediaID := range ids {
		if err := s.cleanup.Delete(ctx, mediaID); err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
				continue
			}
		}
	}
}

func (s *service) checkAssets(ctx context.Context, ids []uuid.UUID, kind enums.MediaKind) error {
	for _, mediaID := range ids {
		if mediaID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "asset media id cannot be empty")
		}
		media, err := s.media.FindByID(ctx, mediaID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("media %s not found", mediaID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset media")
		}
		if media.Kind != kind {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("media %s is not a %s", mediaID, kind))
		}
	}
	return nil
}

func checkSpecifications(specs []SpecificationInput) error {
	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "specification name required")
		}
	}
	return nil
}

func buildAssets(projectID uuid.UUID, kind enums.MediaKind, mediaIDs []uuid.UUID) []models.ProjectAsset {
	assets := make([]models.ProjectAsset, 0, len(mediaIDs))
	for i, mediaID := range mediaIDs {
		assets = append(assets, models.ProjectAsset{
			ProjectID: projectID,
			MediaID:   mediaID,
			Kind:      kind,
			Position:  i,
		})
	}
	return assets
}

func buildSpecifications(projectID uuid.UUID, specs []SpecificationInput) []models.ProjectSpecification {
	rows := make([]models.ProjectSpecification, 0, len(specs))
	for i, spec := range specs {
		rows = append(rows, models.ProjectSpecification{
			ProjectID: projectID,
			Name:      strings.TrimSpace(spec.Name),
			Value:     strings.TrimSpace(spec.Value),
			Position:  i,
		})
	}
	return rows
}

// droppedAssets returns the media IDs of existing assets of the given kind
// that do not appear in the replacement set.
func droppedAssets(existing []models.ProjectAsset, kind enums.MediaKind, kept []uuid.UUID) []uuid.UUID {
	keep := make(map[uuid.UUID]struct{}, len(kept))
	for _, id := range kept {
		keep[id] = struct{}{}
	}
	var dropped []uuid.UUID
	for _, asset := range existing {
		if asset.Kind != kind {
			continue
		}
		if _, ok := keep[asset.MediaID]; !ok {
			dropped = append(dropped, asset.MediaID)
		}
	}
	return dropped
}

func applyProjectUpdate(project *models.Project, input UpdateProjectInput) {
	if input.Title != nil {
		project.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Type != nil {
		project.Type = strings.TrimSpace(*input.Type)
	}
	if input.URL != nil {
		project.URL = input.URL
	}
	if input.Materials != nil {
		project.Materials = *input.Materials
	}
	switch {
	case input.ClearCompletionDate:
		project.CompletionDate = nil
	case input.CompletionDate != nil:
		project.CompletionDate = input.CompletionDate
	}
	if input.Featured != nil {
		project.Featured = *input.Featured
	}
}
