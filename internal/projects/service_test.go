package projects

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProjectsRepo struct {
	projects map[uuid.UUID]*models.Project
	assets   map[uuid.UUID][]models.ProjectAsset
	specs    map[uuid.UUID][]models.ProjectSpecification
	deleted  []uuid.UUID
}

func newStubProjectsRepo() *stubProjectsRepo {
	return &stubProjectsRepo{
		projects: make(map[uuid.UUID]*models.Project),
		assets:   make(map[uuid.UUID][]models.ProjectAsset),
		specs:    make(map[uuid.UUID][]models.ProjectSpecification),
	}
}

func (s *stubProjectsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubProjectsRepo) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	s.projects[project.ID] = project
	return project, nil
}

func (s *stubProjectsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *project
	assets := append([]models.ProjectAsset(nil), s.assets[id]...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].Position < assets[j].Position })
	loaded.Assets = assets
	loaded.Specifications = append([]models.ProjectSpecification(nil), s.specs[id]...)
	return &loaded, nil
}

func (s *stubProjectsRepo) List(ctx context.Context, params pagination.Params, filters ProjectListFilters) (*ProjectList, error) {
	list := &ProjectList{}
	for _, project := range s.projects {
		list.Projects = append(list.Projects, *project)
	}
	return list, nil
}

func (s *stubProjectsRepo) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	s.projects[project.ID] = project
	return project, nil
}

func (s *stubProjectsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.projects, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubProjectsRepo) ReplaceAssets(ctx context.Context, projectID uuid.UUID, kind enums.MediaKind, assets []models.ProjectAsset) error {
	kept := s.assets[projectID][:0]
	for _, asset := range s.assets[projectID] {
		if asset.Kind != kind {
			kept = append(kept, asset)
		}
	}
	for i := range assets {
		if assets[i].ID == uuid.Nil {
			assets[i].ID = uuid.New()
		}
		kept = append(kept, assets[i])
	}
	s.assets[projectID] = kept
	return nil
}

func (s *stubProjectsRepo) ReplaceSpecifications(ctx context.Context, projectID uuid.UUID, specs []models.ProjectSpecification) error {
	for i := range specs {
		if specs[i].ID == uuid.Nil {
			specs[i].ID = uuid.New()
		}
	}
	s.specs[projectID] = specs
	return nil
}

func (s *stubProjectsRepo) DeleteAllChildren(ctx context.Context, projectID uuid.UUID) error {
	delete(s.assets, projectID)
	delete(s.specs, projectID)
	return nil
}

type stubMediaFinder struct {
	rows map[uuid.UUID]*models.Media
}

func (s *stubMediaFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	media, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return media, nil
}

type stubMediaRemover struct {
	deleted []uuid.UUID
	err     error
}

func (s *stubMediaRemover) Delete(ctx context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func mustAnyTime() time.Time {
	return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type projectFixture struct {
	repo    *stubProjectsRepo
	media   *stubMediaFinder
	remover *stubMediaRemover
	imageID uuid.UUID
	modelID uuid.UUID
}

func newProjectFixture() *projectFixture {
	imageID := uuid.New()
	modelID := uuid.New()
	return &projectFixture{
		repo: newStubProjectsRepo(),
		media: &stubMediaFinder{rows: map[uuid.UUID]*models.Media{
			imageID: {ID: imageID, Kind: enums.MediaKindProjectImage},
			modelID: {ID: modelID, Kind: enums.MediaKindProjectModel},
		}},
		remover: &stubMediaRemover{},
		imageID: imageID,
		modelID: modelID,
	}
}

func (f *projectFixture) service(t *testing.T) Service {
	t.Helper()

	svc, err := NewService(f.repo, stubTxRunner{}, f.media, f.remover)
	require.NoError(t, err)
	return svc
}

func createProjectInput(f *projectFixture) CreateProjectInput {
	return CreateProjectInput{
		Title:         "Articulated Dragon",
		Description:   "A multi-piece articulated print.",
		Type:          "figurine",
		Materials:     []string{"PLA", "TPU"},
		ImageMediaIDs: []uuid.UUID{f.imageID},
		ModelMediaIDs: []uuid.UUID{f.modelID},
		Specifications: []SpecificationInput{
			{Name: "Layer height", Value: "0.2mm"},
			{Name: "Infill", Value: "15%"},
		},
	}
}

func TestServiceCreate_attachesAssetsAndSpecs(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	created, err := svc.Create(context.Background(), createProjectInput(f))
	require.NoError(t, err)

	require.Len(t, created.Assets, 2)
	assert.Equal(t, enums.MediaKindProjectImage, created.Assets[0].Kind)
	assert.Equal(t, f.imageID, created.Assets[0].MediaID)
	require.Len(t, created.Specifications, 2)
	assert.Equal(t, "Layer height", created.Specifications[0].Name)
}

func TestServiceCreate_requiresCoreFields(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	input := createProjectInput(f)
	input.Type = "  "
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreate_rejectsWrongAssetKind(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	input := createProjectInput(f)
	// A model file cannot be attached as a gallery image.
	input.ImageMediaIDs = []uuid.UUID{f.modelID}

	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceUpdate_replacesOneKindOnly(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	created, err := svc.Create(context.Background(), createProjectInput(f))
	require.NoError(t, err)

	newImageID := uuid.New()
	f.media.rows[newImageID] = &models.Media{ID: newImageID, Kind: enums.MediaKindProjectImage}

	images := []uuid.UUID{newImageID}
	updated, err := svc.Update(context.Background(), created.ID, UpdateProjectInput{ImageMediaIDs: &images})
	require.NoError(t, err)

	var imageAssets, modelAssets []models.ProjectAsset
	for _, asset := range updated.Assets {
		if asset.Kind == enums.MediaKindProjectImage {
			imageAssets = append(imageAssets, asset)
		} else {
			modelAssets = append(modelAssets, asset)
		}
	}
	require.Len(t, imageAssets, 1)
	assert.Equal(t, newImageID, imageAssets[0].MediaID)
	require.Len(t, modelAssets, 1)
	assert.Equal(t, f.modelID, modelAssets[0].MediaID)

	// The replaced image lost its last reference and was cleaned up.
	assert.Equal(t, []uuid.UUID{f.imageID}, f.remover.deleted)
}

func TestServiceUpdate_replacesSpecSheet(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	created, err := svc.Create(context.Background(), createProjectInput(f))
	require.NoError(t, err)

	specs := []SpecificationInput{{Name: "Print time", Value: "14h"}}
	updated, err := svc.Update(context.Background(), created.ID, UpdateProjectInput{Specifications: &specs})
	require.NoError(t, err)

	require.Len(t, updated.Specifications, 1)
	assert.Equal(t, "Print time", updated.Specifications[0].Name)
}

func TestServiceUpdate_clearCompletionDate(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	input := createProjectInput(f)
	date := mustAnyTime()
	input.CompletionDate = &date
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, created.CompletionDate)

	updated, err := svc.Update(context.Background(), created.ID, UpdateProjectInput{ClearCompletionDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletionDate)
}

func TestServiceDelete_cleansUpAssets(t *testing.T) {
	f := newProjectFixture()
	svc := f.service(t)

	created, err := svc.Create(context.Background(), createProjectInput(f))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, f.repo.deleted)
	assert.ElementsMatch(t, []uuid.UUID{f.imageID, f.modelID}, f.remover.deleted)
	assert.Empty(t, f.repo.assets[created.ID])
	assert.Empty(t, f.repo.specs[created.ID])
}
