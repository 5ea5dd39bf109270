package projects

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProjectsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	media := `
CREATE TABLE IF NOT EXISTS media (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  object_key TEXT NOT NULL UNIQUE,
  content_type TEXT NOT NULL,
  file_name TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	projects := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  type TEXT NOT NULL,
  url TEXT,
  materials TEXT,
  completion_date DATETIME,
  featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	assets := `
CREATE TABLE IF NOT EXISTS project_assets (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  media_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	specs := `
CREATE TABLE IF NOT EXISTS project_specifications (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  value TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(media).Error)
	require.NoError(t, conn.Exec(projects).Error)
	require.NoError(t, conn.Exec(assets).Error)
	require.NoError(t, conn.Exec(specs).Error)
	return conn
}

func seedProject(t *testing.T, conn *gorm.DB, title, projectType string, featured bool, created time.Time) *models.Project {
	t.Helper()

	project := &models.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: "test project",
		Type:        projectType,
		Materials:   pq.StringArray{"PLA"},
		Featured:    featured,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, conn.Create(project).Error)
	return project
}

func seedMedia(t *testing.T, conn *gorm.DB, kind enums.MediaKind, key string) *models.Media {
	t.Helper()

	media := &models.Media{
		ID:          uuid.New(),
		Kind:        kind,
		ObjectKey:   key,
		ContentType: "image/png",
		FileName:    "file.png",
		SizeBytes:   100,
	}
	require.NoError(t, conn.Create(media).Error)
	return media
}

func TestRepositoryReplaceAssets_byKind(t *testing.T) {
	conn := setupProjectsTestDB(t)
	repo := NewRepository(conn)

	project := seedProject(t, conn, "Dragon", "figurine", false, time.Now().UTC())
	image := seedMedia(t, conn, enums.MediaKindProjectImage, "media/project_image/a/one.png")
	model := seedMedia(t, conn, enums.MediaKindProjectModel, "media/project_model/b/part.stl")

	require.NoError(t, repo.ReplaceAssets(context.Background(), project.ID, enums.MediaKindProjectImage, []models.ProjectAsset{
		{ID: uuid.New(), ProjectID: project.ID, MediaID: image.ID, Kind: enums.MediaKindProjectImage, Position: 0},
	}))
	require.NoError(t, repo.ReplaceAssets(context.Background(), project.ID, enums.MediaKindProjectModel, []models.ProjectAsset{
		{ID: uuid.New(), ProjectID: project.ID, MediaID: model.ID, Kind: enums.MediaKindProjectModel, Position: 0},
	}))

	// Replacing images leaves the model asset in place.
	replacement := seedMedia(t, conn, enums.MediaKindProjectImage, "media/project_image/c/two.png")
	require.NoError(t, repo.ReplaceAssets(context.Background(), project.ID, enums.MediaKindProjectImage, []models.ProjectAsset{
		{ID: uuid.New(), ProjectID: project.ID, MediaID: replacement.ID, Kind: enums.MediaKindProjectImage, Position: 0},
	}))

	loaded, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assets, 2)

	var imageCount, modelCount int
	for _, asset := range loaded.Assets {
		switch asset.Kind {
		case enums.MediaKindProjectImage:
			imageCount++
			assert.Equal(t, replacement.ID, asset.MediaID)
		case enums.MediaKindProjectModel:
			modelCount++
		}
	}
	assert.Equal(t, 1, imageCount)
	assert.Equal(t, 1, modelCount)
}

func TestRepositoryReplaceSpecifications(t *testing.T) {
	conn := setupProjectsTestDB(t)
	repo := NewRepository(conn)

	project := seedProject(t, conn, "Bracket", "functional", false, time.Now().UTC())

	require.NoError(t, repo.ReplaceSpecifications(context.Background(), project.ID, []models.ProjectSpecification{
		{ID: uuid.New(), ProjectID: project.ID, Name: "Layer height", Value: "0.2mm", Position: 0},
		{ID: uuid.New(), ProjectID: project.ID, Name: "Infill", Value: "40%", Position: 1},
	}))
	require.NoError(t, repo.ReplaceSpecifications(context.Background(), project.ID, []models.ProjectSpecification{
		{ID: uuid.New(), ProjectID: project.ID, Name: "Print time", Value: "3h", Position: 0},
	}))

	loaded, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Specifications, 1)
	assert.Equal(t, "Print time", loaded.Specifications[0].Name)
}

func TestRepositoryList_filters(t *testing.T) {
	conn := setupProjectsTestDB(t)
	repo := NewRepository(conn)

	now := time.Now().UTC()
	seedProject(t, conn, "Dragon", "figurine", true, now)
	seedProject(t, conn, "Bracket", "functional", false, now.Add(-time.Hour))
	seedProject(t, conn, "Vase", "decor", true, now.Add(-2*time.Hour))

	figurine := "figurine"
	byType, err := repo.List(context.Background(), pagination.Params{}, ProjectListFilters{Type: &figurine})
	require.NoError(t, err)
	require.Len(t, byType.Projects, 1)
	assert.Equal(t, "Dragon", byType.Projects[0].Title)

	featured := true
	byFeatured, err := repo.List(context.Background(), pagination.Params{}, ProjectListFilters{Featured: &featured})
	require.NoError(t, err)
	assert.Len(t, byFeatured.Projects, 2)

	byQuery, err := repo.List(context.Background(), pagination.Params{}, ProjectListFilters{Query: "Vas"})
	require.NoError(t, err)
	require.Len(t, byQuery.Projects, 1)
	assert.Equal(t, "Vase", byQuery.Projects[0].Title)
}

func TestRepositoryMaterialsRoundTrip(t *testing.T) {
	conn := setupProjectsTestDB(t)
	repo := NewRepository(conn)

	project := seedProject(t, conn, "Multi Material", "decor", false, time.Now().UTC())
	project.Materials = pq.StringArray{"PLA", "PETG", "TPU"}
	_, err := repo.Update(context.Background(), project)
	require.NoError(t, err)

	loaded, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"PLA", "PETG", "TPU"}, loaded.Materials)
}
