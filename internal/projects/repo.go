package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for portfolio projects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params pagination.Params, filters ProjectListFilters) (*ProjectList, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceAssets(ctx context.Context, projectID uuid.UUID, kind enums.MediaKind, assets []models.ProjectAsset) error
	ReplaceSpecifications(ctx context.Context, projectID uuid.UUID, specs []models.ProjectSpecification) error
	DeleteAllChildren(ctx context.Context, projectID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a projects repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Omit("Assets", "Specifications").Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Assets.Media").
		Preload("Specifications", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ProjectListFilters) (*ProjectList, error) {
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Assets.Media").
		Preload("Specifications", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	if filters.Type != nil {
		qb = qb.Where("type = ?", *filters.Type)
	}
	if filters.Featured != nil {
		qb = qb.Where("featured = ?", *filters.Featured)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		qb = qb.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Project
	err = qb.Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ProjectList{
		Projects:   rows,
		NextCursor: nextCursor,
	}, nil
}

func (r *repository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Omit("Assets", "Specifications").Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Project{}).Error
}

// ReplaceAssets swaps the asset rows of one kind for the provided set.
func (r *repository) ReplaceAssets(ctx context.Context, projectID uuid.UUID, kind enums.MediaKind, assets []models.ProjectAsset) error {
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND kind = ?", projectID, kind).
		Delete(&models.ProjectAsset{}).Error
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Media").Create(&assets).Error
}

// ReplaceSpecifications swaps the whole spec sheet for the provided set.
func (r *repository) ReplaceSpecifications(ctx context.Context, projectID uuid.UUID, specs []models.ProjectSpecification) error {
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ProjectSpecification{}).Error
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&specs).Error
}

func (r *repository) DeleteAllChildren(ctx context.Context, projectID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ProjectAsset{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ProjectSpecification{}).Error
}
