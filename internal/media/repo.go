package media

import (
	"context"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for media rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a media repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&media).Error
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Media{}).Error
}

// CountReferences sums every row that still points at the media object.
func (r *repository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64

	var productRefs int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("image_media_id = ?", id).
		Count(&productRefs).Error
	if err != nil {
		return 0, err
	}
	total += productRefs

	var assetRefs int64
	err = r.db.WithContext(ctx).
		Model(&models.ProjectAsset{}).
		Where("media_id = ?", id).
		Count(&assetRefs).Error
	if err != nil {
		return 0, err
	}
	total += assetRefs

	return total, nil
}
