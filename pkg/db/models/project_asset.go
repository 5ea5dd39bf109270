package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printforge/printshop-backend/pkg/enums"
)

// ProjectAsset links an uploaded media object (image or STL model) to a
// project, keeping display order.
type ProjectAsset struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index"`
	MediaID   uuid.UUID       `gorm:"column:media_id;type:uuid;not null"`
	Media     *Media          `gorm:"foreignKey:MediaID"`
	Kind      enums.MediaKind `gorm:"column:kind;not null"`
	Position  int             `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
