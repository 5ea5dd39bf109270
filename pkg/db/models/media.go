package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/printforge/printshop-backend/pkg/enums"
)

// Media tracks one uploaded object in the storage bucket.
type Media struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind        enums.MediaKind `gorm:"column:kind;not null"`
	ObjectKey   string          `gorm:"column:object_key;not null;uniqueIndex"`
	ContentType string          `gorm:"column:content_type;not null"`
	FileName    string          `gorm:"column:file_name;not null"`
	SizeBytes   int64           `gorm:"column:size_bytes;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
