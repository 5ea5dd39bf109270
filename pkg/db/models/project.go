package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project is a portfolio entry: a finished 3D-print job with its images and
// model files catalogued for display.
type Project struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title          string                 `gorm:"column:title;not null"`
	Description    string                 `gorm:"column:description;not null"`
	Type           string                 `gorm:"column:type;not null"`
	URL            *string                `gorm:"column:url"`
	Materials      pq.StringArray         `gorm:"column:materials;type:text[];not null;default:ARRAY[]::text[]"`
	CompletionDate *time.Time             `gorm:"column:completion_date;type:date"`
	Featured       bool                   `gorm:"column:featured;not null;default:false"`
	Assets         []ProjectAsset         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Specifications []ProjectSpecification `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
