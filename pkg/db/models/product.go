package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog master record. UnitCost is the current price used to
// snapshot invoice line items; changing it never touches existing invoices.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	SKU          *string         `gorm:"column:sku;uniqueIndex"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	Stock        int             `gorm:"column:stock;not null;default:0"`
	Category     *string         `gorm:"column:category"`
	Notes        *string         `gorm:"column:notes"`
	ImageMediaID *uuid.UUID      `gorm:"column:image_media_id;type:uuid"`
	ImageMedia   *Media          `gorm:"foreignKey:ImageMediaID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
