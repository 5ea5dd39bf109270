package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the billing document. TotalLandedCost and InvoiceTotal are the
// stored rollup of the line items plus flat labor/machine costs, grossed up
// by the margin rate. They are recomputed from scratch on every update.
type Invoice struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber   string            `gorm:"column:invoice_number;not null;uniqueIndex:idx_invoices_invoice_number"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Customer        *Customer         `gorm:"foreignKey:CustomerID"`
	IssueDate       time.Time         `gorm:"column:issue_date;type:date;not null"`
	DueDate         time.Time         `gorm:"column:due_date;type:date;not null"`
	PreparedBy      string            `gorm:"column:prepared_by;not null;default:''"`
	MarginRate      decimal.Decimal   `gorm:"column:margin_rate;type:numeric(5,2);not null"`
	Notes           *string           `gorm:"column:notes"`
	LaborCost       decimal.Decimal   `gorm:"column:labor_cost;type:numeric(12,2);not null;default:0"`
	MachineCost     decimal.Decimal   `gorm:"column:machine_cost;type:numeric(12,2);not null;default:0"`
	TotalLandedCost decimal.Decimal   `gorm:"column:total_landed_cost;type:numeric(12,2);not null;default:0"`
	InvoiceTotal    decimal.Decimal   `gorm:"column:invoice_total;type:numeric(12,2);not null;default:0"`
	LineItems       []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
