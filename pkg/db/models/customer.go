package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds the contact record an invoice is billed to.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     *string   `gorm:"column:email"`
	Phone     *string   `gorm:"column:phone"`
	Address   *string   `gorm:"column:address"`
	City      *string   `gorm:"column:city"`
	State     *string   `gorm:"column:state"`
	Zip       *string   `gorm:"column:zip"`
	Country   *string   `gorm:"column:country"`
	Invoices  []Invoice `gorm:"foreignKey:CustomerID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
