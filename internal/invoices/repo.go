package invoices

import (
	"context"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for invoices and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params pagination.Params, filters InvoiceListFilters) (*InvoiceList, error)
	Update(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachLineItems(ctx context.Context, items []models.InvoiceLineItem) error
	DetachAllLineItems(ctx context.Context, invoiceID uuid.UUID) error
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoices repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Omit("LineItems", "Customer").Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("LineItems.Product").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters InvoiceListFilters) (*InvoiceList, error) {
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Preload("Customer").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("LineItems.Product")
	if filters.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.DateFrom != nil {
		qb = qb.Where("issue_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		qb = qb.Where("issue_date <= ?", *filters.DateTo)
	}
	if filters.Query != "" {
		qb = qb.Where("invoice_number LIKE ?", "%"+filters.Query+"%")
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Invoice
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

	return &InvoiceList{
		Invoices:   rows,
		NextCursor: nextCursor,
	}, nil
}

func (r *repository) Update(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Omit("LineItems", "Customer").Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Invoice{}).Error
}

func (r *repository) AttachLineItems(ctx context.Context, items []models.InvoiceLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").Create(&items).Error
}

func (r *repository) DetachAllLineItems(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceLineItem{}).Error
}

func (r *repository) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	var items []models.InvoiceLineItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
