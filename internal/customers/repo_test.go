package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  address TEXT,
  city TEXT,
  state TEXT,
  zip TEXT,
  country TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	invoices := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  invoice_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  issue_date DATETIME NOT NULL,
  due_date DATETIME NOT NULL,
  prepared_by TEXT NOT NULL DEFAULT '',
  margin_rate NUMERIC NOT NULL,
  notes TEXT,
  labor_cost NUMERIC NOT NULL DEFAULT 0,
  machine_cost NUMERIC NOT NULL DEFAULT 0,
  total_landed_cost NUMERIC NOT NULL DEFAULT 0,
  invoice_total NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(customers).Error)
	require.NoError(t, db.Exec(invoices).Error)
	return db
}

func newCustomer(t *testing.T, db *gorm.DB, name string, created time.Time) *models.Customer {
	t.Helper()

	email := name + "@example.com"
	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     &email,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func newInvoiceFor(t *testing.T, db *gorm.DB, customerID uuid.UUID, number string) *models.Invoice {
	t.Helper()

	now := time.Now().UTC()
	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		CustomerID:    customerID,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		MarginRate:    decimal.NewFromInt(30),
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := newCustomer(t, db, "Older Shop", now.Add(-time.Hour))
	newer := newCustomer(t, db, "Newer Shop", now)

	list, err := repo.List(context.Background(), pagination.Params{Limit: 1}, CustomerListFilters{})
	require.NoError(t, err)
	require.Len(t, list.Customers, 1)
	assert.Equal(t, newer.ID, list.Customers[0].ID)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.List(context.Background(), pagination.Params{Limit: 1, Cursor: list.NextCursor}, CustomerListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Customers, 1)
	assert.Equal(t, older.ID, second.Customers[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryList_search(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	match := newCustomer(t, db, "Acme Robotics", now)
	newCustomer(t, db, "Beta Printing", now.Add(-time.Minute))

	list, err := repo.List(context.Background(), pagination.Params{}, CustomerListFilters{Query: "Acme"})
	require.NoError(t, err)
	require.Len(t, list.Customers, 1)
	assert.Equal(t, match.ID, list.Customers[0].ID)
}

func TestRepositoryCountInvoices(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	billed := newCustomer(t, db, "Billed Customer", now)
	clean := newCustomer(t, db, "Clean Customer", now)

	newInvoiceFor(t, db, billed.ID, "INV-20250101-001")
	newInvoiceFor(t, db, billed.ID, "INV-20250101-002")

	count, err := repo.CountInvoices(context.Background(), billed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountInvoices(context.Background(), clean.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	customer := newCustomer(t, db, "Short Lived", time.Now().UTC())
	require.NoError(t, repo.Delete(context.Background(), customer.ID))

	_, err := repo.FindByID(context.Background(), customer.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
