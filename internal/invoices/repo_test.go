package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
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
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  sku TEXT UNIQUE,
  unit_cost NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  category TEXT,
  notes TEXT,
  image_media_id TEXT,
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
	lineItems := `
CREATE TABLE IF NOT EXISTS invoice_line_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_cost NUMERIC NOT NULL,
  total_cost NUMERIC NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(customers).Error)
	require.NoError(t, conn.Exec(products).Error)
	require.NoError(t, conn.Exec(invoices).Error)
	require.NoError(t, conn.Exec(lineItems).Error)
	return conn
}

func seedCustomer(t *testing.T, conn *gorm.DB, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(customer).Error)
	return customer
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, unitCost string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     name,
		UnitCost: decimal.RequireFromString(unitCost),
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedInvoice(t *testing.T, conn *gorm.DB, customer *models.Customer, number string, created time.Time) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		CustomerID:    customer.ID,
		IssueDate:     created,
		DueDate:       created.AddDate(0, 1, 0),
		MarginRate:    decimal.RequireFromString("30"),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, conn.Create(invoice).Error)
	return invoice
}

func TestRepositoryFindByID_orderedLineItems(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)

	customer := seedCustomer(t, conn, "Acme Robotics")
	spool := seedProduct(t, conn, "PLA Spool", "10.00")
	resin := seedProduct(t, conn, "Resin Bottle", "20.00")
	invoice := seedInvoice(t, conn, customer, "INV-20250615-001", time.Now().UTC())

	items := []models.InvoiceLineItem{
		{
			ID:        uuid.New(),
			InvoiceID: invoice.ID,
			ProductID: resin.ID,
			Quantity:  1,
			UnitCost:  decimal.RequireFromString("20.00"),
			TotalCost: decimal.RequireFromString("20.00"),
			Position:  1,
		},
		{
			ID:        uuid.New(),
			InvoiceID: invoice.ID,
			ProductID: spool.ID,
			Quantity:  2,
			UnitCost:  decimal.RequireFromString("10.00"),
			TotalCost: decimal.RequireFromString("20.00"),
			Position:  0,
		},
	}
	require.NoError(t, repo.AttachLineItems(context.Background(), items))

	loaded, err := repo.FindByID(context.Background(), invoice.ID)
	require.NoError(t, err)

	require.NotNil(t, loaded.Customer)
	assert.Equal(t, "Acme Robotics", loaded.Customer.Name)

	require.Len(t, loaded.LineItems, 2)
	assert.Equal(t, spool.ID, loaded.LineItems[0].ProductID)
	assert.Equal(t, resin.ID, loaded.LineItems[1].ProductID)
	require.NotNil(t, loaded.LineItems[0].Product)
	assert.Equal(t, "PLA Spool", loaded.LineItems[0].Product.Name)
}

func TestRepositoryDetachAllLineItems(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)

	customer := seedCustomer(t, conn, "Acme Robotics")
	spool := seedProduct(t, conn, "PLA Spool", "10.00")
	invoice := seedInvoice(t, conn, customer, "INV-20250615-002", time.Now().UTC())

	require.NoError(t, repo.AttachLineItems(context.Background(), []models.InvoiceLineItem{{
		ID:        uuid.New(),
		InvoiceID: invoice.ID,
		ProductID: spool.ID,
		Quantity:  3,
		UnitCost:  decimal.RequireFromString("10.00"),
		TotalCost: decimal.RequireFromString("30.00"),
	}}))

	require.NoError(t, repo.DetachAllLineItems(context.Background(), invoice.ID))

	remaining, err := repo.ListLineItems(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRepositoryCreate_duplicateNumber(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)

	customer := seedCustomer(t, conn, "Acme Robotics")
	seedInvoice(t, conn, customer, "INV-20250615-003", time.Now().UTC())

	_, err := repo.Create(context.Background(), &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-20250615-003",
		CustomerID:    customer.ID,
		IssueDate:     time.Now().UTC(),
		DueDate:       time.Now().UTC().AddDate(0, 1, 0),
		MarginRate:    decimal.RequireFromString("30"),
	})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryList_filters(t *testing.T) {
	conn := setupInvoicesTestDB(t)
	repo := NewRepository(conn)

	acme := seedCustomer(t, conn, "Acme Robotics")
	beta := seedCustomer(t, conn, "Beta Printing")

	now := time.Now().UTC()
	seedInvoice(t, conn, acme, "INV-20250615-010", now)
	seedInvoice(t, conn, acme, "INV-20250616-011", now.Add(-time.Hour))
	seedInvoice(t, conn, beta, "INV-20250617-012", now.Add(-2*time.Hour))

	byCustomer, err := repo.List(context.Background(), pagination.Params{}, InvoiceListFilters{CustomerID: &acme.ID})
	require.NoError(t, err)
	assert.Len(t, byCustomer.Invoices, 2)

	byNumber, err := repo.List(context.Background(), pagination.Params{}, InvoiceListFilters{Query: "20250617"})
	require.NoError(t, err)
	require.Len(t, byNumber.Invoices, 1)
	assert.Equal(t, "INV-20250617-012", byNumber.Invoices[0].InvoiceNumber)

	page, err := repo.List(context.Background(), pagination.Params{Limit: 2}, InvoiceListFilters{})
	require.NoError(t, err)
	assert.Len(t, page.Invoices, 2)
	assert.NotEmpty(t, page.NextCursor)
}
