package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// LineItemInput is one requested invoice line: the product to bill and how many.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateInvoiceInput captures the fields accepted when creating an invoice.
type CreateInvoiceInput struct {
	CustomerID  uuid.UUID
	IssueDate   time.Time
	DueDate     time.Time
	PreparedBy  string
	MarginRate  decimal.Decimal
	Notes       *string
	LaborCost   decimal.Decimal
	MachineCost decimal.Decimal
	Lines       []LineItemInput
}

// UpdateInvoiceInput carries the optional fields for an invoice update.
// Nil pointers leave stored values untouched. A non-nil Lines slice replaces
// the entire line-item set and recomputes the totals.
type UpdateInvoiceInput struct {
	CustomerID  *uuid.UUID
	IssueDate   *time.Time
	DueDate     *time.Time
	PreparedBy  *string
	MarginRate  *decimal.Decimal
	Notes       *string
	LaborCost   *decimal.Decimal
	MachineCost *decimal.Decimal
	Lines       *[]LineItemInput
}

// QuoteInput prices a hypothetical invoice without persisting anything.
type QuoteInput struct {
	LaborCost   decimal.Decimal
	MachineCost decimal.Decimal
	MarginRate  decimal.Decimal
	Lines       []LineItemInput
}

// QuoteLine is one priced line in a quote: the snapshotted unit cost and
// the extended total for the requested quantity.
type QuoteLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// QuoteOutput carries the priced lines and computed totals back to the caller.
type QuoteOutput struct {
	Lines           []QuoteLine     `json:"lines"`
	MaterialsCost   decimal.Decimal `json:"materials_cost"`
	TotalLandedCost decimal.Decimal `json:"total_landed_cost"`
	InvoiceTotal    decimal.Decimal `json:"invoice_total"`
}

// InvoiceListFilters describe the supported filter knobs for the invoice list.
type InvoiceListFilters struct {
	CustomerID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Query      string
}

// ListInvoicesInput captures pagination plus filters for the list endpoint.
type ListInvoicesInput struct {
	Filters    InvoiceListFilters
	Pagination pagination.Params
}

// InvoiceList wraps the paginated invoices plus the next page cursor.
type InvoiceList struct {
	Invoices   []models.Invoice `json:"invoices"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
