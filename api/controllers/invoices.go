package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printforge/printshop-backend/api/responses"
	"github.com/printforge/printshop-backend/api/validators"
	invoicesvc "github.com/printforge/printshop-backend/internal/invoices"
	"github.com/printforge/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/logger"
)

type invoiceLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createInvoiceRequest struct {
	CustomerID  string               `json:"customer_id" validate:"required"`
	IssueDate   string               `json:"issue_date" validate:"required"`
	DueDate     string               `json:"due_date" validate:"required"`
	PreparedBy  string               `json:"prepared_by" validate:"required"`
	MarginRate  string               `json:"margin_rate" validate:"required"`
	Notes       *string              `json:"notes,omitempty"`
	LaborCost   string               `json:"labor_cost" validate:"required"`
	MachineCost string               `json:"machine_cost" validate:"required"`
	Lines       []invoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type updateInvoiceRequest struct {
	CustomerID  *string               `json:"customer_id,omitempty"`
	IssueDate   *string               `json:"issue_date,omitempty"`
	DueDate     *string               `json:"due_date,omitempty"`
	PreparedBy  *string               `json:"prepared_by,omitempty"`
	MarginRate  *string               `json:"margin_rate,omitempty"`
	Notes       *string               `json:"notes,omitempty"`
	LaborCost   *string               `json:"labor_cost,omitempty"`
	MachineCost *string               `json:"machine_cost,omitempty"`
	Lines       *[]invoiceLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

type quoteInvoiceRequest struct {
	MarginRate  string               `json:"margin_rate" validate:"required"`
	LaborCost   string               `json:"labor_cost" validate:"required"`
	MachineCost string               `json:"machine_cost" validate:"required"`
	Lines       []invoiceLineRequest `json:"lines" validate:"omitempty,dive"`
}

func parseInvoiceLines(lines []invoiceLineRequest) ([]invoicesvc.LineItemInput, error) {
	parsed := make([]invoicesvc.LineItemInput, 0, len(lines))
	for _, line := range lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product_id").WithDetails(map[string]any{"value": line.ProductID})
		}
		parsed = append(parsed, invoicesvc.LineItemInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}
	return parsed, nil
}

func (req createInvoiceRequest) toInput() (invoicesvc.CreateInvoiceInput, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer_id")
	}
	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}
	marginRate, err := parseDecimal("margin_rate", req.MarginRate)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}
	laborCost, err := parseDecimal("labor_cost", req.LaborCost)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}
	machineCost, err := parseDecimal("machine_cost", req.MachineCost)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}
	lines, err := parseInvoiceLines(req.Lines)
	if err != nil {
		return invoicesvc.CreateInvoiceInput{}, err
	}

	return invoicesvc.CreateInvoiceInput{
		CustomerID:  customerID,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		PreparedBy:  req.PreparedBy,
		MarginRate:  marginRate,
		Notes:       req.Notes,
		LaborCost:   laborCost,
		MachineCost: machineCost,
		Lines:       lines,
	}, nil
}

func (req updateInvoiceRequest) toInput() (invoicesvc.UpdateInvoiceInput, error) {
	input := invoicesvc.UpdateInvoiceInput{
		PreparedBy: req.PreparedBy,
		Notes:      req.Notes,
	}

	customerID, err := parseOptionalUUID("customer_id", req.CustomerID)
	if err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}
	input.CustomerID = customerID

	if input.IssueDate, err = parseOptionalDate("issue_date", req.IssueDate); err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}
	if input.DueDate, err = parseOptionalDate("due_date", req.DueDate); err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}
	if input.MarginRate, err = parseOptionalDecimal("margin_rate", req.MarginRate); err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}
	if input.LaborCost, err = parseOptionalDecimal("labor_cost", req.LaborCost); err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}
	if input.MachineCost, err = parseOptionalDecimal("machine_cost", req.MachineCost); err != nil {
		return invoicesvc.UpdateInvoiceInput{}, err
	}

	if req.Lines != nil {
		lines, err := parseInvoiceLines(*req.Lines)
		if err != nil {
			return invoicesvc.UpdateInvoiceInput{}, err
		}
		input.Lines = &lines
	}

	return input, nil
}

type invoiceLineResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Product   *productResponse `json:"product,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitCost  decimal.Decimal  `json:"unit_cost"`
	TotalCost decimal.Decimal  `json:"total_cost"`
	Position  int              `json:"position"`
}

type invoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	Customer        *customerResponse     `json:"customer,omitempty"`
	IssueDate       string                `json:"issue_date"`
	DueDate         string                `json:"due_date"`
	PreparedBy      string                `json:"prepared_by"`
	MarginRate      decimal.Decimal       `json:"margin_rate"`
	Notes           *string               `json:"notes,omitempty"`
	LaborCost       decimal.Decimal       `json:"labor_cost"`
	MachineCost     decimal.Decimal       `json:"machine_cost"`
	TotalLandedCost decimal.Decimal       `json:"total_landed_cost"`
	InvoiceTotal    decimal.Decimal       `json:"invoice_total"`
	LineItems       []invoiceLineResponse `json:"line_items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type invoiceListResponse struct {
	Invoices   []invoiceResponse `json:"invoices"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice) invoiceResponse {
	lines := make([]invoiceLineResponse, 0, len(invoice.LineItems))
	for _, item := range invoice.LineItems {
		line := invoiceLineResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			TotalCost: item.TotalCost,
			Position:  item.Position,
		}
		if item.Product != nil {
			product := newProductResponse(item.Product)
			line.Product = &product
		}
		lines = append(lines, line)
	}

	resp := invoiceResponse{
		ID:              invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		CustomerID:      invoice.CustomerID,
		IssueDate:       invoice.IssueDate.Format(dateLayout),
		DueDate:         invoice.DueDate.Format(dateLayout),
		PreparedBy:      invoice.PreparedBy,
		MarginRate:      invoice.MarginRate,
		Notes:           invoice.Notes,
		LaborCost:       invoice.LaborCost,
		MachineCost:     invoice.MachineCost,
		TotalLandedCost: invoice.TotalLandedCost,
		InvoiceTotal:    invoice.InvoiceTotal,
		LineItems:       lines,
		CreatedAt:       invoice.CreatedAt,
		UpdatedAt:       invoice.UpdatedAt,
	}
	if invoice.Customer != nil {
		customer := newCustomerResponse(invoice.Customer)
		resp.Customer = &customer
	}
	return resp
}

func newInvoiceListResponse(list *invoicesvc.InvoiceList) invoiceListResponse {
	items := make([]invoiceResponse, 0, len(list.Invoices))
	for i := range list.Invoices {
		items = append(items, newInvoiceResponse(&list.Invoices[i]))
	}
	return invoiceListResponse{Invoices: items, NextCursor: list.NextCursor}
}

// InvoiceCreate prices and persists a new invoice.
func InvoiceCreate(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		var payload createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newInvoiceResponse(invoice))
	}
}

// InvoiceDetail returns one invoice with its line items.
func InvoiceDetail(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

// InvoiceList returns a cursor-paginated page of invoices.
func InvoiceList(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := invoicesvc.InvoiceListFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}
		if filters.CustomerID, err = validators.ParseQueryUUID(r, "customer_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), invoicesvc.ListInvoicesInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInvoiceListResponse(list))
	}
}

// InvoiceUpdate applies a partial update, replacing line items when provided.
func InvoiceUpdate(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

// InvoiceDelete removes an invoice and its line items.
func InvoiceDelete(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		id, err := pathUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// InvoiceQuote prices a hypothetical invoice without persisting anything.
func InvoiceQuote(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		var payload quoteInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		marginRate, err := parseDecimal("margin_rate", payload.MarginRate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		laborCost, err := parseDecimal("labor_cost", payload.LaborCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		machineCost, err := parseDecimal("machine_cost", payload.MachineCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := parseInvoiceLines(payload.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), invoicesvc.QuoteInput{
			MarginRate:  marginRate,
			LaborCost:   laborCost,
			MachineCost: machineCost,
			Lines:       lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
