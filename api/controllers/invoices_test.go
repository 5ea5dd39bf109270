package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invoicesvc "github.com/printforge/printshop-backend/internal/invoices"
	"github.com/printforge/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
)

type stubInvoiceService struct {
	invoice *models.Invoice
	list    *invoicesvc.InvoiceList
	quote   *invoicesvc.QuoteOutput
	err     error

	lastCreate *invoicesvc.CreateInvoiceInput
	lastQuote  *invoicesvc.QuoteInput
}

func (s *stubInvoiceService) Create(ctx context.Context, input invoicesvc.CreateInvoiceInput) (*models.Invoice, error) {
	s.lastCreate = &input
	return s.invoice, s.err
}

func (s *stubInvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceService) List(ctx context.Context, input invoicesvc.ListInvoicesInput) (*invoicesvc.InvoiceList, error) {
	return s.list, s.err
}

func (s *stubInvoiceService) Update(ctx context.Context, id uuid.UUID, input invoicesvc.UpdateInvoiceInput) (*models.Invoice, error) {
	return s.invoice, s.err
}

func (s *stubInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubInvoiceService) Quote(ctx context.Context, input invoicesvc.QuoteInput) (*invoicesvc.QuoteOutput, error) {
	s.lastQuote = &input
	return s.quote, s.err
}

func TestInvoiceQuoteReturnsTotals(t *testing.T) {
	svc := &stubInvoiceService{quote: &invoicesvc.QuoteOutput{
		MaterialsCost:   decimal.RequireFromString("40"),
		TotalLandedCost: decimal.RequireFromString("60"),
		InvoiceTotal:    decimal.RequireFromString("85.71"),
	}}
	handler := InvoiceQuote(svc, nil)

	productID := uuid.New()
	body := `{"margin_rate":"30","labor_cost":"15","machine_cost":"5","lines":[{"product_id":"` + productID.String() + `","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/quote", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastQuote == nil || len(svc.lastQuote.Lines) != 1 {
		t.Fatalf("expected one quote line, got %+v", svc.lastQuote)
	}
	if svc.lastQuote.Lines[0].ProductID != productID {
		t.Fatalf("unexpected product id %s", svc.lastQuote.Lines[0].ProductID)
	}

	var envelope struct {
		Data struct {
			InvoiceTotal string `json:"invoice_total"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.InvoiceTotal != "85.71" {
		t.Fatalf("unexpected invoice total %s", envelope.Data.InvoiceTotal)
	}
}

func TestInvoiceCreateRejectsBadProductID(t *testing.T) {
	svc := &stubInvoiceService{}
	handler := InvoiceCreate(svc, nil)

	body := `{"customer_id":"` + uuid.NewString() + `","issue_date":"2025-06-15","due_date":"2025-06-30","prepared_by":"Shop Owner","margin_rate":"30","labor_cost":"15","machine_cost":"5","lines":[{"product_id":"not-a-uuid","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastCreate != nil {
		t.Fatal("service must not be called for invalid payloads")
	}
}

func TestInvoiceCreateRequiresLines(t *testing.T) {
	handler := InvoiceCreate(&stubInvoiceService{}, nil)

	body := `{"customer_id":"` + uuid.NewString() + `","issue_date":"2025-06-15","due_date":"2025-06-30","prepared_by":"Shop Owner","margin_rate":"30","labor_cost":"15","machine_cost":"5","lines":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInvoiceDetailNotFound(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")}
	handler := InvoiceDetail(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+uuid.NewString(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("invoiceId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestInvoiceDetailInvalidID(t *testing.T) {
	handler := InvoiceDetail(&stubInvoiceService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("invoiceId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
