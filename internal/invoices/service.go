package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/config"
	"github.com/printforge/printshop-backend/pkg/db"
	"github.com/printforge/printshop-backend/pkg/db/models"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type customerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Service defines invoice operations exposed to the API layer.
type Service interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, input ListInvoicesInput) (*InvoiceList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Quote(ctx context.Context, input QuoteInput) (*QuoteOutput, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	catalog     productCatalog
	customers   customerFinder
	maxAttempts int
}

// NewService builds an invoice service with the required dependencies.
func NewService(repo Repository, tx txRunner, catalog productCatalog, customers customerFinder, cfg config.InvoicingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer finder required")
	}
	maxAttempts := cfg.NumberMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &service{
		repo:        repo,
		tx:          tx,
		catalog:     catalog,
		customers:   customers,
		maxAttempts: maxAttempts,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	if strings.TrimSpace(input.PreparedBy) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prepared_by required")
	}
	if err := checkDates(input.IssueDate, input.DueDate); err != nil {
		return nil, err
	}

	if _, err := s.customers.FindByID(ctx, input.CustomerID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	pricingLines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	result, err := ComputeInvoiceTotals(PricingInput{
		Lines:       pricingLines,
		LaborCost:   input.LaborCost,
		MachineCost: input.MachineCost,
		MarginRate:  input.MarginRate,
	})
	if err != nil {
		return nil, err
	}

	var created *models.Invoice
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		number, err := BuildInvoiceNumber(input.IssueDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build invoice number")
		}

		invoice := &models.Invoice{
			InvoiceNumber:   number,
			CustomerID:      input.CustomerID,
			IssueDate:       input.IssueDate,
			DueDate:         input.DueDate,
			PreparedBy:      strings.TrimSpace(input.PreparedBy),
			MarginRate:      input.MarginRate,
			Notes:           input.Notes,
			LaborCost:       input.LaborCost,
			MachineCost:     input.MachineCost,
			TotalLandedCost: result.TotalLandedCost,
			InvoiceTotal:    result.InvoiceTotal,
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if _, err := repo.Create(ctx, invoice); err != nil {
				return err
			}
			return repo.AttachLineItems(ctx, buildLineItems(invoice.ID, result.Lines))
		})
		if err != nil {
			if db.IsUniqueViolation(err, "invoice_number") {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
		created = invoice
		break
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique invoice number")
	}

	return s.Get(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, input ListInvoicesInput) (*InvoiceList, error) {
	list, err := s.repo.List(ctx, input.Pagination, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return list, nil
}

// Update rewrites the invoice header and, when a line set is provided,
// replaces every line item. Totals are recomputed from scratch either way.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if input.Lines != nil && len(*input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	if input.PreparedBy != nil && strings.TrimSpace(*input.PreparedBy) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prepared_by cannot be empty")
	}

	if input.CustomerID != nil {
		if _, err := s.customers.FindByID(ctx, *input.CustomerID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
	}

	var newLines []PricingLine
	if input.Lines != nil {
		resolved, err := s.resolveLines(ctx, *input.Lines)
		if err != nil {
			return nil, err
		}
		newLines = resolved
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}

		applyInvoiceUpdate(invoice, input)
		if err := checkDates(invoice.IssueDate, invoice.DueDate); err != nil {
			return err
		}

		pricingLines := newLines
		if pricingLines == nil {
			// Keep the existing snapshots; only the header changed.
			for _, item := range invoice.LineItems {
				pricingLines = append(pricingLines, PricingLine{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
					UnitCost:  item.UnitCost,
				})
			}
		}

		result, err := ComputeInvoiceTotals(PricingInput{
			Lines:       pricingLines,
			LaborCost:   invoice.LaborCost,
			MachineCost: invoice.MachineCost,
			MarginRate:  invoice.MarginRate,
		})
		if err != nil {
			return err
		}
		invoice.TotalLandedCost = result.TotalLandedCost
		invoice.InvoiceTotal = result.InvoiceTotal

		if _, err := repo.Update(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
		}

		if input.Lines != nil {
			if err := repo.DetachAllLineItems(ctx, invoice.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach line items")
			}
			if err := repo.AttachLineItems(ctx, buildLineItems(invoice.ID, result.Lines)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach line items")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := repo.DetachAllLineItems(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach line items")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete invoice")
		}
		return nil
	})
}

// Quote prices a hypothetical invoice. Nothing is persisted; the current
// product unit costs are used for the snapshot.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteOutput, error) {
	pricingLines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	result, err := ComputeInvoiceTotals(PricingInput{
		Lines:       pricingLines,
		LaborCost:   input.LaborCost,
		MachineCost: input.MachineCost,
		MarginRate:  input.MarginRate,
	})
	if err != nil {
		return nil, err
	}
	quoteLines := make([]QuoteLine, 0, len(result.Lines))
	for _, line := range result.Lines {
		quoteLines = append(quoteLines, QuoteLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			TotalCost: line.TotalCost,
		})
	}
	return &QuoteOutput{
		Lines:           quoteLines,
		MaterialsCost:   result.MaterialsCost,
		TotalLandedCost: result.TotalLandedCost,
		InvoiceTotal:    result.InvoiceTotal,
	}, nil
}

func (s *service) resolveLines(ctx context.Context, lines []LineItemInput) ([]PricingLine, error) {
	resolved := make([]PricingLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line product id required")
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		resolved = append(resolved, PricingLine{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitCost:  product.UnitCost,
		})
	}
	return resolved, nil
}

func buildLineItems(invoiceID uuid.UUID, lines []LineTotal) []models.InvoiceLineItem {
	items := make([]models.InvoiceLineItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.InvoiceLineItem{
			InvoiceID: invoiceID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			TotalCost: line.TotalCost,
			Position:  i,
		})
	}
	return items
}

func checkDates(issue, due time.Time) error {
	if issue.IsZero() || due.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "issue and due dates required")
	}
	if due.Before(issue) {
		return pkgerrors.New(pkgerrors.CodeValidation, "due date cannot be before issue date")
	}
	return nil
}

func applyInvoiceUpdate(invoice *models.Invoice, input UpdateInvoiceInput) {
	if input.CustomerID != nil {
		invoice.CustomerID = *input.CustomerID
		invoice.Customer = nil
	}
	if input.IssueDate != nil {
		invoice.IssueDate = *input.IssueDate
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.PreparedBy != nil {
		invoice.PreparedBy = strings.TrimSpace(*input.PreparedBy)
	}
	if input.MarginRate != nil {
		invoice.MarginRate = *input.MarginRate
	}
	if input.Notes != nil {
		invoice.Notes = input.Notes
	}
	if input.LaborCost != nil {
		invoice.LaborCost = *input.LaborCost
	}
	if input.MachineCost != nil {
		invoice.MachineCost = *input.MachineCost
	}
}
