package invoices

import (
	"github.com/google/uuid"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// PricingLine is one resolved line request: the product's unit cost has
// already been snapshotted by the caller.
type PricingLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
}

// PricingInput carries everything the totals computation needs.
type PricingInput struct {
	Lines       []PricingLine
	LaborCost   decimal.Decimal
	MachineCost decimal.Decimal
	MarginRate  decimal.Decimal
}

// LineTotal pairs a line with its computed extended cost.
type LineTotal struct {
	ProductID uuid.UUID
	Quantity  int
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

// PricingResult holds the computed invoice totals.
type PricingResult struct {
	Lines           []LineTotal
	MaterialsCost   decimal.Decimal
	TotalLandedCost decimal.Decimal
	InvoiceTotal    decimal.Decimal
}

// ComputeInvoiceTotals prices an invoice from its line snapshots plus flat
// labor and machine costs. The margin rate is a percentage in [0, 100):
// the landed cost is grossed up by 1/(1 - rate/100). Rounding to two
// decimal places happens exactly once, on the final invoice total.
func ComputeInvoiceTotals(input PricingInput) (*PricingResult, error) {
	if input.LaborCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "labor cost cannot be negative")
	}
	if input.MachineCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "machine cost cannot be negative")
	}
	if input.MarginRate.IsNegative() || input.MarginRate.GreaterThanOrEqual(oneHundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "margin rate must be at least 0 and below 100")
	}

	materials := decimal.Zero
	lines := make([]LineTotal, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line unit cost cannot be negative")
		}
		total := line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity)))
		materials = materials.Add(total)
		lines = append(lines, LineTotal{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			TotalCost: total,
		})
	}

	landed := materials.Add(input.LaborCost).Add(input.MachineCost)
	divisor := decimal.NewFromInt(1).Sub(input.MarginRate.Div(oneHundred))
	total := landed.Div(divisor).Round(2)

	return &PricingResult{
		Lines:           lines,
		MaterialsCost:   materials,
		TotalLandedCost: landed,
		InvoiceTotal:    total,
	}, nil
}
