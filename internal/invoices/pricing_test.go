package invoices

import (
	"testing"

	"github.com/google/uuid"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeInvoiceTotals_grossUp(t *testing.T) {
	// 2 x 10.00 + 1 x 20.00 = 40.00 materials, + 15.00 labor + 5.00 machine
	// = 60.00 landed; 30% margin grosses up to 60 / 0.7 = 85.7142... -> 85.71.
	result, err := ComputeInvoiceTotals(PricingInput{
		Lines: []PricingLine{
			{ProductID: uuid.New(), Quantity: 2, UnitCost: d("10.00")},
			{ProductID: uuid.New(), Quantity: 1, UnitCost: d("20.00")},
		},
		LaborCost:   d("15.00"),
		MachineCost: d("5.00"),
		MarginRate:  d("30"),
	})
	require.NoError(t, err)

	assert.True(t, result.MaterialsCost.Equal(d("40.00")), result.MaterialsCost.String())
	assert.True(t, result.TotalLandedCost.Equal(d("60.00")), result.TotalLandedCost.String())
	assert.True(t, result.InvoiceTotal.Equal(d("85.71")), result.InvoiceTotal.String())

	require.Len(t, result.Lines, 2)
	assert.True(t, result.Lines[0].TotalCost.Equal(d("20.00")))
	assert.True(t, result.Lines[1].TotalCost.Equal(d("20.00")))
}

func TestComputeInvoiceTotals_zeroMarginEqualsLanded(t *testing.T) {
	result, err := ComputeInvoiceTotals(PricingInput{
		Lines: []PricingLine{
			{ProductID: uuid.New(), Quantity: 3, UnitCost: d("7.25")},
		},
		LaborCost:   d("10.00"),
		MachineCost: d("0"),
		MarginRate:  d("0"),
	})
	require.NoError(t, err)
	assert.True(t, result.InvoiceTotal.Equal(result.TotalLandedCost.Round(2)))
	assert.True(t, result.InvoiceTotal.Equal(d("31.75")))
}

func TestComputeInvoiceTotals_emptyLinesLaborOnly(t *testing.T) {
	result, err := ComputeInvoiceTotals(PricingInput{
		LaborCost:   d("42.00"),
		MachineCost: d("8.00"),
		MarginRate:  d("50"),
	})
	require.NoError(t, err)
	assert.True(t, result.MaterialsCost.IsZero())
	assert.True(t, result.TotalLandedCost.Equal(d("50.00")))
	assert.True(t, result.InvoiceTotal.Equal(d("100.00")))
}

func TestComputeInvoiceTotals_roundsHalfUpOnceAtTheEnd(t *testing.T) {
	// 0.90 / 0.8 = 1.125 exactly; half-up gives 1.13.
	result, err := ComputeInvoiceTotals(PricingInput{
		LaborCost:   d("0.90"),
		MachineCost: d("0"),
		MarginRate:  d("20"),
	})
	require.NoError(t, err)
	assert.True(t, result.InvoiceTotal.Equal(d("1.13")), result.InvoiceTotal.String())
}

func TestComputeInvoiceTotals_marginBounds(t *testing.T) {
	base := PricingInput{
		Lines:       []PricingLine{{ProductID: uuid.New(), Quantity: 1, UnitCost: d("10.00")}},
		LaborCost:   d("0"),
		MachineCost: d("0"),
	}

	for _, rate := range []string{"100", "150", "-1"} {
		input := base
		input.MarginRate = d(rate)
		_, err := ComputeInvoiceTotals(input)
		require.Error(t, err, rate)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), rate)
	}

	input := base
	input.MarginRate = d("99.99")
	_, err := ComputeInvoiceTotals(input)
	assert.NoError(t, err)
}

func TestComputeInvoiceTotals_invalidInputs(t *testing.T) {
	_, err := ComputeInvoiceTotals(PricingInput{
		Lines:      []PricingLine{{ProductID: uuid.New(), Quantity: 0, UnitCost: d("10.00")}},
		MarginRate: d("10"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = ComputeInvoiceTotals(PricingInput{
		LaborCost:  d("-0.01"),
		MarginRate: d("10"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = ComputeInvoiceTotals(PricingInput{
		MachineCost: d("-5"),
		MarginRate:  d("10"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBuildInvoiceNumber_format(t *testing.T) {
	issue := mustDate(t, "2025-06-15")
	number, err := BuildInvoiceNumber(issue)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-20250615-\d{3}$`, number)
}
