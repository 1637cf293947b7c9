package audit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invaudit/internal/audit"
	"invaudit/internal/domain"
)

func d(s string) decimal.NullDecimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: v, Valid: true}
}

func unknown() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

func cleanInvoice() *domain.Invoice {
	return &domain.Invoice{
		VendorName: "Acme Corp",
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: d("2"), UnitPrice: d("5.00"), StatedLineTotal: d("10.00")},
		},
		StatedGrandTotal: d("10.00"),
	}
}

func TestCheckMath_CleanInvoice(t *testing.T) {
	out := audit.CheckMath(cleanInvoice(), audit.DefaultMathConfig())
	assert.Empty(t, out)
}

func TestCheckMath_LineMismatch(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Description: "Widget", Quantity: d("3"), UnitPrice: d("10.00"), StatedLineTotal: d("40.00")},
		},
	}

	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	require.Len(t, out, 1)
	assert.Equal(t, domain.DiscrepancyLineMathMismatch, out[0].Kind)
	assert.Equal(t, "line_items[0].total", out[0].Locator)
	require.True(t, out[0].Expected.Valid)
	require.True(t, out[0].Actual.Valid)
	assert.Equal(t, "30.00", out[0].Expected.Decimal.StringFixed(2))
	assert.Equal(t, "40.00", out[0].Actual.Decimal.StringFixed(2))
	assert.InDelta(t, 10.0/30.0, out[0].Severity, 0.0001)
	assert.NotEmpty(t, out[0].Message)
}

func TestCheckMath_WithinTolerance(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			// computed 30.00, stated 30.01: diff equals the tolerance, not beyond it
			{Quantity: d("3"), UnitPrice: d("10.00"), StatedLineTotal: d("30.01")},
		},
	}
	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	assert.Empty(t, out)
}

func TestCheckMath_SeverityCappedAtOne(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Quantity: d("1"), UnitPrice: d("1.00"), StatedLineTotal: d("100.00")},
		},
	}
	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Severity)
}

func TestCheckMath_NegativeQuantity(t *testing.T) {
	t.Run("negative", func(t *testing.T) {
		inv := &domain.Invoice{
			LineItems: []domain.LineItem{
				{Quantity: d("-1"), UnitPrice: d("5.00")},
			},
		}
		out := audit.CheckMath(inv, audit.DefaultMathConfig())
		require.Len(t, out, 1)
		assert.Equal(t, domain.DiscrepancyNegativeQuantity, out[0].Kind)
		assert.Equal(t, "line_items[0].quantity", out[0].Locator)
		assert.Equal(t, 0.40, out[0].Severity)
	})

	t.Run("zero_quantity_nonzero_price", func(t *testing.T) {
		inv := &domain.Invoice{
			LineItems: []domain.LineItem{
				{Quantity: d("0"), UnitPrice: d("5.00")},
			},
		}
		out := audit.CheckMath(inv, audit.DefaultMathConfig())
		require.Len(t, out, 1)
		assert.Equal(t, domain.DiscrepancyNegativeQuantity, out[0].Kind)
	})

	t.Run("zero_quantity_zero_price_ok", func(t *testing.T) {
		inv := &domain.Invoice{
			LineItems: []domain.LineItem{
				{Quantity: d("0"), UnitPrice: d("0")},
			},
		}
		out := audit.CheckMath(inv, audit.DefaultMathConfig())
		assert.Empty(t, out)
	})
}

func TestCheckMath_GrandTotalMismatch(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Quantity: d("2"), UnitPrice: d("25.00"), StatedLineTotal: d("50.00")},
			{Quantity: d("1"), UnitPrice: d("50.00"), StatedLineTotal: d("50.00")},
		},
		StatedGrandTotal: d("150.00"),
	}

	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	require.Len(t, out, 1)
	assert.Equal(t, domain.DiscrepancyGrandTotalMismatch, out[0].Kind)
	assert.Equal(t, "100.00", out[0].Expected.Decimal.StringFixed(2))
	assert.Equal(t, "150.00", out[0].Actual.Decimal.StringFixed(2))
	assert.InDelta(t, 0.5, out[0].Severity, 0.0001)
}

func TestCheckMath_GrandTotalPrefersStatedLineTotals(t *testing.T) {
	// Stated line total disagrees with the computed one, but the grand total
	// matches the stated amount, so only the line mismatch should fire.
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Quantity: d("3"), UnitPrice: d("10.00"), StatedLineTotal: d("40.00")},
		},
		StatedGrandTotal: d("40.00"),
	}

	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	require.Len(t, out, 1)
	assert.Equal(t, domain.DiscrepancyLineMathMismatch, out[0].Kind)
}

func TestCheckMath_GrandTotalFallsBackToComputed(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Quantity: d("2"), UnitPrice: d("5.00")}, // no stated total, resolves to 10.00
		},
		StatedGrandTotal: d("25.00"),
	}

	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	require.Len(t, out, 1)
	assert.Equal(t, domain.DiscrepancyGrandTotalMismatch, out[0].Kind)
	assert.Equal(t, "10.00", out[0].Expected.Decimal.StringFixed(2))
}

func TestCheckMath_SkipsUnknownFields(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Description: "mystery", Quantity: unknown(), UnitPrice: unknown(), StatedLineTotal: unknown()},
		},
		StatedGrandTotal: d("99.00"),
	}

	// No resolvable line total, so the grand-total check is skipped too.
	out := audit.CheckMath(inv, audit.DefaultMathConfig())
	assert.Empty(t, out)
}

func TestCheckMath_OrderingAndDeterminism(t *testing.T) {
	inv := &domain.Invoice{
		LineItems: []domain.LineItem{
			{Quantity: d("3"), UnitPrice: d("10.00"), StatedLineTotal: d("40.00")},
			{Quantity: d("-2"), UnitPrice: d("4.00"), StatedLineTotal: d("-8.00")},
		},
		StatedGrandTotal: d("100.00"),
	}

	first := audit.CheckMath(inv, audit.DefaultMathConfig())
	second := audit.CheckMath(inv, audit.DefaultMathConfig())

	require.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, domain.DiscrepancyLineMathMismatch, first[0].Kind)
	assert.Equal(t, domain.DiscrepancyNegativeQuantity, first[1].Kind)
	assert.Equal(t, domain.DiscrepancyGrandTotalMismatch, first[2].Kind)
}
