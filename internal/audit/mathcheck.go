package audit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"invaudit/internal/domain"
)

// negativeQuantitySeverity is the fixed severity of a negative/zero-quantity
// line. A soft signal, not a hard failure.
const negativeQuantitySeverity = 0.40

// MathConfig holds the arithmetic comparison tolerance.
type MathConfig struct {
	Tolerance decimal.Decimal
}

// DefaultMathConfig returns the default 0.01 comparison tolerance.
func DefaultMathConfig() MathConfig {
	return MathConfig{Tolerance: decimal.NewFromFloat(0.01)}
}

// CheckMath recomputes every line total and the grand total from the
// normalized Invoice and reports discrepancies. Pure and total: the same
// Invoice always yields the same discrepancy sequence in the same order,
// line items in document order with the grand-total check last.
func CheckMath(inv *domain.Invoice, cfg MathConfig) []domain.Discrepancy {
	var out []domain.Discrepancy

	sum := decimal.Zero
	haveSum := false

	for i := range inv.LineItems {
		item := &inv.LineItems[i]
		locator := fmt.Sprintf("line_items[%d]", i)

		var expected decimal.NullDecimal
		if item.Quantity.Valid && item.UnitPrice.Valid {
			expected = decimal.NullDecimal{
				Decimal: item.Quantity.Decimal.Mul(item.UnitPrice.Decimal).Round(2),
				Valid:   true,
			}
		}

		if expected.Valid && item.StatedLineTotal.Valid {
			diff := expected.Decimal.Sub(item.StatedLineTotal.Decimal).Abs()
			if diff.GreaterThan(cfg.Tolerance) {
				out = append(out, domain.Discrepancy{
					Kind:     domain.DiscrepancyLineMathMismatch,
					Locator:  locator + ".total",
					Expected: expected,
					Actual:   item.StatedLineTotal,
					Severity: proportionalSeverity(diff, expected.Decimal),
					Message: fmt.Sprintf("line %d: stated total %s differs from computed %s (quantity %s x unit price %s)",
						i+1,
						item.StatedLineTotal.Decimal.StringFixed(2),
						expected.Decimal.StringFixed(2),
						item.Quantity.Decimal.String(),
						item.UnitPrice.Decimal.StringFixed(2)),
				})
			}
		}

		if item.Quantity.Valid && !item.Quantity.Decimal.IsPositive() &&
			item.UnitPrice.Valid && !item.UnitPrice.Decimal.IsZero() {
			out = append(out, domain.Discrepancy{
				Kind:     domain.DiscrepancyNegativeQuantity,
				Locator:  locator + ".quantity",
				Actual:   item.Quantity,
				Severity: negativeQuantitySeverity,
				Message: fmt.Sprintf("line %d: quantity %s on a line with nonzero unit price",
					i+1, item.Quantity.Decimal.String()),
			})
		}

		// Resolved line total: the stated amount when present, otherwise the
		// recomputed one.
		switch {
		case item.StatedLineTotal.Valid:
			sum = sum.Add(item.StatedLineTotal.Decimal)
			haveSum = true
		case expected.Valid:
			sum = sum.Add(expected.Decimal)
			haveSum = true
		}
	}

	// Grand total is only checkable when at least one line total resolved;
	// comparing a stated total against an empty sum would flag every invoice
	// whose items failed to extract twice over.
	if inv.StatedGrandTotal.Valid && haveSum {
		diff := sum.Sub(inv.StatedGrandTotal.Decimal).Abs()
		if diff.GreaterThan(cfg.Tolerance) {
			out = append(out, domain.Discrepancy{
				Kind:     domain.DiscrepancyGrandTotalMismatch,
				Locator:  "stated_grand_total",
				Expected: decimal.NullDecimal{Decimal: sum, Valid: true},
				Actual:   inv.StatedGrandTotal,
				Severity: proportionalSeverity(diff, sum),
				Message: fmt.Sprintf("stated grand total %s differs from sum of line totals %s",
					inv.StatedGrandTotal.Decimal.StringFixed(2), sum.StringFixed(2)),
			})
		}
	}

	return out
}

// proportionalSeverity scales a mismatch by its relative size:
// |diff| / max(expected, 1), capped at 1.0.
func proportionalSeverity(diff, expected decimal.Decimal) float64 {
	denom := expected
	one := decimal.NewFromInt(1)
	if denom.LessThan(one) {
		denom = one
	}
	sev, _ := diff.Div(denom).Float64()
	if sev > 1 {
		sev = 1
	}
	return sev
}
