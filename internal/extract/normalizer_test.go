package extract_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invaudit/internal/extract"
	"invaudit/internal/port"
)

func rawExtraction(payload string) *port.RawExtraction {
	return &port.RawExtraction{
		Payload:  json.RawMessage(payload),
		Provider: "openai",
		Model:    "gpt-4o",
	}
}

func TestNormalize_FullPayload(t *testing.T) {
	payload := `{
		"vendor_name": "Acme Corp",
		"invoice_date": "2024-01-15",
		"invoice_number": "INV-001",
		"currency": "usd",
		"line_items": [
			{"description": "Widget", "quantity": 2, "unit_price": 5.00, "total": 10.00},
			{"description": "Gadget", "quantity": "1.5", "unit_price": "$4.00", "total": "6.00"}
		],
		"subtotal": 16.00,
		"tax_amount": 1.28,
		"grand_total": "17.28"
	}`

	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)

	assert.Equal(t, "Acme Corp", inv.VendorName)
	require.NotNil(t, inv.InvoiceDate)
	assert.Equal(t, "2024-01-15", inv.InvoiceDate.Format("2006-01-02"))
	assert.Equal(t, "INV-001", inv.InvoiceNumber)
	assert.Equal(t, "USD", inv.Currency)

	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, "Widget", inv.LineItems[0].Description)
	require.True(t, inv.LineItems[0].Quantity.Valid)
	assert.Equal(t, "2", inv.LineItems[0].Quantity.Decimal.String())
	require.True(t, inv.LineItems[1].UnitPrice.Valid)
	assert.Equal(t, "4", inv.LineItems[1].UnitPrice.Decimal.String())

	require.True(t, inv.Subtotal.Valid)
	require.True(t, inv.TaxAmount.Valid)
	require.True(t, inv.StatedGrandTotal.Valid)
	assert.Equal(t, "17.28", inv.StatedGrandTotal.Decimal.StringFixed(2))
}

func TestNormalize_AbsentFieldsStayUnknown(t *testing.T) {
	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(`{}`))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)

	assert.Equal(t, "", inv.VendorName)
	assert.Nil(t, inv.InvoiceDate)
	assert.Empty(t, inv.LineItems)
	// Unknown, not zero: zero would corrupt the math checks downstream.
	assert.False(t, inv.StatedGrandTotal.Valid)
	assert.False(t, inv.Subtotal.Valid)
}

func TestNormalize_NullNumbersStayUnknown(t *testing.T) {
	payload := `{"vendor_name": "Acme", "line_items": [{"description": "x", "quantity": null, "unit_price": null, "total": null}], "grand_total": null}`

	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	require.Len(t, inv.LineItems, 1)
	assert.False(t, inv.LineItems[0].Quantity.Valid)
	assert.False(t, inv.StatedGrandTotal.Valid)
}

func TestNormalize_FieldParseErrorDoesNotAbort(t *testing.T) {
	payload := `{
		"vendor_name": "Acme Corp",
		"invoice_date": "sometime last week",
		"line_items": [
			{"description": "Widget", "quantity": "three", "unit_price": 5.00, "total": 15.00}
		],
		"grand_total": "N/A"
	}`

	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
	require.NoError(t, err)
	require.NotNil(t, inv)

	// Three bad fields, each failing individually.
	require.Len(t, fieldErrs, 3)
	fields := []string{fieldErrs[0].Field, fieldErrs[1].Field, fieldErrs[2].Field}
	assert.Contains(t, fields, "invoice_date")
	assert.Contains(t, fields, "line_items[0].quantity")
	assert.Contains(t, fields, "grand_total")

	// The rest of the invoice is still usable.
	assert.Equal(t, "Acme Corp", inv.VendorName)
	assert.Nil(t, inv.InvoiceDate)
	require.Len(t, inv.LineItems, 1)
	assert.False(t, inv.LineItems[0].Quantity.Valid)
	assert.True(t, inv.LineItems[0].UnitPrice.Valid)
	assert.True(t, inv.LineItems[0].StatedLineTotal.Valid)
	assert.False(t, inv.StatedGrandTotal.Valid)
}

func TestNormalize_ParenthesesNegativeAmount(t *testing.T) {
	payload := `{"line_items": [{"description": "credit", "quantity": 1, "unit_price": "(50.00)", "total": "(50.00)"}]}`

	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "-50", inv.LineItems[0].UnitPrice.Decimal.String())
}

func TestNormalize_SchemaViolations(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"top_level_array", `[1, 2, 3]`},
		{"top_level_string", `"not an invoice"`},
		{"top_level_number", `42`},
		{"line_items_not_array", `{"line_items": "nope"}`},
		{"line_items_of_scalars", `{"line_items": [1, 2]}`},
		{"not_json", `{{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := extract.NewNormalizer().Normalize(rawExtraction(tc.payload))
			require.Error(t, err)
			var schemaErr *extract.SchemaViolationError
			assert.True(t, errors.As(err, &schemaErr))
		})
	}
}

func TestNormalize_DateLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-01-15":       "2024-01-15",
		"15-01-2024":       "2024-01-15",
		"Jan 2, 2006":      "2006-01-02",
		"2 January 2006":   "2006-01-02",
		"2024/01/15":       "2024-01-15",
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			payload := `{"invoice_date": "` + input + `"}`
			inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
			require.NoError(t, err)
			assert.Empty(t, fieldErrs)
			require.NotNil(t, inv.InvoiceDate)
			assert.Equal(t, want, inv.InvoiceDate.Format("2006-01-02"))
		})
	}
}

func TestNormalize_WrongTypeForString(t *testing.T) {
	payload := `{"vendor_name": {"nested": true}}`

	inv, fieldErrs, err := extract.NewNormalizer().Normalize(rawExtraction(payload))
	require.NoError(t, err)
	assert.Equal(t, "", inv.VendorName)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "vendor_name", fieldErrs[0].Field)
}
