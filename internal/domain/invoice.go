package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the normalized structured representation of a billing document.
// It is constructed once by the extraction normalizer and treated as
// read-only by every later pipeline stage.
type Invoice struct {
	VendorName       string              `json:"vendor_name"`
	InvoiceDate      *time.Time          `json:"invoice_date,omitempty"`
	InvoiceNumber    string              `json:"invoice_number"`
	Currency         string              `json:"currency"`
	LineItems        []LineItem          `json:"line_items"`
	Subtotal         decimal.NullDecimal `json:"subtotal"`
	TaxAmount        decimal.NullDecimal `json:"tax_amount"`
	StatedGrandTotal decimal.NullDecimal `json:"stated_grand_total"`
}

// LineItem is one billable row within an Invoice. Items have no identity
// outside their position in the Invoice's line_items sequence.
//
// Numeric fields use NullDecimal so that "not extracted" stays
// distinguishable from a genuine zero amount.
type LineItem struct {
	Description     string              `json:"description"`
	Quantity        decimal.NullDecimal `json:"quantity"`
	UnitPrice       decimal.NullDecimal `json:"unit_price"`
	StatedLineTotal decimal.NullDecimal `json:"stated_line_total"`
}
