package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"invaudit/internal/domain"
	"invaudit/internal/port"
)

// payloadSchema gates the overall shape of the untrusted extraction payload.
// Deliberately loose: per-field repair happens in coercion, the schema only
// rejects payloads that are not an invoice-shaped object at all.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"line_items": {
			"type": ["array", "null"],
			"items": {"type": "object"}
		}
	}
}`

var compiledPayloadSchema = mustCompileSchema(payloadSchema)

func mustCompileSchema(schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("payload.json", strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("payload.json")
}

// dateLayouts are tried in order when coercing invoice dates.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	time.RFC3339,
}

// rawInvoice mirrors the extraction schema with untyped fields so that
// string-or-number confusion from the model fails one field, not the
// document.
type rawInvoice struct {
	VendorName    any           `json:"vendor_name"`
	InvoiceDate   any           `json:"invoice_date"`
	InvoiceNumber any           `json:"invoice_number"`
	Currency      any           `json:"currency"`
	LineItems     []rawLineItem `json:"line_items"`
	Subtotal      any           `json:"subtotal"`
	TaxAmount     any           `json:"tax_amount"`
	GrandTotal    any           `json:"grand_total"`
}

type rawLineItem struct {
	Description any `json:"description"`
	Quantity    any `json:"quantity"`
	UnitPrice   any `json:"unit_price"`
	Total       any `json:"total"`
}

// Normalizer turns a raw extraction payload into a validated Invoice.
// It is the stage most exposed to untrusted input: everything the model
// returned is repaired or rejected here, field by field.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize validates and coerces a raw extraction into an Invoice. Field
// coercion failures are accumulated and returned alongside a still-usable
// partial Invoice; only a payload that is not invoice-shaped at all yields
// a fatal *SchemaViolationError.
func (n *Normalizer) Normalize(raw *port.RawExtraction) (*domain.Invoice, []FieldParseError, error) {
	decoded, err := decodeUseNumber(raw.Payload)
	if err != nil {
		return nil, nil, &SchemaViolationError{Err: err}
	}
	if err := compiledPayloadSchema.Validate(decoded); err != nil {
		return nil, nil, &SchemaViolationError{Err: err}
	}

	var r rawInvoice
	dec := json.NewDecoder(bytes.NewReader(raw.Payload))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, nil, &SchemaViolationError{Err: err}
	}

	var fieldErrs []FieldParseError

	inv := &domain.Invoice{
		VendorName:    coerceString("vendor_name", r.VendorName, &fieldErrs),
		InvoiceNumber: coerceString("invoice_number", r.InvoiceNumber, &fieldErrs),
		Currency:      strings.ToUpper(coerceString("currency", r.Currency, &fieldErrs)),
		InvoiceDate:   coerceDate("invoice_date", r.InvoiceDate, &fieldErrs),
	}

	inv.LineItems = make([]domain.LineItem, 0, len(r.LineItems))
	for i, ri := range r.LineItems {
		inv.LineItems = append(inv.LineItems, domain.LineItem{
			Description:     coerceString(fmt.Sprintf("line_items[%d].description", i), ri.Description, &fieldErrs),
			Quantity:        coerceAmount(fmt.Sprintf("line_items[%d].quantity", i), ri.Quantity, &fieldErrs),
			UnitPrice:       coerceAmount(fmt.Sprintf("line_items[%d].unit_price", i), ri.UnitPrice, &fieldErrs),
			StatedLineTotal: coerceAmount(fmt.Sprintf("line_items[%d].total", i), ri.Total, &fieldErrs),
		})
	}

	inv.Subtotal = coerceAmount("subtotal", r.Subtotal, &fieldErrs)
	inv.TaxAmount = coerceAmount("tax_amount", r.TaxAmount, &fieldErrs)
	inv.StatedGrandTotal = coerceAmount("grand_total", r.GrandTotal, &fieldErrs)

	return inv, fieldErrs, nil
}

func decodeUseNumber(payload json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return decoded, nil
}

// coerceString repairs a string-typed field. Absent values default to ""
// per the coercion policy; structurally wrong values fail the field.
func coerceString(field string, v any, errs *[]FieldParseError) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		*errs = append(*errs, FieldParseError{
			Field: field,
			Raw:   fmt.Sprintf("%v", v),
			Err:   fmt.Errorf("expected string, got %T", v),
		})
		return ""
	}
}

// coerceAmount repairs a numeric field into a NullDecimal. Absent or
// unparseable values stay unknown rather than becoming zero; zero would be
// indistinguishable from a genuine zero amount and corrupt the math checks.
func coerceAmount(field string, v any, errs *[]FieldParseError) decimal.NullDecimal {
	switch val := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			*errs = append(*errs, FieldParseError{Field: field, Raw: val.String(), Err: err})
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: d, Valid: true}
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.NullDecimal{}
		}
		d, err := ParseAmount(val)
		if err != nil {
			*errs = append(*errs, FieldParseError{Field: field, Raw: val, Err: err})
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: d, Valid: true}
	default:
		*errs = append(*errs, FieldParseError{
			Field: field,
			Raw:   fmt.Sprintf("%v", v),
			Err:   fmt.Errorf("expected number or string, got %T", v),
		})
		return decimal.NullDecimal{}
	}
}

func coerceDate(field string, v any, errs *[]FieldParseError) *time.Time {
	s := strings.TrimSpace(coerceString(field, v, errs))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	*errs = append(*errs, FieldParseError{
		Field: field,
		Raw:   s,
		Err:   fmt.Errorf("unrecognized date format"),
	})
	return nil
}
