package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"invaudit/internal/port"
)

// invoiceSchemaJSON is the JSON skeleton every backend is asked to fill.
// Extraction only: arithmetic checks and risk scoring happen locally, so
// the model is never asked to judge, only to transcribe.
const invoiceSchemaJSON = `{
  "vendor_name": "",
  "invoice_date": "",
  "invoice_number": "",
  "currency": "",
  "line_items": [
    {
      "description": "",
      "quantity": 0,
      "unit_price": 0,
      "total": 0
    }
  ],
  "subtotal": 0,
  "tax_amount": 0,
  "grand_total": 0
}`

// InvoiceSchema returns the schema descriptor for invoice extraction.
func InvoiceSchema() port.SchemaDescriptor {
	return port.SchemaDescriptor{
		Name:       "invoice",
		Definition: invoiceSchemaJSON,
	}
}

// BuildExtractionPrompt returns the extraction prompt sent to every backend.
func BuildExtractionPrompt(schema port.SchemaDescriptor) string {
	return `You are a document data extraction assistant. Analyze the provided ` + schema.Name + ` text and extract ALL data into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- Extract EVERY line item. Do not skip, summarize, or omit any items.
- Copy amounts exactly as printed, including the document's own totals; do NOT recompute or correct them.
- Normalize dates to YYYY-MM-DD format where possible.
- Currency must be a code like USD or EUR.
- If a field is not present in the document, use empty string for text and null for numbers. Never invent values.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Just the raw JSON object.

The JSON object must follow this schema:
` + schema.Definition
}

// StripCodeFences removes a surrounding markdown code fence from model
// output. Models sometimes wrap JSON in a fenced block despite instructions.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// CompactJSON validates that text is syntactically valid JSON and returns
// it compacted. The shape of the payload is the normalizer's concern; here
// only parseability is checked.
func CompactJSON(text string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
