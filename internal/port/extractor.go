package port

import (
	"context"
	"encoding/json"
)

// SchemaDescriptor names the target extraction schema and carries its JSON
// skeleton. Adapters embed the skeleton into their provider-specific prompt.
type SchemaDescriptor struct {
	Name       string
	Definition string
}

// RawExtraction is a backend's best-effort structured payload plus call
// metadata. Payload is untrusted until it passes the extraction normalizer.
type RawExtraction struct {
	Payload   json.RawMessage
	Provider  string
	Model     string
	LatencyMs int64
}

// Extractor abstracts an LLM backend behind a single capability: raw
// document text plus a target schema in, a structured-ish payload out.
// Implementations hold only the credential and backend identity supplied at
// construction and never retry on their own.
type Extractor interface {
	Extract(ctx context.Context, rawText string, schema SchemaDescriptor) (*RawExtraction, error)
}
