package extract

import "fmt"

// SchemaViolationError indicates the extraction payload was not a structured
// object at all. Fatal: no usable Invoice can be produced from it.
type SchemaViolationError struct {
	Err error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("extraction payload violates invoice schema: %v", e.Err)
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

// FieldParseError records a single field that could not be coerced into its
// target type. Non-fatal: normalization continues and the field stays unknown.
type FieldParseError struct {
	Field string
	Raw   string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q: %v", e.Field, e.Raw, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }
