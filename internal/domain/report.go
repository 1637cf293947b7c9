package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscrepancyKind classifies a detected inconsistency or risk signal.
type DiscrepancyKind string

const (
	DiscrepancyLineMathMismatch   DiscrepancyKind = "line_math_mismatch"
	DiscrepancyGrandTotalMismatch DiscrepancyKind = "grand_total_mismatch"
	DiscrepancyMissingField       DiscrepancyKind = "missing_field"
	DiscrepancyNegativeQuantity   DiscrepancyKind = "negative_quantity"
	DiscrepancySuspiciousVendor   DiscrepancyKind = "suspicious_vendor"
)

// Discrepancy is a single detected inconsistency with an attached severity.
// Locator names the line item (by index, e.g. "line_items[2].total") or the
// invoice-level field the discrepancy concerns. Message is the
// human-readable rendering used for report flags.
type Discrepancy struct {
	Kind     DiscrepancyKind     `json:"kind"`
	Locator  string              `json:"locator"`
	Expected decimal.NullDecimal `json:"expected"`
	Actual   decimal.NullDecimal `json:"actual"`
	Severity float64             `json:"severity"`
	Message  string              `json:"message"`
}

// AuditReport is the final, immutable output of one analysis run.
// Discrepancies keep detection order; Flags are ordered by descending
// weighted severity with detection order breaking ties.
type AuditReport struct {
	ID            uuid.UUID     `json:"id"`
	Invoice       *Invoice      `json:"invoice"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	RiskScore     int           `json:"risk_score"`
	Flags         []string      `json:"flags"`
	FieldErrors   []string      `json:"field_errors,omitempty"`
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	LatencyMs     int64         `json:"latency_ms"`
	AnalyzedAt    time.Time     `json:"analyzed_at"`
}
