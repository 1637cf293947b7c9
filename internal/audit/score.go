package audit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"invaudit/internal/config"
	"invaudit/internal/domain"
	"invaudit/internal/extract"
)

// suspiciousVendorSeverity is the fixed severity of a deny-listed vendor name.
const suspiciousVendorSeverity = 0.60

// ScoringConfig is the named policy table of the risk scorer. Numeric
// inconsistency carries the highest weights: a broken sum is stronger fraud
// evidence than a stylistic oddity like a placeholder vendor name.
type ScoringConfig struct {
	Weights        map[domain.DiscrepancyKind]float64
	VendorDenyList []string
	MaxFlags       int

	// Missing-field severities; with the missing_field weight at 1.0 these
	// translate directly into score points (0.15 → 15 points).
	MissingVendorSeverity float64
	MissingDateSeverity   float64
	MissingNumberSeverity float64
	NoLineItemsSeverity   float64
	FieldErrorSeverity    float64
}

// DefaultScoringConfig returns the default scoring policy.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: map[domain.DiscrepancyKind]float64{
			domain.DiscrepancyLineMathMismatch:   1.2,
			domain.DiscrepancyGrandTotalMismatch: 1.2,
			domain.DiscrepancyMissingField:       1.0,
			domain.DiscrepancyNegativeQuantity:   0.5,
			domain.DiscrepancySuspiciousVendor:   0.5,
		},
		VendorDenyList:        []string{"cash", "n/a", "test", "unknown", "none", "misc"},
		MaxFlags:              10,
		MissingVendorSeverity: 0.15,
		MissingDateSeverity:   0.10,
		MissingNumberSeverity: 0.05,
		NoLineItemsSeverity:   0.20,
		FieldErrorSeverity:    0.05,
	}
}

// ScoringConfigFrom builds a ScoringConfig from application configuration,
// converting missing-field points (0–100 scale) into severities.
func ScoringConfigFrom(cfg *config.AuditConfig) ScoringConfig {
	return ScoringConfig{
		Weights: map[domain.DiscrepancyKind]float64{
			domain.DiscrepancyLineMathMismatch:   cfg.LineMathWeight,
			domain.DiscrepancyGrandTotalMismatch: cfg.GrandTotalWeight,
			domain.DiscrepancyMissingField:       cfg.MissingFieldWeight,
			domain.DiscrepancyNegativeQuantity:   cfg.NegativeQtyWeight,
			domain.DiscrepancySuspiciousVendor:   cfg.SuspiciousWeight,
		},
		VendorDenyList:        cfg.VendorDenyList,
		MaxFlags:              cfg.MaxFlags,
		MissingVendorSeverity: float64(cfg.MissingVendorPoints) / 100,
		MissingDateSeverity:   float64(cfg.MissingDatePoints) / 100,
		MissingNumberSeverity: float64(cfg.MissingNumberPoints) / 100,
		NoLineItemsSeverity:   float64(cfg.NoLineItemsPoints) / 100,
		FieldErrorSeverity:    float64(cfg.FieldErrorPoints) / 100,
	}
}

// Score folds math discrepancies, structural missing-field signals, the
// suspicious-vendor heuristic, and per-field parse failures into one
// 0–100 score. Pure: no I/O, no randomness; identical inputs yield an
// identical discrepancy list, score, and flag ordering.
//
// Returned discrepancies are the detected ones followed by the signals added
// here, all in detection order.
func Score(inv *domain.Invoice, detected []domain.Discrepancy, fieldErrs []extract.FieldParseError, cfg ScoringConfig) ([]domain.Discrepancy, int, []string) {
	all := make([]domain.Discrepancy, 0, len(detected)+len(fieldErrs)+5)
	all = append(all, detected...)

	if vendorDenied(inv.VendorName, cfg.VendorDenyList) {
		all = append(all, domain.Discrepancy{
			Kind:     domain.DiscrepancySuspiciousVendor,
			Locator:  "vendor_name",
			Severity: suspiciousVendorSeverity,
			Message:  fmt.Sprintf("vendor name %q looks like a placeholder", inv.VendorName),
		})
	}

	if strings.TrimSpace(inv.VendorName) == "" {
		all = append(all, missingField("vendor_name", "vendor name is missing", cfg.MissingVendorSeverity))
	}
	if inv.InvoiceDate == nil {
		all = append(all, missingField("invoice_date", "invoice date is missing", cfg.MissingDateSeverity))
	}
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		all = append(all, missingField("invoice_number", "invoice number is missing", cfg.MissingNumberSeverity))
	}
	if len(inv.LineItems) == 0 {
		all = append(all, missingField("line_items", "no line items extracted", cfg.NoLineItemsSeverity))
	}
	for i := range fieldErrs {
		fe := &fieldErrs[i]
		all = append(all, missingField(fe.Field,
			fmt.Sprintf("field %s could not be parsed from %q, treated as missing", fe.Field, fe.Raw),
			cfg.FieldErrorSeverity))
	}

	var total float64
	for i := range all {
		total += all[i].Severity * cfg.Weights[all[i].Kind]
	}
	score := int(math.Round(100 * total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return all, score, renderFlags(all, cfg)
}

func missingField(locator, msg string, severity float64) domain.Discrepancy {
	return domain.Discrepancy{
		Kind:     domain.DiscrepancyMissingField,
		Locator:  locator,
		Severity: severity,
		Message:  msg,
	}
}

func vendorDenied(vendor string, denyList []string) bool {
	name := strings.ToLower(strings.TrimSpace(vendor))
	if name == "" {
		return false
	}
	for _, denied := range denyList {
		if name == strings.ToLower(denied) {
			return true
		}
	}
	return false
}

// renderFlags orders discrepancy messages by descending weighted severity,
// detection order breaking ties, capped at MaxFlags.
func renderFlags(all []domain.Discrepancy, cfg ScoringConfig) []string {
	idx := make([]int, len(all))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		wa := all[idx[a]].Severity * cfg.Weights[all[idx[a]].Kind]
		wb := all[idx[b]].Severity * cfg.Weights[all[idx[b]].Kind]
		return wa > wb
	})

	limit := len(idx)
	if cfg.MaxFlags > 0 && limit > cfg.MaxFlags {
		limit = cfg.MaxFlags
	}
	flags := make([]string, 0, limit)
	for _, i := range idx[:limit] {
		flags = append(flags, all[i].Message)
	}
	return flags
}
