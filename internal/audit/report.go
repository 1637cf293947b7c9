package audit

import (
	"time"

	"github.com/google/uuid"

	"invaudit/internal/domain"
	"invaudit/internal/extract"
)

// Meta carries extraction provenance into the assembled report.
type Meta struct {
	Provider  string
	Model     string
	LatencyMs int64
}

// AssembleReport packages the outputs of the pipeline stages into the final
// immutable AuditReport. Pure aggregation: upstream data is copied, never
// dropped or reordered.
func AssembleReport(inv *domain.Invoice, discrepancies []domain.Discrepancy, score int, flags []string, fieldErrs []extract.FieldParseError, meta Meta) *domain.AuditReport {
	report := &domain.AuditReport{
		ID:            uuid.New(),
		Invoice:       inv,
		Discrepancies: make([]domain.Discrepancy, len(discrepancies)),
		RiskScore:     score,
		Flags:         make([]string, len(flags)),
		Provider:      meta.Provider,
		Model:         meta.Model,
		LatencyMs:     meta.LatencyMs,
		AnalyzedAt:    time.Now().UTC(),
	}
	copy(report.Discrepancies, discrepancies)
	copy(report.Flags, flags)

	if len(fieldErrs) > 0 {
		report.FieldErrors = make([]string, 0, len(fieldErrs))
		for i := range fieldErrs {
			report.FieldErrors = append(report.FieldErrors, fieldErrs[i].Error())
		}
	}

	return report
}
