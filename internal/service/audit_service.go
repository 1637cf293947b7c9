package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"invaudit/internal/audit"
	"invaudit/internal/domain"
	"invaudit/internal/extract"
	"invaudit/internal/port"
	"invaudit/internal/provider"
)

// AuditService runs the full analysis pipeline for one document: extraction,
// normalization, math checks, risk scoring, report assembly. It holds no
// per-document state, so one instance serves concurrent analyses.
type AuditService struct {
	extractor  port.Extractor
	normalizer *extract.Normalizer
	mathCfg    audit.MathConfig
	scoringCfg audit.ScoringConfig
}

// NewAuditService creates an AuditService around the given extractor and
// audit policy.
func NewAuditService(extractor port.Extractor, mathCfg audit.MathConfig, scoringCfg audit.ScoringConfig) *AuditService {
	return &AuditService{
		extractor:  extractor,
		normalizer: extract.NewNormalizer(),
		mathCfg:    mathCfg,
		scoringCfg: scoringCfg,
	}
}

// Analyze audits one document end to end. Fatal failures (empty document,
// backend errors, an unusable payload) abort with a typed error and no
// partial report; per-field parse failures are folded into the report as
// missing-field risk instead.
func (s *AuditService) Analyze(ctx context.Context, rawText string) (*domain.AuditReport, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.ErrEmptyDocument
	}

	raw, err := s.extractor.Extract(ctx, rawText, provider.InvoiceSchema())
	if err != nil {
		return nil, fmt.Errorf("extracting document: %w", err)
	}

	inv, fieldErrs, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing extraction: %w", err)
	}

	detected := audit.CheckMath(inv, s.mathCfg)
	all, score, flags := audit.Score(inv, detected, fieldErrs, s.scoringCfg)

	report := audit.AssembleReport(inv, all, score, flags, fieldErrs, audit.Meta{
		Provider:  raw.Provider,
		Model:     raw.Model,
		LatencyMs: raw.LatencyMs,
	})

	log.Printf("service.AuditService: document analyzed provider=%s model=%s score=%d discrepancies=%d field_errors=%d",
		raw.Provider, raw.Model, score, len(all), len(fieldErrs))
	return report, nil
}
