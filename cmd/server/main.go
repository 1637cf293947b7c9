package main

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"invaudit/internal/audit"
	"invaudit/internal/config"
	"invaudit/internal/handler"
	"invaudit/internal/provider"
	"invaudit/internal/router"
	"invaudit/internal/service"

	// Register extraction backends.
	_ "invaudit/internal/provider/claude"
	_ "invaudit/internal/provider/gemini"
	_ "invaudit/internal/provider/groq"
	_ "invaudit/internal/provider/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	extractor, err := provider.NewExtractor(&cfg.Provider)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	mathCfg := audit.DefaultMathConfig()
	if cfg.Audit.Tolerance > 0 {
		mathCfg = audit.MathConfig{Tolerance: decimal.NewFromFloat(cfg.Audit.Tolerance)}
	}

	auditSvc := service.NewAuditService(extractor, mathCfg, audit.ScoringConfigFrom(&cfg.Audit))

	auditH := handler.NewAuditHandler(auditSvc)
	healthH := handler.NewHealthHandler()

	r := router.Setup(cfg, auditH, healthH)

	log.Printf("Server starting on %s (provider=%s)", cfg.Server.Port, cfg.Provider.Provider)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
