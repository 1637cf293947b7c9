package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"invaudit/internal/audit"
	"invaudit/internal/config"
	"invaudit/internal/provider"
	"invaudit/internal/service"

	// Register extraction backends.
	_ "invaudit/internal/provider/claude"
	_ "invaudit/internal/provider/gemini"
	_ "invaudit/internal/provider/groq"
	_ "invaudit/internal/provider/openai"
)

// cmd/audit analyzes a single document from a text file (or stdin) and
// prints the audit report as JSON. Useful for smoke-testing a provider
// credential without running the server.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "", "path to the extracted document text (default: stdin)")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall analysis timeout")
	flag.Parse()

	text, err := readInput(*file)
	if err != nil {
		return err
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := auditSvc.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
