package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invaudit/internal/config"
	"invaudit/internal/domain"
	"invaudit/internal/port"
	"invaudit/internal/provider"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	providerName = "claude"
)

func init() {
	provider.Register(providerName, func(cfg *config.ProviderConfig) (port.Extractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.Extractor using the Anthropic Messages API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Claude-based extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) Extract(ctx context.Context, rawText string, schema port.SchemaDescriptor) (*port.RawExtraction, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.ErrEmptyDocument
	}

	prompt := provider.BuildExtractionPrompt(schema)

	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": 16384,
		"system":     prompt,
		"messages": []map[string]interface{}{
			{"role": "user", "content": rawText},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &provider.BackendUnavailableError{Provider: providerName, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.BackendUnavailableError{Provider: providerName, Err: err}
	}
	latency := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ClassifyStatus(providerName, resp.StatusCode, respBody, resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, e.model, latency)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string, latency time.Duration) (*port.RawExtraction, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if len(resp.Content) == 0 {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("empty response from API")}
	}

	if resp.StopReason == "max_tokens" {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("output truncated (stop_reason: max_tokens)")}
	}

	text := provider.StripCodeFences(resp.Content[0].Text)
	payload, err := provider.CompactJSON(text)
	if err != nil {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))}
	}

	return &port.RawExtraction{
		Payload:   payload,
		Provider:  providerName,
		Model:     model,
		LatencyMs: latency.Milliseconds(),
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
