package openai

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
	apiURL       = "https://api.openai.com/v1/chat/completions"
	providerName = "openai"
)

func init() {
	provider.Register(providerName, func(cfg *config.ProviderConfig) (port.Extractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.Extractor using the OpenAI Chat Completions API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an OpenAI-based extractor from a provider config.
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
		model = "gpt-4o"
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
		"model":                 e.model,
		"max_completion_tokens": 16384,
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt},
			{"role": "user", "content": rawText},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

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

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string, latency time.Duration) (*port.RawExtraction, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("empty response from API: no choices")}
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("output truncated (finish_reason: length)")}
	}

	text := provider.StripCodeFences(resp.Choices[0].Message.Content)
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
