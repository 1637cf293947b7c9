package gemini

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
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	providerName = "gemini"
)

func init() {
	provider.Register(providerName, func(cfg *config.ProviderConfig) (port.Extractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.Extractor using Google's Gemini API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Gemini-based extractor.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	return newExtractor(cfg, "")
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt + "\n\nINVOICE TEXT:\n" + rawText},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
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
	req.Header.Set("x-goog-api-key", e.apiKey)

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

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string, latency time.Duration) (*port.RawExtraction, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}

	if len(resp.Candidates) == 0 {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("empty response from API: no candidates")}
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &provider.MalformedResponseError{Provider: providerName, Err: fmt.Errorf("empty response from API: no parts")}
	}

	text := provider.StripCodeFences(resp.Candidates[0].Content.Parts[0].Text)
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
