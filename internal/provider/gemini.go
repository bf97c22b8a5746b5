package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Gemini talks to the Google Generative Language REST API.
type Gemini struct {
	cfg    Config
	client *http.Client
}

// NewGemini creates a new Gemini provider with the given configuration.
func NewGemini(cfg Config) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Gemini{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *Gemini) Name() string { return "gemini" }

// DisplayName returns the human-friendly name.
func (p *Gemini) DisplayName() string { return "Google Gemini" }

// Available reports whether an API key is configured.
func (p *Gemini) Available() bool { return p.cfg.APIKey != "" }

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends a prompt using the default model.
func (p *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return p.GenerateWithModel(ctx, prompt, p.cfg.DefaultModel)
}

// GenerateWithModel sends a prompt using a specific model.
func (p *Gemini) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = p.cfg.DefaultModel
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: p.cfg.Temperature},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(p.cfg.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Message: "failed to read response", Err: err}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: "unparseable response", Err: err}
	}

	if parsed.Error != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &APIError{Provider: p.Name(), Message: "empty response: no candidates"}
	}

	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}

	return strings.TrimSpace(b.String()), nil
}
