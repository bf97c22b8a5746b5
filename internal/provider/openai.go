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

// OpenAI talks to an OpenAI-compatible chat completions API.
type OpenAI struct {
	cfg    Config
	client *http.Client
}

// NewOpenAI creates a new OpenAI provider with the given configuration.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAI{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *OpenAI) Name() string { return "openai" }

// DisplayName returns the human-friendly name.
func (p *OpenAI) DisplayName() string { return "OpenAI" }

// Available reports whether an API key is configured.
func (p *OpenAI) Available() bool { return p.cfg.APIKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends a prompt using the default model.
func (p *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return p.GenerateWithModel(ctx, prompt, p.cfg.DefaultModel)
}

// GenerateWithModel sends a prompt using a specific model.
func (p *OpenAI) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = p.cfg.DefaultModel
	}

	payload := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: p.cfg.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(p.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Message: "failed to read response", Err: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: "unparseable response", Err: err}
	}

	if parsed.Error != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if len(parsed.Choices) == 0 {
		return "", &APIError{Provider: p.Name(), Message: "empty response: no choices"}
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
