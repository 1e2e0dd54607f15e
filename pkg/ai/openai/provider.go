// Package openai implements ai.Provider against an OpenAI-compatible
// chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/quillworks/quill/pkg/ai"
)

// Config holds configuration for the OpenAI client.
type Config struct {
	APIKey  string        // API key (required)
	BaseURL string        // Base URL (default: https://api.openai.com/v1)
	Model   string        // Model identifier (default: gpt-4o)
	Timeout time.Duration // Per-attempt HTTP timeout (default: 60s)
	Logger  hclog.Logger  // Logger (optional)
}

// Provider implements ai.Provider using the chat-completions endpoint.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     hclog.Logger
}

// NewProvider creates a new OpenAI provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger.Named("openai"),
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Generate sends one chat-completion request.
func (p *Provider) Generate(ctx context.Context, genReq *ai.GenerateRequest) (*ai.GenerateResponse, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: genReq.SystemPrompt},
			{Role: "user", Content: genReq.UserPrompt},
		},
		MaxTokens:   genReq.MaxTokens,
		Temperature: genReq.Temperature,
	}
	if genReq.JSONOutput {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/chat/completions", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	p.logger.Debug("sending generation request",
		"model", p.model,
		"max_tokens", genReq.MaxTokens,
		"json_output", genReq.JSONOutput,
	)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection failures are retryable.
		return nil, fmt.Errorf("%w: %v", ai.ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ai.ErrTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyHTTPError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ai.ErrMalformed, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ai.ErrMalformed)
	}

	return &ai.GenerateResponse{
		Content:   chatResp.Choices[0].Message.Content,
		Model:     chatResp.Model,
		TokensIn:  chatResp.Usage.PromptTokens,
		TokensOut: chatResp.Usage.CompletionTokens,
	}, nil
}

// classifyHTTPError maps API error statuses onto the ai error classes.
func (p *Provider) classifyHTTPError(status int, body []byte) error {
	msg := string(body)
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: API error (%d): %s", ai.ErrRateLimited, status, msg)
	case status >= 500:
		return fmt.Errorf("%w: API error (%d): %s", ai.ErrTransient, status, msg)
	default:
		return fmt.Errorf("API error (%d): %s", status, msg)
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
