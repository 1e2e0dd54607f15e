// Package pdfshift implements pdf.Renderer against the PDFShift convert
// API.
package pdfshift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/quillworks/quill/pkg/pdf"
)

// Config holds configuration for the PDFShift client.
type Config struct {
	APIKey  string        // API key (required)
	BaseURL string        // Base URL (default: https://api.pdfshift.io/v3)
	Timeout time.Duration // Per-request HTTP timeout (default: 120s)
	Logger  hclog.Logger  // Logger (optional)
}

// Renderer implements pdf.Renderer using the convert/pdf endpoint.
type Renderer struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     hclog.Logger
}

// NewRenderer creates a new PDFShift renderer.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.APIKey == "" {
		return nil, pdf.ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pdfshift.io/v3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Renderer{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger.Named("pdfshift"),
	}, nil
}

// Name returns the provider name.
func (r *Renderer) Name() string {
	return "pdfshift"
}

// Render converts the request's HTML to PDF bytes.
func (r *Renderer) Render(ctx context.Context, renderReq *pdf.RenderRequest) ([]byte, error) {
	reqBody := convertRequest{
		Source:    renderReq.HTML,
		Landscape: renderReq.Landscape,
		Sandbox:   renderReq.Sandbox,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		r.baseURL+"/convert/pdf", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("api", r.apiKey)

	r.logger.Debug("sending convert request",
		"source_bytes", len(renderReq.HTML),
		"sandbox", renderReq.Sandbox,
	)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convert request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp.StatusCode, body)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		return nil, fmt.Errorf("response is not a PDF document")
	}

	return body, nil
}

func convertError(status int, body []byte) error {
	msg := string(body)
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return fmt.Errorf("API error (%d): %s", status, msg)
}

type convertRequest struct {
	Source    string `json:"source"`
	Landscape bool   `json:"landscape,omitempty"`
	Sandbox   bool   `json:"sandbox,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
