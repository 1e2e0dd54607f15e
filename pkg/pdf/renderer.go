// Package pdf defines the rendering collaborator boundary: documents are
// rendered to PDF by an external conversion service, reached over HTTP.
package pdf

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no rendering provider has credentials.
var ErrNotConfigured = errors.New("pdf: no provider configured")

// RenderRequest carries the HTML source to convert and provider options.
type RenderRequest struct {
	// HTML is the fully rendered document markup.
	HTML string

	// Landscape rotates the page orientation.
	Landscape bool

	// Sandbox requests a watermarked test render where the provider
	// supports it.
	Sandbox bool
}

// Renderer converts rendered document markup to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, req *RenderRequest) ([]byte, error)

	// Name identifies the provider for logging and usage records.
	Name() string
}
