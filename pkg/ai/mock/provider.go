// Package mock provides a scriptable ai.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/quillworks/quill/pkg/ai"
)

// Response is one scripted Generate outcome.
type Response struct {
	Content   string
	TokensIn  int
	TokensOut int
	Err       error
}

// Provider replays a scripted sequence of responses. Once the script is
// exhausted the last entry repeats.
type Provider struct {
	mu     sync.Mutex
	script []Response
	calls  int

	// LastRequest records the most recent request for assertions.
	LastRequest *ai.GenerateRequest
}

// NewProvider creates a mock provider replaying the given responses.
func NewProvider(script ...Response) *Provider {
	return &Provider{script: script}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// Calls returns how many times Generate was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Generate replays the next scripted response.
func (p *Provider) Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.GenerateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.LastRequest = req

	idx := p.calls
	if idx >= len(p.script) {
		idx = len(p.script) - 1
	}
	p.calls++

	r := p.script[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return &ai.GenerateResponse{
		Content:   r.Content,
		Model:     "mock-v1",
		TokensIn:  r.TokensIn,
		TokensOut: r.TokensOut,
	}, nil
}
