// Package ai defines the boundary to the external text-generation
// collaborator. Providers accept a system instruction plus a user
// instruction and return structured text; errors are classified so the
// draft service can apply the right retry policy.
package ai

import (
	"context"
	"errors"
)

// Provider is the text-generation collaborator interface.
type Provider interface {
	// Generate invokes the model with a bounded per-attempt timeout
	// enforced through ctx. The returned content is expected to be a
	// single JSON object when req.JSONOutput is set.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g. "openai", "mock").
	Name() string
}

// GenerateRequest carries one generation call.
type GenerateRequest struct {
	SystemPrompt string  // System instruction
	UserPrompt   string  // User instruction
	MaxTokens    int     // Completion token limit (0 = provider default)
	Temperature  float64 // Sampling temperature
	JSONOutput   bool    // Ask the provider for a JSON object response
}

// GenerateResponse carries the model output and usage accounting.
type GenerateResponse struct {
	Content   string // Raw model output
	Model     string // Concrete model identifier used
	TokensIn  int    // Prompt tokens consumed
	TokensOut int    // Completion tokens consumed
}

// Error classification sentinels. Providers wrap these so callers can pick
// a retry strategy with errors.Is.
var (
	// ErrRateLimited signals provider throttling; retried with
	// exponential backoff.
	ErrRateLimited = errors.New("ai: rate limited")

	// ErrMalformed signals unparseable model output; retried with a
	// short fixed delay.
	ErrMalformed = errors.New("ai: malformed output")

	// ErrTransient signals a temporary provider failure (timeouts, 5xx);
	// retried with a short fixed delay.
	ErrTransient = errors.New("ai: transient provider error")
)

// IsRateLimited reports whether err is a throttling signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsMalformed reports whether err is a malformed-output signal.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsTransient reports whether err is a transient provider failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsRetryable reports whether any retry policy applies to err.
func IsRetryable(err error) bool {
	return IsRateLimited(err) || IsMalformed(err) || IsTransient(err)
}
