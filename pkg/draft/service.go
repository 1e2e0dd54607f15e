// Package draft implements AI-assisted draft generation: it turns
// structured drafting input into a canonical document-graph payload by
// prompting the text-generation collaborator, with bounded per-class
// retries, and normalizes the output so downstream consumers always see a
// structurally complete graph. Nothing is persisted here; usage accounting
// is emitted fire-and-forget.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/quillworks/quill/pkg/ai"
	"github.com/quillworks/quill/pkg/models"
	"github.com/quillworks/quill/pkg/usage"
)

// ErrGenerationFailed is the terminal failure after all retry attempts are
// exhausted. A partial or guessed payload is never returned.
var ErrGenerationFailed = errors.New("draft: generation failed")

// Input is the structured drafting request.
type Input struct {
	Name            string   `json:"name,omitempty"`
	TargetRole      string   `json:"target_role"`
	JobDescription  string   `json:"job_description,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
	Seniority       string   `json:"seniority,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Location        string   `json:"location,omitempty"`
	Tone            string   `json:"tone,omitempty"`
	Language        string   `json:"language,omitempty"`
	UseSocialPhoto  bool     `json:"use_social_photo,omitempty"`
}

// Validate checks the drafting input.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TargetRole, validation.Required, validation.Length(2, 200)),
		validation.Field(&in.ExperienceYears, validation.Min(0), validation.Max(60)),
	)
}

// PrincipalFacts are the verified facts about the requesting principal
// that always override generated values.
type PrincipalFacts struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	PhotoURL  string
}

// Result is a successful generation.
type Result struct {
	Payload   models.DraftPayload
	Model     string
	TokensIn  int
	TokensOut int
}

// Config holds service configuration.
type Config struct {
	// MaxAttempts bounds retries for every error class (default 3).
	MaxAttempts int
	// RetryDelay is the fixed delay for malformed-output and transient
	// errors, and the initial interval of the exponential schedule used
	// for rate limits (default 1s).
	RetryDelay time.Duration
	// AttemptTimeout bounds each collaborator call (default 30s).
	AttemptTimeout time.Duration
	Logger         hclog.Logger
}

// Service is the draft generation service.
type Service struct {
	provider ai.Provider
	recorder usage.Recorder
	cfg      Config
	logger   hclog.Logger
}

// NewService creates a draft generation service.
func NewService(provider ai.Provider, recorder usage.Recorder, cfg Config) *Service {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.AttemptTimeout == 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if recorder == nil {
		recorder = usage.NopRecorder{}
	}
	return &Service{
		provider: provider,
		recorder: recorder,
		cfg:      cfg,
		logger:   cfg.Logger.Named("draft"),
	}
}

// Generate produces a normalized draft payload from the input, or
// ErrGenerationFailed once every attempt is spent.
func (s *Service) Generate(ctx context.Context, input Input, facts PrincipalFacts) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("invalid drafting input: %w", err)
	}

	userPrompt := buildPrompt(input, facts)
	promptHash := usage.HashPrompt(userPrompt)

	req := &ai.GenerateRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    2000,
		Temperature:  0.7,
		JSONOutput:   true,
	}

	// The rate-limit schedule doubles on every attempt; malformed output
	// and transient provider errors wait a fixed short delay.
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.RetryDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0
	expo.Reset()

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		result, err := s.attempt(ctx, req)
		if err == nil {
			normalize(&result.Payload, input, facts)
			s.record(ctx, facts.ID, models.UsageFeatureDraft, result.Model, promptHash,
				result.TokensIn, result.TokensOut, true, "")
			return result, nil
		}
		lastErr = err

		if !ai.IsRetryable(err) {
			s.logger.Error("generation failed with fatal error",
				"attempt", attempt, "error", err)
			break
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}

		delay := s.cfg.RetryDelay
		if ai.IsRateLimited(err) {
			delay = expo.NextBackOff()
		}
		s.logger.Warn("generation attempt failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	s.record(ctx, facts.ID, models.UsageFeatureDraft, s.provider.Name(), promptHash,
		0, 0, false, lastErr.Error())
	return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

// attempt performs one bounded collaborator call and parse.
func (s *Service) attempt(ctx context.Context, req *ai.GenerateRequest) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	defer cancel()

	resp, err := s.provider.Generate(attemptCtx, req)
	if err != nil {
		return nil, err
	}

	payload, err := parsePayload(resp.Content)
	if err != nil {
		return nil, err
	}

	return &Result{
		Payload:   payload,
		Model:     resp.Model,
		TokensIn:  resp.TokensIn,
		TokensOut: resp.TokensOut,
	}, nil
}

// RewriteSection asks the collaborator to rewrite a block of text. Unlike
// Generate, exhaustion degrades gracefully: the original text comes back
// unchanged rather than an error, since a rewrite is an enhancement, not a
// required result.
func (s *Service) RewriteSection(ctx context.Context, principalID, original, instruction, tone string) string {
	if tone == "" {
		tone = "professional"
	}

	req := &ai.GenerateRequest{
		SystemPrompt: rewriteSystemPrompt(tone),
		UserPrompt:   fmt.Sprintf("Original text: %s\n\nUser request: %s", original, instruction),
		MaxTokens:    500,
		Temperature:  0.5,
	}
	promptHash := usage.HashPrompt(req.UserPrompt)

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.RetryDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0
	expo.Reset()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		resp, err := s.provider.Generate(attemptCtx, req)
		cancel()

		if err == nil {
			s.record(ctx, principalID, models.UsageFeatureRewrite, resp.Model, promptHash,
				resp.TokensIn, resp.TokensOut, true, "")
			return resp.Content
		}

		if !ai.IsRetryable(err) || attempt == s.cfg.MaxAttempts {
			s.logger.Warn("section rewrite failed, returning original",
				"attempt", attempt, "error", err)
			s.record(ctx, principalID, models.UsageFeatureRewrite, s.provider.Name(), promptHash,
				0, 0, false, err.Error())
			return original
		}

		delay := s.cfg.RetryDelay
		if ai.IsRateLimited(err) {
			delay = expo.NextBackOff()
		}
		if sleep(ctx, delay) != nil {
			return original
		}
	}
	return original
}

// record emits one usage event; the recorder swallows its own failures.
func (s *Service) record(ctx context.Context, principalID string, feature models.UsageFeature, model, promptHash string, in, out int, success bool, errText string) {
	s.recorder.Record(ctx, usage.Record{
		OwnerID:    principalID,
		Feature:    feature,
		ModelName:  model,
		PromptHash: promptHash,
		TokensIn:   in,
		TokensOut:  out,
		Success:    success,
		ErrorText:  errText,
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parsePayload decodes collaborator output into the canonical payload
// shape, classifying undecodable output as malformed so the fixed-delay
// retry policy applies.
func parsePayload(content string) (models.DraftPayload, error) {
	var payload models.DraftPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ai.ErrMalformed, err)
	}
	if err := checkStructure(payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ai.ErrMalformed, err)
	}
	return payload, nil
}
