package draft

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/quill/pkg/ai"
	"github.com/quillworks/quill/pkg/ai/mock"
	"github.com/quillworks/quill/pkg/models"
	"github.com/quillworks/quill/pkg/usage"
)

// captureRecorder keeps every usage event for assertions.
type captureRecorder struct {
	mu  sync.Mutex
	got []usage.Record
}

func (r *captureRecorder) Record(_ context.Context, rec usage.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, rec)
}

func (r *captureRecorder) records() []usage.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]usage.Record(nil), r.got...)
}

func validContent(t *testing.T) string {
	t.Helper()
	payload := models.DraftPayload{
		PersonalInfo: models.DraftPersonalInfo{
			FirstName: "Grace",
			LastName:  "Hopper",
			Headline:  "Backend Engineer",
			Email:     "generated@example.com",
		},
		WorkExperience: []models.DraftExperience{
			{
				PositionTitle: "Engineer",
				CompanyName:   "Navy Labs",
				StartDate:     "2020-01",
				EndDate:       "Present",
				Bullets:       []string{"Wrote the compiler"},
			},
		},
	}
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(b)
}

func testInput() Input {
	return Input{TargetRole: "Backend Engineer", ExperienceYears: 6}
}

func testFacts() PrincipalFacts {
	return PrincipalFacts{
		ID:        "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		PhotoURL:  "https://example.com/ada.png",
	}
}

func fastConfig() Config {
	return Config{RetryDelay: time.Millisecond}
}

// TestGenerateFirstTry verifies the happy path: one provider call, a
// normalized payload, and a success usage record.
func TestGenerateFirstTry(t *testing.T) {
	provider := mock.NewProvider(mock.Response{
		Content: validContent(t), TokensIn: 500, TokensOut: 900,
	})
	recorder := &captureRecorder{}
	svc := NewService(provider, recorder, fastConfig())

	result, err := svc.Generate(context.Background(), testInput(), testFacts())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.Calls())
	assert.Equal(t, 500, result.TokensIn)
	assert.Equal(t, 900, result.TokensOut)

	// Verified facts override generated identity.
	assert.Equal(t, "Ada", result.Payload.PersonalInfo.FirstName)
	assert.Equal(t, "ada@example.com", result.Payload.PersonalInfo.Email)

	records := recorder.records()
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
	assert.Equal(t, "user-1", records[0].OwnerID)
	assert.Equal(t, models.UsageFeatureDraft, records[0].Feature)
	assert.NotEmpty(t, records[0].PromptHash)

	// The provider was asked for JSON.
	require.NotNil(t, provider.LastRequest)
	assert.True(t, provider.LastRequest.JSONOutput)
	assert.Contains(t, provider.LastRequest.UserPrompt, "Backend Engineer")
	assert.Contains(t, provider.LastRequest.UserPrompt, "Senior (6 years)")
}

// TestGenerateRetriesThenSucceeds verifies transient and rate-limit
// failures are retried up to the attempt budget.
func TestGenerateRetriesThenSucceeds(t *testing.T) {
	provider := mock.NewProvider(
		mock.Response{Err: ai.ErrRateLimited},
		mock.Response{Err: ai.ErrTransient},
		mock.Response{Content: validContent(t)},
	)
	svc := NewService(provider, nil, fastConfig())

	_, err := svc.Generate(context.Background(), testInput(), testFacts())
	require.NoError(t, err)
	assert.Equal(t, 3, provider.Calls())
}

// TestGenerateMalformedExhaustion verifies persistently malformed output
// consumes all attempts and surfaces ErrGenerationFailed with a failure
// record. A guessed payload is never returned.
func TestGenerateMalformedExhaustion(t *testing.T) {
	provider := mock.NewProvider(mock.Response{Content: "not json at all"})
	recorder := &captureRecorder{}
	svc := NewService(provider, recorder, fastConfig())

	result, err := svc.Generate(context.Background(), testInput(), testFacts())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Nil(t, result)
	assert.Equal(t, 3, provider.Calls())

	records := recorder.records()
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.NotEmpty(t, records[0].ErrorText)
}

// TestGenerateEmptyPayloadIsMalformed verifies a syntactically valid but
// substance-free object is retried like malformed output.
func TestGenerateEmptyPayloadIsMalformed(t *testing.T) {
	provider := mock.NewProvider(
		mock.Response{Content: "{}"},
		mock.Response{Content: validContent(t)},
	)
	svc := NewService(provider, nil, fastConfig())

	_, err := svc.Generate(context.Background(), testInput(), testFacts())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.Calls())
}

// TestGenerateFatalErrorNoRetry verifies non-retryable provider errors
// abort immediately.
func TestGenerateFatalErrorNoRetry(t *testing.T) {
	provider := mock.NewProvider(mock.Response{Err: context.Canceled})
	svc := NewService(provider, nil, fastConfig())

	_, err := svc.Generate(context.Background(), testInput(), testFacts())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, provider.Calls())
}

// TestGenerateValidatesInput verifies bad input never reaches the
// provider.
func TestGenerateValidatesInput(t *testing.T) {
	provider := mock.NewProvider(mock.Response{Content: validContent(t)})
	svc := NewService(provider, nil, fastConfig())

	_, err := svc.Generate(context.Background(), Input{}, testFacts())
	assert.Error(t, err)
	assert.Zero(t, provider.Calls())
}

// TestNormalizeRules exercises the normalization table directly.
func TestNormalizeRules(t *testing.T) {
	payload := models.DraftPayload{
		PersonalInfo: models.DraftPersonalInfo{
			FirstName: "Generated",
			LastName:  "Person",
			Email:     "made-up@example.com",
		},
		WorkExperience: []models.DraftExperience{
			{PositionTitle: "A", EndDate: "Present"},
			{PositionTitle: "B", EndDate: "current"},
			{PositionTitle: "C", EndDate: "2022-05"},
		},
	}

	input := Input{Name: "Jean Bartik", UseSocialPhoto: true}
	normalize(&payload, input, testFacts())

	// Explicit name wins over both generated and account identity.
	assert.Equal(t, "Jean", payload.PersonalInfo.FirstName)
	assert.Equal(t, "Bartik", payload.PersonalInfo.LastName)
	// Account email always wins.
	assert.Equal(t, "ada@example.com", payload.PersonalInfo.Email)
	// Social photo only on request.
	assert.Equal(t, "https://example.com/ada.png", payload.PersonalInfo.PhotoURL)

	assert.True(t, payload.WorkExperience[0].Current)
	assert.Empty(t, payload.WorkExperience[0].EndDate)
	assert.True(t, payload.WorkExperience[1].Current)
	assert.False(t, payload.WorkExperience[2].Current)
	assert.Equal(t, "2022-05", payload.WorkExperience[2].EndDate)

	// Missing lists come back empty, not nil.
	assert.NotNil(t, payload.Education)
	assert.NotNil(t, payload.SkillCategories)
	assert.NotNil(t, payload.Strengths)
	assert.NotNil(t, payload.Hobbies)
	assert.NotNil(t, payload.CustomSections)
	assert.NotNil(t, payload.WorkExperience[0].Bullets)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Jean Bartik")
	assert.Equal(t, "Jean", first)
	assert.Equal(t, "Bartik", last)

	first, last = splitName("Prince")
	assert.Equal(t, "Prince", first)
	assert.Empty(t, last)

	first, last = splitName("Ada King Lovelace")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "King Lovelace", last)
}

func TestSeniorityLevel(t *testing.T) {
	assert.Equal(t, "Junior", seniorityLevel(1))
	assert.Equal(t, "Mid-level", seniorityLevel(4))
	assert.Equal(t, "Senior", seniorityLevel(9))
	assert.Equal(t, "Expert", seniorityLevel(15))
}

// TestRewriteSectionFallback verifies exhaustion returns the original
// text unchanged, with a failure usage record.
func TestRewriteSectionFallback(t *testing.T) {
	provider := mock.NewProvider(mock.Response{Err: ai.ErrTransient})
	recorder := &captureRecorder{}
	svc := NewService(provider, recorder, fastConfig())

	got := svc.RewriteSection(context.Background(), "user-1",
		"original text", "make it punchier", "")
	assert.Equal(t, "original text", got)
	assert.Equal(t, 3, provider.Calls())

	records := recorder.records()
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.Equal(t, models.UsageFeatureRewrite, records[0].Feature)
}

// TestRewriteSectionSuccess verifies the rewritten text and tone plumbing.
func TestRewriteSectionSuccess(t *testing.T) {
	provider := mock.NewProvider(mock.Response{Content: "punchier text"})
	svc := NewService(provider, nil, fastConfig())

	got := svc.RewriteSection(context.Background(), "user-1",
		"original text", "make it punchier", "casual")
	assert.Equal(t, "punchier text", got)

	require.NotNil(t, provider.LastRequest)
	assert.Contains(t, provider.LastRequest.SystemPrompt, "Tone: casual")
	assert.Contains(t, provider.LastRequest.UserPrompt, "original text")
}
