// Package usage is the fire-and-forget observability sink for AI calls.
// Recording failures are logged and swallowed so they can never fail the
// primary operation.
package usage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/models"
)

// Record is one usage event.
type Record struct {
	OwnerID    string
	Feature    models.UsageFeature
	ModelName  string
	PromptHash string
	TokensIn   int
	TokensOut  int
	Success    bool
	ErrorText  string
}

// Recorder receives usage events.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// HashPrompt returns a stable hash for a prompt so the prompt text itself
// never reaches the accounting table.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// DBRecorder persists usage events as UsageRecord rows.
type DBRecorder struct {
	db     *gorm.DB
	logger hclog.Logger
}

// NewDBRecorder creates a database-backed recorder.
func NewDBRecorder(db *gorm.DB, logger hclog.Logger) *DBRecorder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &DBRecorder{
		db:     db,
		logger: logger.Named("usage"),
	}
}

// Record inserts one usage row. Errors are logged, never returned.
func (r *DBRecorder) Record(ctx context.Context, rec Record) {
	errText := rec.ErrorText
	if len(errText) > 1000 {
		errText = errText[:1000]
	}

	row := models.UsageRecord{
		OwnerID:      rec.OwnerID,
		Feature:      rec.Feature,
		ModelName:    rec.ModelName,
		PromptHash:   rec.PromptHash,
		TokensIn:     rec.TokensIn,
		TokensOut:    rec.TokensOut,
		Success:      rec.Success,
		ErrorMessage: errText,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.logger.Error("failed to record usage",
			"owner", rec.OwnerID,
			"feature", rec.Feature,
			"error", err,
		)
	}
}

// NopRecorder discards all events.
type NopRecorder struct{}

// Record discards the event.
func (NopRecorder) Record(ctx context.Context, rec Record) {}
