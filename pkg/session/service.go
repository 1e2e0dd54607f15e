// Package session manages draft sessions: the holding area between AI
// generation and a confirmed, persisted document. A session is a one-shot
// state machine; confirmation materializes the stored draft graph and
// consumes the session in the same transaction.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/database"
	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/models"
)

// Session state errors.
var (
	// ErrNotFound is returned when the session does not exist or is not
	// owned by the requesting principal.
	ErrNotFound = errors.New("session: not found")

	// ErrAlreadyConsumed is returned when confirming a session that was
	// already confirmed.
	ErrAlreadyConsumed = errors.New("session: already consumed")

	// ErrExpired is returned when confirming after the deadline.
	ErrExpired = errors.New("session: expired")
)

// State is the lifecycle state of a draft session.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateExpired   State = "expired"
)

// StateOf derives the session state. Confirmed wins over expired: a
// consumed session stays terminal regardless of the deadline.
func StateOf(sess *models.DraftSession, now time.Time) State {
	switch {
	case sess.Consumed:
		return StateConfirmed
	case sess.IsExpired(now):
		return StateExpired
	default:
		return StatePending
	}
}

// Config holds service configuration.
type Config struct {
	// TTL is the confirmation window for new sessions (default 2h).
	TTL    time.Duration
	Logger hclog.Logger
}

// Service is the draft session manager.
type Service struct {
	db        *gorm.DB
	documents *document.Service
	ttl       time.Duration
	logger    hclog.Logger
}

// NewService creates a draft session manager.
func NewService(db *gorm.DB, documents *document.Service, cfg Config) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Service{
		db:        db,
		documents: documents,
		ttl:       cfg.TTL,
		logger:    cfg.Logger.Named("session"),
	}
}

// Create stores a generated draft with deadline = now + TTL.
func (s *Service) Create(ctx context.Context, ownerID string, input models.JSON, draft models.DraftPayload, modelName string) (*models.DraftSession, error) {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize draft payload: %w", err)
	}

	sess := &models.DraftSession{
		OwnerID:      ownerID,
		InputPayload: input,
		DraftPayload: models.JSON(draftJSON),
		ModelName:    modelName,
		ExpiresAt:    time.Now().Add(s.ttl),
	}
	if err := sess.Create(s.db.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("failed to create draft session: %w", err)
	}

	s.logger.Info("created draft session",
		"session_id", sess.ID,
		"owner", ownerID,
		"expires_at", sess.ExpiresAt,
	)
	return sess, nil
}

// Get returns an owned session.
func (s *Service) Get(ctx context.Context, ownerID string, sessionID uuid.UUID) (*models.DraftSession, error) {
	var sess models.DraftSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", sessionID, ownerID).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Confirm materializes the session's draft into a document and consumes
// the session, atomically. Concurrent confirms are serialized by a row
// lock: exactly one caller observes the pending state, the rest get
// ErrAlreadyConsumed. If materialization fails the session stays pending
// and remains confirmable.
func (s *Service) Confirm(ctx context.Context, ownerID string, sessionID uuid.UUID, templateID, title string) (*models.Document, error) {
	if err := validation.Validate(templateID, validation.Required); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	if title == "" {
		title = "My Resume"
	}

	var doc *models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess models.DraftSession
		err := database.LockForUpdate(tx).
			Where("id = ? AND owner_id = ?", sessionID, ownerID).
			First(&sess).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch StateOf(&sess, time.Now()) {
		case StateConfirmed:
			return ErrAlreadyConsumed
		case StateExpired:
			return ErrExpired
		}

		payload, err := document.ParsePayload(sess.DraftPayload)
		if err != nil {
			return err
		}

		doc, err = s.documents.MaterializeIn(tx, document.MaterializeParams{
			OwnerID:    ownerID,
			TemplateID: templateID,
			Title:      title,
			AIModel:    sess.ModelName,
			Prompt:     sess.InputPayload,
			Payload:    payload,
		})
		if err != nil {
			return err
		}

		return tx.Model(&sess).Update("consumed", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("confirmed draft session",
		"session_id", sessionID,
		"document_id", doc.ID,
	)
	return doc, nil
}

// PurgeExpired physically deletes sessions expired for longer than
// olderThan. Intended for a periodic external janitor; correctness of the
// state machine never depends on it.
func (s *Service) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	n, err := models.PurgeExpiredSessions(s.db.WithContext(ctx), cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged expired draft sessions", "count", n)
	}
	return n, nil
}
