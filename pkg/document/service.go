// Package document implements the document graph service: materializing a
// confirmed draft payload into a persisted section graph, deep-duplicating
// an existing graph, and soft-deleting documents. Every write operation is
// one atomic transaction; either the whole graph commits or none of it does.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/models"
)

// ErrNotFound is returned when a document does not exist, is soft-deleted,
// or is not owned by the requesting principal. The reasons are deliberately
// not distinguishable.
var ErrNotFound = errors.New("document: not found")

// Config holds service configuration.
type Config struct {
	Logger hclog.Logger
}

// Service is the document graph service.
type Service struct {
	db     *gorm.DB
	logger hclog.Logger
}

// NewService creates a document graph service.
func NewService(db *gorm.DB, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Service{
		db:     db,
		logger: cfg.Logger.Named("document"),
	}
}

// MaterializeParams describes a draft-to-document materialization.
type MaterializeParams struct {
	OwnerID    string
	TemplateID string
	Title      string
	Language   string
	AIModel    string
	Prompt     models.JSON
	Payload    models.DraftPayload
}

// Materialize creates the full document graph from a draft payload in one
// transaction and returns the fully-formed document.
func (s *Service) Materialize(ctx context.Context, params MaterializeParams) (*models.Document, error) {
	var doc *models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		doc, txErr = s.MaterializeIn(tx, params)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// MaterializeIn runs the materialization inside the caller's transaction.
// The draft session manager uses this so session consumption and graph
// creation commit or roll back together.
func (s *Service) MaterializeIn(tx *gorm.DB, params MaterializeParams) (*models.Document, error) {
	payload := params.Payload

	language := params.Language
	if language == "" {
		language = "en"
	}

	doc := &models.Document{
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		TemplateID:  params.TemplateID,
		Language:    language,
		TargetRole:  payload.PersonalInfo.Headline,
		AIGenerated: true,
		AIModel:     params.AIModel,
		AIPrompt:    params.Prompt,
		Status:      models.DocumentStatusDraft,
	}
	doc.Slug = nextSlug(tx, doc.Title)

	if err := doc.Create(tx); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	PopulateFromPayload(doc, payload)
	if err := createSections(tx, doc); err != nil {
		return nil, fmt.Errorf("failed to create sections: %w", err)
	}

	s.logger.Info("materialized document from draft",
		"document_id", doc.ID,
		"owner", doc.OwnerID,
		"experiences", len(doc.WorkExperiences),
	)
	return doc, nil
}

// Duplicate deep-copies a document into a new one owned by the same
// principal. All child rows get fresh identities; only values are copied,
// never references, so later edits to the copy cannot touch the source.
// The copy always starts in draft status.
func (s *Service) Duplicate(ctx context.Context, ownerID string, documentID uuid.UUID, newTitle string) (*models.Document, error) {
	src, err := models.GetOwnedDocument(s.db.WithContext(ctx), documentID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if newTitle == "" {
		newTitle = fmt.Sprintf("%s (Copy)", src.Title)
	}

	var dup *models.Document
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup = cloneGraph(src)
		dup.Title = newTitle
		dup.Status = models.DocumentStatusDraft
		dup.Slug = nextSlug(tx, newTitle)

		if err := dup.Create(tx); err != nil {
			return fmt.Errorf("failed to create document copy: %w", err)
		}
		if err := createSections(tx, dup); err != nil {
			return fmt.Errorf("failed to copy sections: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("duplicated document",
		"source_id", src.ID,
		"copy_id", dup.ID,
	)
	return dup, nil
}

// Get returns a live, owned document with its full graph.
func (s *Service) Get(ctx context.Context, ownerID string, documentID uuid.UUID) (*models.Document, error) {
	doc, err := models.GetOwnedDocument(s.db.WithContext(ctx), documentID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// SoftDelete marks the deletion timestamp. Child rows stay in place but
// become unreachable through normal queries.
func (s *Service) SoftDelete(ctx context.Context, ownerID string, documentID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", documentID, ownerID).
		Delete(&models.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info("soft-deleted document", "document_id", documentID)
	return nil
}

// Undelete clears the deletion marker of a soft-deleted document.
func (s *Service) Undelete(ctx context.Context, ownerID string, documentID uuid.UUID) error {
	res := s.db.WithContext(ctx).Unscoped().
		Model(&models.Document{}).
		Where("id = ? AND owner_id = ? AND deleted_at IS NOT NULL", documentID, ownerID).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info("restored soft-deleted document", "document_id", documentID)
	return nil
}

// ParsePayload decodes a stored draft payload.
func ParsePayload(raw models.JSON) (models.DraftPayload, error) {
	var payload models.DraftPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("invalid draft payload: %w", err)
	}
	return payload, nil
}
