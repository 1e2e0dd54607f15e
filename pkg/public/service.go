// Package public serves the anonymous share read surface. A valid token
// yields a sanitized projection of the shared document; every denial
// reason is a single not-found so token probing learns nothing.
package public

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/models"
	"github.com/quillworks/quill/pkg/share"
)

// ErrNotFound covers every public access failure: unknown token, revoked
// or expired link, and a missing or deleted target document.
var ErrNotFound = errors.New("public: not found")

// View is the sanitized projection of a shared document. It carries no
// owner identity, no AI provenance, no lifecycle status, and no row
// identities.
type View struct {
	Kind            models.ResourceKind `json:"kind"`
	Title           string              `json:"title"`
	TemplateID      string              `json:"templateId"`
	Language        string              `json:"language"`
	TargetRole      string              `json:"targetRole,omitempty"`
	SectionSettings models.JSON         `json:"sectionSettings,omitempty"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	Graph           models.DraftPayload `json:"graph"`
}

// Config holds configuration for the public read service.
type Config struct {
	Logger hclog.Logger
}

// Service resolves share tokens into sanitized document views.
type Service struct {
	db     *gorm.DB
	shares *share.Service
	logger hclog.Logger
}

// NewService creates a public read service.
func NewService(db *gorm.DB, shares *share.Service, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Service{
		db:     db,
		shares: shares,
		logger: cfg.Logger.Named("public"),
	}
}

// View resolves a token and returns the shared document's projection.
func (s *Service) View(ctx context.Context, token string, kind models.ResourceKind) (*View, error) {
	link, err := s.shares.Resolve(ctx, token, kind)
	if err != nil {
		if errors.Is(err, share.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc, err := models.GetDocument(s.db.WithContext(ctx), link.ResourceID)
	if err != nil {
		// A live link to a deleted or purged document reads the same as
		// no link at all.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("active share link points at missing document",
				"resource_id", link.ResourceID)
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &View{
		Kind:            link.ResourceKind,
		Title:           doc.Title,
		TemplateID:      doc.TemplateID,
		Language:        doc.Language,
		TargetRole:      doc.TargetRole,
		SectionSettings: doc.SectionSettings,
		UpdatedAt:       doc.LastEditedAt,
		Graph:           document.PayloadFromGraph(doc),
	}, nil
}
