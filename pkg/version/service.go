// Package version implements document version history: point-in-time
// snapshots of the full section graph, bounded retention, and destructive
// restore. Snapshots are self-contained blobs; higher version numbers are
// always chronologically later and numbers are never reused, so gaps after
// pruning are normal.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/database"
	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/models"
)

// Version errors.
var (
	// ErrDocumentNotFound is returned when the document does not exist,
	// is soft-deleted, or is not owned by the principal.
	ErrDocumentNotFound = errors.New("version: document not found")

	// ErrVersionNotFound is returned when the version does not exist or
	// does not belong to the document.
	ErrVersionNotFound = errors.New("version: not found")
)

// Snapshot is the self-contained serialized form stored per version:
// document scalars plus the identity-free section graph.
type Snapshot struct {
	Title           string                `json:"title"`
	TargetRole      string                `json:"target_role"`
	Language        string                `json:"language"`
	TemplateID      string                `json:"template_id"`
	Status          models.DocumentStatus `json:"status"`
	SectionSettings models.JSON           `json:"section_settings,omitempty"`
	Graph           models.DraftPayload   `json:"graph"`
}

// Config holds service configuration.
type Config struct {
	// RetentionCap is the maximum versions kept per document
	// (default 25). Oldest versions beyond the cap are pruned.
	RetentionCap int
	Logger       hclog.Logger
}

// Service is the version history service.
type Service struct {
	db           *gorm.DB
	retentionCap int
	logger       hclog.Logger
}

// NewService creates a version service.
func NewService(db *gorm.DB, cfg Config) *Service {
	if cfg.RetentionCap == 0 {
		cfg.RetentionCap = 25
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Service{
		db:           db,
		retentionCap: cfg.RetentionCap,
		logger:       cfg.Logger.Named("version"),
	}
}

// Create snapshots the current graph of an owned document. The version
// number is computed and the row inserted inside one transaction, with the
// document row locked, so concurrent snapshots can never assign duplicate
// numbers. Pruning runs only after the snapshot has committed.
func (s *Service) Create(ctx context.Context, ownerID string, documentID uuid.UUID) (*models.DocumentVersion, error) {
	var ver *models.DocumentVersion

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the document row first; this serializes number
		// assignment between concurrent snapshot calls.
		var doc models.Document
		err := database.LockForUpdate(tx).
			Where("id = ? AND owner_id = ?", documentID, ownerID).
			First(&doc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		full, err := models.GetDocument(tx, documentID)
		if err != nil {
			return err
		}

		snap := Snapshot{
			Title:           full.Title,
			TargetRole:      full.TargetRole,
			Language:        full.Language,
			TemplateID:      full.TemplateID,
			Status:          full.Status,
			SectionSettings: full.SectionSettings,
			Graph:           document.PayloadFromGraph(full),
		}
		raw, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to serialize snapshot: %w", err)
		}

		number, err := models.NextVersionNumber(tx, documentID)
		if err != nil {
			return err
		}

		owner := ownerID
		ver = &models.DocumentVersion{
			DocumentID:    documentID,
			VersionNumber: number,
			SnapshotData:  models.JSON(raw),
			CreatedBy:     &owner,
		}
		return tx.Create(ver).Error
	})
	if err != nil {
		return nil, err
	}

	// Prune after the new snapshot is visible, never before; a reader
	// must always see either the pruned versions or the new one.
	if err := s.prune(ctx, documentID); err != nil {
		s.logger.Warn("version pruning failed",
			"document_id", documentID,
			"error", err,
		)
	}

	s.logger.Info("created version snapshot",
		"document_id", documentID,
		"version", ver.VersionNumber,
	)
	return ver, nil
}

// prune deletes the oldest versions beyond the retention cap, by version
// number ascending.
func (s *Service) prune(ctx context.Context, documentID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := models.CountVersionsForDocument(tx, documentID)
		if err != nil {
			return err
		}
		surplus := count - int64(s.retentionCap)
		if surplus <= 0 {
			return nil
		}

		var ids []uuid.UUID
		if err := tx.Model(&models.DocumentVersion{}).
			Where("document_id = ?", documentID).
			Order("version_number ASC").
			Limit(int(surplus)).
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ?", ids).Delete(&models.DocumentVersion{})
		if res.Error != nil {
			return res.Error
		}
		s.logger.Info("pruned old versions",
			"document_id", documentID,
			"count", res.RowsAffected,
		)
		return nil
	})
}

// List returns a document's retained versions, newest first.
func (s *Service) List(ctx context.Context, ownerID string, documentID uuid.UUID) ([]models.DocumentVersion, error) {
	if _, err := models.GetOwnedDocument(s.db.WithContext(ctx), documentID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return models.GetVersionsForDocument(s.db.WithContext(ctx), documentID)
}

// Restore rolls a document back to a snapshot in one atomic unit: scalars
// are overwritten, the personal-info singleton is replaced in place, and
// every other section collection is deleted and recreated from the
// snapshot. Full replace, never a diff; snapshots are schema-stable blobs
// and incremental merge would need field-level comparability the blob does
// not promise.
func (s *Service) Restore(ctx context.Context, ownerID string, documentID, versionID uuid.UUID) (*models.Document, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ver models.DocumentVersion
		err := tx.Where("id = ? AND document_id = ?", versionID, documentID).
			First(&ver).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionNotFound
			}
			return err
		}

		var doc models.Document
		err = database.LockForUpdate(tx).
			Where("id = ? AND owner_id = ?", documentID, ownerID).
			First(&doc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		var snap Snapshot
		if err := json.Unmarshal(ver.SnapshotData, &snap); err != nil {
			return fmt.Errorf("corrupt snapshot data: %w", err)
		}

		updates := map[string]interface{}{
			"title":            snap.Title,
			"target_role":      snap.TargetRole,
			"language":         snap.Language,
			"template_id":      snap.TemplateID,
			"status":           snap.Status,
			"section_settings": snap.SectionSettings,
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return err
		}

		document.PopulateFromPayload(&doc, snap.Graph)
		if err := document.ReplaceSectionsIn(tx, &doc); err != nil {
			return err
		}

		s.logger.Info("restored document version",
			"document_id", documentID,
			"version", ver.VersionNumber,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return models.GetDocument(s.db.WithContext(ctx), documentID)
}
