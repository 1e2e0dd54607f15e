// Package share issues, revokes and resolves opaque public-access tokens.
// Resolution collapses every denial reason (never existed, revoked,
// expired) into one not-found outcome so link history cannot be probed.
package share

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/models"
)

// ErrLinkNotFound is the single resolution failure. Callers cannot
// distinguish a token that never existed from one that was revoked or
// expired.
var ErrLinkNotFound = errors.New("share: link not found")

// tokenBytes is the entropy of a minted token; 32 bytes gives a 43-char
// URL-safe string.
const tokenBytes = 32

// Config holds service configuration.
type Config struct {
	// DefaultTTL is applied when issuance gives no explicit expiry
	// (default 30 days).
	DefaultTTL time.Duration
	Logger     hclog.Logger
}

// Service is the share link service.
type Service struct {
	db         *gorm.DB
	defaultTTL time.Duration
	logger     hclog.Logger
}

// NewService creates a share link service.
func NewService(db *gorm.DB, cfg Config) *Service {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 30 * 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Service{
		db:         db,
		defaultTTL: cfg.DefaultTTL,
		logger:     cfg.Logger.Named("share"),
	}
}

// Issue returns the existing active, unexpired link for the tuple
// unchanged (idempotent issuance), or mints a new token. An existing link
// past its expiry is deactivated first and a fresh token minted; expiry is
// never silently extended.
func (s *Service) Issue(ctx context.Context, ownerID string, kind models.ResourceKind, resourceID uuid.UUID, expiresAt *time.Time) (*models.ShareLink, error) {
	var link *models.ShareLink

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := models.GetActiveLink(tx, ownerID, kind, resourceID)
		switch {
		case err == nil:
			if !existing.IsExpired(time.Now()) {
				link = existing
				return nil
			}
			if err := existing.Deactivate(tx); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No active link, mint below.
		default:
			return err
		}

		token, err := mintToken()
		if err != nil {
			return err
		}

		expiry := expiresAt
		if expiry == nil {
			t := time.Now().Add(s.defaultTTL)
			expiry = &t
		}

		link = &models.ShareLink{
			OwnerID:      ownerID,
			ResourceKind: kind,
			ResourceID:   resourceID,
			Token:        token,
			Active:       true,
			ExpiresAt:    expiry,
		}
		return link.Create(tx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("issued share link",
		"resource_kind", kind,
		"resource_id", resourceID,
	)
	return link, nil
}

// Revoke deactivates every currently-active link for the tuple, stamping
// revocation time. Idempotent when nothing is active.
func (s *Service) Revoke(ctx context.Context, ownerID string, kind models.ResourceKind, resourceID uuid.UUID) error {
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.ShareLink{}).
		Where("owner_id = ? AND resource_kind = ? AND resource_id = ? AND active = ?",
			ownerID, kind, resourceID, true).
		Updates(map[string]interface{}{
			"active":     false,
			"revoked_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.logger.Info("revoked share links",
			"resource_kind", kind,
			"resource_id", resourceID,
			"count", res.RowsAffected,
		)
	}
	return nil
}

// Resolve looks up a token for anonymous access. On success it stamps the
// last-accessed time. It vouches only for token validity; callers must
// still verify the target resource exists and is not deleted.
func (s *Service) Resolve(ctx context.Context, token string, kind models.ResourceKind) (*models.ShareLink, error) {
	db := s.db.WithContext(ctx)

	link, err := models.GetLinkByToken(db, token, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if !link.Active {
		return nil, ErrLinkNotFound
	}

	if link.IsExpired(time.Now()) {
		// Lazy deactivation; the link was already semantically revoked
		// the moment it expired.
		if err := link.Deactivate(db); err != nil {
			s.logger.Warn("failed to deactivate expired link", "error", err)
		}
		return nil, ErrLinkNotFound
	}

	now := time.Now()
	link.LastAccessedAt = &now
	if err := db.Model(link).Update("last_accessed_at", now).Error; err != nil {
		return nil, err
	}

	return link, nil
}

// mintToken returns a cryptographically unguessable URL-safe token.
func mintToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
