package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceKind enumerates the document kinds a share link can point at.
type ResourceKind string

const (
	ResourceKindResume      ResourceKind = "resume"
	ResourceKindCoverLetter ResourceKind = "cover_letter"
)

// ShareLink is a capability record granting anonymous read access to one
// document by opaque token. It does not own the document: the public read
// path must independently verify the target still exists and is not
// soft-deleted.
//
// A link past its expiry is semantically revoked even while Active is still
// true; lookups treat it as absent and lazily deactivate it.
type ShareLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	OwnerID string `gorm:"type:varchar(200);not null;index:idx_share_links_resource" json:"ownerId"`

	ResourceKind ResourceKind `gorm:"type:varchar(20);not null;index:idx_share_links_resource" json:"resourceKind"`
	ResourceID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_share_links_resource" json:"resourceId"`

	Token  string `gorm:"type:varchar(100);not null;uniqueIndex" json:"token"`
	Active bool   `gorm:"not null;default:true" json:"active"`

	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
}

// TableName specifies the table name.
func (ShareLink) TableName() string {
	return "share_links"
}

// BeforeCreate assigns an ID if not provided.
func (l *ShareLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Create validates and inserts the link.
func (l *ShareLink) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(l,
		validation.Field(&l.OwnerID, validation.Required),
		validation.Field(&l.ResourceKind, validation.Required, validation.In(
			ResourceKindResume, ResourceKindCoverLetter)),
		validation.Field(&l.ResourceID, validation.Required),
		validation.Field(&l.Token, validation.Required),
	); err != nil {
		return err
	}
	return db.Create(l).Error
}

// IsExpired reports whether the link's expiry has passed.
func (l *ShareLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// Deactivate flags the link inactive without stamping a revocation time.
// Used for lazy expiry cleanup.
func (l *ShareLink) Deactivate(db *gorm.DB) error {
	l.Active = false
	return db.Model(l).Update("active", false).Error
}

// GetActiveLink finds the non-revoked active link for an exact
// (owner, kind, resource) tuple, if one exists.
func GetActiveLink(db *gorm.DB, ownerID string, kind ResourceKind, resourceID uuid.UUID) (*ShareLink, error) {
	var link ShareLink
	err := db.Where(
		"owner_id = ? AND resource_kind = ? AND resource_id = ? AND active = ? AND revoked_at IS NULL",
		ownerID, kind, resourceID, true,
	).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLinkByToken finds a link by token and kind regardless of state.
// State checks (active, expiry) belong to the share service so all denial
// reasons collapse into one outcome.
func GetLinkByToken(db *gorm.DB, token string, kind ResourceKind) (*ShareLink, error) {
	var link ShareLink
	err := db.Where("token = ? AND resource_kind = ?", token, kind).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}
