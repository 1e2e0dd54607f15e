package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DraftSession temporarily holds an AI-generated document graph awaiting
// user confirmation. A session is confirmable exactly once, before its
// deadline; expiry is evaluated lazily at confirm time.
type DraftSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	OwnerID string `gorm:"type:varchar(200);not null;index:idx_draft_sessions_owner_consumed" json:"ownerId"`

	// InputPayload is what the user asked for, kept for auditing.
	InputPayload JSON `gorm:"type:jsonb;not null" json:"inputPayload"`

	// DraftPayload is the normalized candidate document graph.
	DraftPayload JSON `gorm:"type:jsonb;not null" json:"draftPayload"`

	// ModelName records which model produced the draft, carried onto the
	// document at confirmation for provenance.
	ModelName string `gorm:"type:varchar(100)" json:"modelName"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	Consumed  bool      `gorm:"not null;default:false;index:idx_draft_sessions_owner_consumed" json:"consumed"`
}

// TableName specifies the table name.
func (DraftSession) TableName() string {
	return "draft_sessions"
}

// BeforeCreate assigns an ID if not provided.
func (s *DraftSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Create validates and inserts the session.
func (s *DraftSession) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.OwnerID, validation.Required),
		validation.Field(&s.InputPayload, validation.Required),
		validation.Field(&s.DraftPayload, validation.Required),
		validation.Field(&s.ExpiresAt, validation.Required),
	); err != nil {
		return err
	}
	return db.Create(s).Error
}

// IsExpired reports whether the session deadline has passed.
func (s *DraftSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// PurgeExpiredSessions deletes sessions whose deadline passed before the
// cutoff. Housekeeping for an external janitor; state machine correctness
// never depends on it running.
func PurgeExpiredSessions(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("expires_at < ?", cutoff).Delete(&DraftSession{})
	return res.RowsAffected, res.Error
}
