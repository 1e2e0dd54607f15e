package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feature types for usage accounting.
type UsageFeature string

const (
	UsageFeatureDraft   UsageFeature = "draft_generation"
	UsageFeatureRewrite UsageFeature = "section_rewrite"
	UsageFeatureOther   UsageFeature = "other"
)

// UsageRecord is a fire-and-forget accounting row for one AI call.
// Recording failures must never fail the primary operation.
type UsageRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	OwnerID string       `gorm:"type:varchar(200);not null;index:idx_usage_records_owner_feature" json:"ownerId"`
	Feature UsageFeature `gorm:"type:varchar(50);not null;index:idx_usage_records_owner_feature" json:"feature"`

	ModelName  string `gorm:"type:varchar(100);not null" json:"modelName"`
	PromptHash string `gorm:"type:varchar(64)" json:"promptHash"`

	TokensIn  int `gorm:"not null;default:0" json:"tokensIn"`
	TokensOut int `gorm:"not null;default:0" json:"tokensOut"`

	Success      bool   `gorm:"not null;default:true" json:"success"`
	ErrorMessage string `gorm:"type:varchar(1000)" json:"errorMessage,omitempty"`
}

// TableName specifies the table name.
func (UsageRecord) TableName() string {
	return "usage_records"
}

// BeforeCreate assigns an ID if not provided.
func (r *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
