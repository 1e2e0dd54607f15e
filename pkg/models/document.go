package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentStatus is the lifecycle status of a document.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPublished DocumentStatus = "published"
	DocumentStatusArchived  DocumentStatus = "archived"
)

// Document is the aggregate root for a resume. It owns an ordered collection
// of heterogeneous sections (personal info singleton, work experiences,
// educations, skill categories with nested items, strengths, hobbies and
// custom sections with nested items), all cascade-deleted with the document.
//
// A soft-deleted document (non-null DeletedAt) is invisible to all normal
// reads and to public sharing, but its rows remain until a hard purge.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// OwnerID is the opaque identifier of the owning principal.
	// Authentication is handled outside this service.
	OwnerID string `gorm:"type:varchar(200);not null;index:idx_documents_owner_status" json:"ownerId"`

	Title string `gorm:"type:varchar(200);not null" json:"title"`
	Slug  string `gorm:"type:varchar(220);uniqueIndex" json:"slug"`

	// TemplateID references a presentation template (e.g. "classic-1").
	// The template catalog itself lives outside this service.
	TemplateID string `gorm:"type:varchar(50);not null;default:'classic-1'" json:"templateId"`

	Language   string `gorm:"type:varchar(10);not null;default:'en'" json:"language"`
	TargetRole string `gorm:"type:varchar(200)" json:"targetRole"`

	// SectionSettings holds user overrides for section ordering/visibility.
	SectionSettings JSON `gorm:"type:jsonb" json:"sectionSettings,omitempty"`

	// AI provenance. Never exposed through the public share projection.
	AIGenerated bool   `json:"aiGenerated"`
	AIModel     string `gorm:"type:varchar(100)" json:"aiModel,omitempty"`
	AIPrompt    JSON   `gorm:"type:jsonb" json:"aiPrompt,omitempty"`

	Status DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index:idx_documents_owner_status" json:"status"`

	LastEditedAt time.Time      `json:"lastEditedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	PersonalInfo    *PersonalInfo    `json:"personalInfo,omitempty"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Educations      []Education      `json:"educations"`
	SkillCategories []SkillCategory  `json:"skillCategories"`
	Strengths       []Strength       `json:"strengths"`
	Hobbies         []Hobby          `json:"hobbies"`
	CustomSections  []CustomSection  `json:"customSections"`
}

// TableName specifies the table name.
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate assigns an ID and stamps last-edited time.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.LastEditedAt.IsZero() {
		d.LastEditedAt = time.Now()
	}
	return nil
}

// Validate checks required fields before a write.
func (d *Document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.OwnerID, validation.Required),
		validation.Field(&d.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.TemplateID, validation.Required),
		validation.Field(&d.Status, validation.Required, validation.In(
			DocumentStatusDraft, DocumentStatusPublished, DocumentStatusArchived)),
	)
}

// Create inserts the document row only. Owned sections are created
// explicitly by the graph service so sequence orders stay deterministic.
func (d *Document) Create(db *gorm.DB) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.Omit(clause.Associations).Create(d).Error
}

// PreloadGraph returns a query that preloads the full owned section graph
// in stable sequence order.
func PreloadGraph(db *gorm.DB) *gorm.DB {
	ordered := func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}
	return db.
		Preload("PersonalInfo").
		Preload("WorkExperiences", ordered).
		Preload("Educations", ordered).
		Preload("SkillCategories", ordered).
		Preload("SkillCategories.Items", ordered).
		Preload("Strengths", ordered).
		Preload("Hobbies", ordered).
		Preload("CustomSections", ordered).
		Preload("CustomSections.Items", ordered)
}

// GetDocument retrieves a live (not soft-deleted) document with its full
// section graph.
func GetDocument(db *gorm.DB, id uuid.UUID) (*Document, error) {
	var doc Document
	if err := PreloadGraph(db).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetOwnedDocument retrieves a live document only if it belongs to the
// given principal.
func GetOwnedDocument(db *gorm.DB, id uuid.UUID, ownerID string) (*Document, error) {
	var doc Document
	err := PreloadGraph(db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentExists reports whether a live document with the given ID exists.
// Used by the public share path to verify the target before exposing data.
func DocumentExists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Document{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// PersonalInfo is the singleton identity block of a document.
type PersonalInfo struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`

	FirstName string `gorm:"type:varchar(100)" json:"firstName"`
	LastName  string `gorm:"type:varchar(100)" json:"lastName"`
	Headline  string `gorm:"type:varchar(200)" json:"headline"`
	Summary   string `gorm:"type:text" json:"summary"`

	Email   string `gorm:"type:varchar(254)" json:"email"`
	Phone   string `gorm:"type:varchar(50)" json:"phone"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	Country string `gorm:"type:varchar(100)" json:"country"`

	Website      string `gorm:"type:varchar(500)" json:"website"`
	LinkedInURL  string `gorm:"type:varchar(500)" json:"linkedinUrl"`
	GitHubURL    string `gorm:"type:varchar(500)" json:"githubUrl"`
	PortfolioURL string `gorm:"type:varchar(500)" json:"portfolioUrl"`

	PhotoURL string `gorm:"type:varchar(500)" json:"photoUrl"`
}

// TableName specifies the table name.
func (PersonalInfo) TableName() string {
	return "personal_infos"
}
