package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentVersion is an immutable snapshot of a document's full section
// graph at a point in time. Version numbers increase monotonically per
// document and are never reused, even after pruning; gaps are therefore
// normal once old versions have been pruned.
type DocumentVersion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	DocumentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_versions_number" json:"documentId"`
	VersionNumber int       `gorm:"not null;uniqueIndex:idx_document_versions_number" json:"versionNumber"`

	// SnapshotData is the self-contained serialized graph. It never
	// references live rows by id, so restore needs no cross-table joins.
	SnapshotData JSON `gorm:"type:jsonb;not null" json:"snapshotData"`

	// CreatedBy is nullable so snapshots survive principal deletion.
	CreatedBy *string `gorm:"type:varchar(200)" json:"createdBy,omitempty"`
}

// TableName specifies the table name.
func (DocumentVersion) TableName() string {
	return "document_versions"
}

// BeforeCreate assigns an ID if not provided.
func (v *DocumentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NextVersionNumber computes max existing + 1 for a document. Must run
// inside the same transaction as the insert so concurrent snapshots cannot
// assign duplicate numbers.
func NextVersionNumber(tx *gorm.DB, documentID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&DocumentVersion{}).
		Where("document_id = ?", documentID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// GetVersionsForDocument lists versions newest-first.
func GetVersionsForDocument(db *gorm.DB, documentID uuid.UUID) ([]DocumentVersion, error) {
	var versions []DocumentVersion
	err := db.Where("document_id = ?", documentID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

// CountVersionsForDocument returns the retained version count.
func CountVersionsForDocument(db *gorm.DB, documentID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&DocumentVersion{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}
