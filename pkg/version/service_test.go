package version

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))
	return db
}

func testDocument(t *testing.T, db *gorm.DB) *models.Document {
	t.Helper()
	documents := document.NewService(db, document.Config{})
	doc, err := documents.Materialize(context.Background(), document.MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload: models.DraftPayload{
			PersonalInfo: models.DraftPersonalInfo{
				FirstName: "Ada",
				LastName:  "Lovelace",
				Headline:  "Backend Engineer",
			},
			WorkExperience: []models.DraftExperience{
				{
					PositionTitle: "Engineer",
					CompanyName:   "Analytical Engines Ltd",
					StartDate:     "2021-03",
					Current:       true,
					Bullets:       []string{"Shipped things"},
				},
			},
			Strengths: []string{"Focus", "Rigor"},
		},
	})
	require.NoError(t, err)
	return doc
}

// TestCreateAssignsSequentialNumbers verifies per-document numbering
// starts at 1 and never repeats.
func TestCreateAssignsSequentialNumbers(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)
	other := testDocument(t, db)

	for want := 1; want <= 3; want++ {
		ver, err := svc.Create(ctx, "user-1", doc.ID)
		require.NoError(t, err)
		assert.Equal(t, want, ver.VersionNumber)
	}

	// Numbering is per document.
	ver, err := svc.Create(ctx, "user-1", other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, ver.VersionNumber)
}

// TestCreateSnapshotIsSelfContained verifies snapshot data carries the
// full graph and no row identities.
func TestCreateSnapshotIsSelfContained(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)

	ver, err := svc.Create(ctx, "user-1", doc.ID)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(ver.SnapshotData, &snap))
	assert.Equal(t, "My Resume", snap.Title)
	assert.Equal(t, "classic-1", snap.TemplateID)
	assert.Equal(t, "Ada", snap.Graph.PersonalInfo.FirstName)
	require.Len(t, snap.Graph.WorkExperience, 1)
	assert.Equal(t, []string{"Shipped things"}, snap.Graph.WorkExperience[0].Bullets)

	// The serialized blob never mentions row identities.
	assert.NotContains(t, string(ver.SnapshotData), doc.WorkExperiences[0].ID.String())
}

// TestRetentionCap verifies only the newest cap versions survive a burst
// of snapshots.
func TestRetentionCap(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)

	for i := 0; i < 30; i++ {
		_, err := svc.Create(ctx, "user-1", doc.ID)
		require.NoError(t, err)
	}

	versions, err := svc.List(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 25)

	// The newest 25 survive, numbering intact and duplicate-free.
	seen := map[int]bool{}
	for _, v := range versions {
		assert.Greater(t, v.VersionNumber, 5)
		assert.LessOrEqual(t, v.VersionNumber, 30)
		assert.False(t, seen[v.VersionNumber], "duplicate version number")
		seen[v.VersionNumber] = true
	}
}

// TestRestore verifies rollback to a snapshot replaces scalars and the
// whole section graph.
func TestRestore(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)

	ver, err := svc.Create(ctx, "user-1", doc.ID)
	require.NoError(t, err)

	// Mutate the document heavily after the snapshot.
	require.NoError(t, db.Model(doc).Updates(map[string]interface{}{
		"title":       "Renamed",
		"target_role": "Frontend Engineer",
	}).Error)
	require.NoError(t, db.Where("document_id = ?", doc.ID).
		Delete(&models.WorkExperience{}).Error)
	require.NoError(t, db.Create(&models.Strength{
		DocumentID: doc.ID,
		Label:      "Improvisation",
		Order:      99,
	}).Error)

	restored, err := svc.Restore(ctx, "user-1", doc.ID, ver.ID)
	require.NoError(t, err)

	assert.Equal(t, "My Resume", restored.Title)
	assert.Equal(t, "Backend Engineer", restored.TargetRole)
	require.Len(t, restored.WorkExperiences, 1)
	assert.Equal(t, "Engineer", restored.WorkExperiences[0].PositionTitle)
	require.Len(t, restored.Strengths, 2)

	// Restored child rows carry fresh identities.
	assert.NotEqual(t, doc.WorkExperiences[0].ID, restored.WorkExperiences[0].ID)

	// The document itself keeps its identity.
	assert.Equal(t, doc.ID, restored.ID)

	// Round-trip equality with the snapshot graph.
	var snap Snapshot
	require.NoError(t, json.Unmarshal(ver.SnapshotData, &snap))
	got := document.PayloadFromGraph(restored)
	assert.Equal(t, snap.Graph.PersonalInfo, got.PersonalInfo)
	assert.Equal(t, snap.Graph.Strengths, got.Strengths)
}

// TestRestoreUnknownVersion verifies a version of another document cannot
// be restored.
func TestRestoreUnknownVersion(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)
	other := testDocument(t, db)

	ver, err := svc.Create(ctx, "user-1", other.ID)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, "user-1", doc.ID, ver.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

// TestListNewestFirst verifies version listing order.
func TestListNewestFirst(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc := testDocument(t, db)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "user-1", doc.ID)
		require.NoError(t, err)
	}

	versions, err := svc.List(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, 3-i, v.VersionNumber, fmt.Sprintf("position %d", i))
	}
}

// TestCreateRequiresOwnership verifies snapshots of foreign documents are
// refused.
func TestCreateRequiresOwnership(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})

	doc := testDocument(t, db)

	_, err := svc.Create(context.Background(), "user-2", doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
