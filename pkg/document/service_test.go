package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quillworks/quill/pkg/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))
	return db
}

func samplePayload() models.DraftPayload {
	return models.DraftPayload{
		PersonalInfo: models.DraftPersonalInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Headline:  "Backend Engineer",
			Email:     "ada@example.com",
			City:      "London",
			Country:   "UK",
			Summary:   "Engineer with a focus on distributed systems.",
		},
		WorkExperience: []models.DraftExperience{
			{
				PositionTitle: "Senior Engineer",
				CompanyName:   "Analytical Engines Ltd",
				StartDate:     "2021-03",
				Current:       true,
				Bullets:       []string{"Led the migration to event sourcing", "Cut p99 latency by 40%"},
			},
			{
				PositionTitle: "Engineer",
				CompanyName:   "Difference Works",
				StartDate:     "2018-01",
				EndDate:       "2021-02",
				Bullets:       []string{"Built the billing pipeline"},
			},
		},
		Education: []models.DraftEducation{
			{
				Degree:       "BSc",
				FieldOfStudy: "Mathematics",
				SchoolName:   "University of London",
				StartDate:    "2014",
				EndDate:      "2017",
			},
		},
		SkillCategories: []models.DraftSkillCategory{
			{
				Name: "Languages",
				Items: []models.DraftSkillItem{
					{Name: "Go", Level: "expert"},
					{Name: "SQL", Level: "professional"},
				},
			},
		},
		Strengths: []string{"Problem solving", "Mentoring"},
		Hobbies:   []string{"Chess"},
		CustomSections: []models.DraftCustomSection{
			{
				Type:  "projects",
				Title: "Projects",
				Items: []models.DraftCustomItem{
					{Title: "Compiler", Description: "A toy compiler for a stack language"},
				},
			},
		},
	}
}

// TestMaterialize verifies a draft payload becomes a complete document
// graph with the expected scalars.
func TestMaterialize(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})

	doc, err := svc.Materialize(context.Background(), MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		AIModel:    "gpt-4o",
		Payload:    samplePayload(),
	})
	require.NoError(t, err)

	assert.Equal(t, "My Resume", doc.Title)
	assert.Equal(t, "my-resume", doc.Slug)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.Equal(t, "Backend Engineer", doc.TargetRole)
	assert.True(t, doc.AIGenerated)

	// Reload through the normal read path and check the full graph.
	got, err := svc.Get(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PersonalInfo)
	assert.Equal(t, "Ada", got.PersonalInfo.FirstName)
	assert.Len(t, got.WorkExperiences, 2)
	assert.Len(t, got.Educations, 1)
	require.Len(t, got.SkillCategories, 1)
	assert.Len(t, got.SkillCategories[0].Items, 2)
	assert.Len(t, got.Strengths, 2)
	assert.Len(t, got.Hobbies, 1)
	require.Len(t, got.CustomSections, 1)
	assert.Len(t, got.CustomSections[0].Items, 1)

	// Ordering is assigned from payload position.
	assert.Equal(t, "Senior Engineer", got.WorkExperiences[0].PositionTitle)
	assert.Equal(t, "Engineer", got.WorkExperiences[1].PositionTitle)
}

// TestMaterializeSlugUniqueness verifies repeated titles get suffixed
// slugs.
func TestMaterializeSlugUniqueness(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})

	params := MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload:    samplePayload(),
	}

	first, err := svc.Materialize(context.Background(), params)
	require.NoError(t, err)
	second, err := svc.Materialize(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "my-resume", first.Slug)
	assert.Equal(t, "my-resume-1", second.Slug)
}

// TestDuplicateIndependence verifies a duplicate shares no rows with its
// source: edits to the copy leave the source untouched.
func TestDuplicateIndependence(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	src, err := svc.Materialize(ctx, MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload:    samplePayload(),
	})
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, "user-1", src.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "My Resume (Copy)", dup.Title)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.NotEqual(t, src.Slug, dup.Slug)
	assert.Equal(t, models.DocumentStatusDraft, dup.Status)

	// No child row is shared.
	require.Len(t, dup.WorkExperiences, 2)
	for i := range dup.WorkExperiences {
		assert.NotEqual(t, src.WorkExperiences[i].ID, dup.WorkExperiences[i].ID)
	}
	require.NotNil(t, dup.PersonalInfo)
	assert.NotEqual(t, src.PersonalInfo.ID, dup.PersonalInfo.ID)

	// Mutating the copy leaves the source untouched.
	require.NoError(t, db.Model(&dup.WorkExperiences[0]).
		Update("position_title", "Changed").Error)

	srcAgain, err := svc.Get(ctx, "user-1", src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", srcAgain.WorkExperiences[0].PositionTitle)
}

// TestDuplicateRequiresOwnership verifies another principal's document
// cannot be duplicated.
func TestDuplicateRequiresOwnership(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	src, err := svc.Materialize(ctx, MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload:    samplePayload(),
	})
	require.NoError(t, err)

	_, err = svc.Duplicate(ctx, "user-2", src.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestSoftDeleteAndUndelete verifies deletion hides the document from
// reads and undelete brings it back with its graph intact.
func TestSoftDeleteAndUndelete(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	doc, err := svc.Materialize(ctx, MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload:    samplePayload(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, "user-1", doc.ID))

	_, err = svc.Get(ctx, "user-1", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again reads as not found.
	assert.ErrorIs(t, svc.SoftDelete(ctx, "user-1", doc.ID), ErrNotFound)

	require.NoError(t, svc.Undelete(ctx, "user-1", doc.ID))

	got, err := svc.Get(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	assert.Len(t, got.WorkExperiences, 2)
}

// TestPayloadRoundTrip verifies the graph-to-payload projection inverts
// materialization.
func TestPayloadRoundTrip(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})

	payload := samplePayload()
	doc, err := svc.Materialize(context.Background(), MaterializeParams{
		OwnerID:    "user-1",
		TemplateID: "classic-1",
		Title:      "My Resume",
		Payload:    payload,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "user-1", doc.ID)
	require.NoError(t, err)

	out := PayloadFromGraph(got)
	assert.Equal(t, payload.PersonalInfo.FirstName, out.PersonalInfo.FirstName)
	require.Len(t, out.WorkExperience, 2)
	assert.Equal(t, payload.WorkExperience[0].Bullets, out.WorkExperience[0].Bullets)
	assert.True(t, out.WorkExperience[0].Current)
	require.Len(t, out.SkillCategories, 1)
	assert.Equal(t, "expert", out.SkillCategories[0].Items[0].Level)
	assert.Equal(t, payload.Strengths, out.Strengths)
	assert.Equal(t, payload.Hobbies, out.Hobbies)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-resume", slugify("My Resume"))
	assert.Equal(t, "bsc-math-2024", slugify("BSc  Math -- 2024!"))
	assert.Equal(t, "document", slugify("???"))
}
