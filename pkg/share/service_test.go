package share

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

// TestIssueIdempotent verifies repeated issuance returns the same token
// with an unchanged expiry.
func TestIssueIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()
	resourceID := uuid.New()

	first, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.NotNil(t, first.ExpiresAt)

	second, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.WithinDuration(t, *first.ExpiresAt, *second.ExpiresAt, time.Second)
}

// TestIssueRemintsExpired verifies an expired active link is deactivated
// and a fresh token minted.
func TestIssueRemintsExpired(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()
	resourceID := uuid.New()

	first, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(first).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	second, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.ExpiresAt.After(time.Now()))

	// The old token no longer resolves.
	_, err = svc.Resolve(ctx, first.Token, models.ResourceKindResume)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

// TestRevokeThenReissue verifies revocation is permanent for the old
// token and reissue mints a different one.
func TestRevokeThenReissue(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()
	resourceID := uuid.New()

	first, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "user-1", models.ResourceKindResume, resourceID))

	// Revoking again is a no-op.
	require.NoError(t, svc.Revoke(ctx, "user-1", models.ResourceKindResume, resourceID))

	_, err = svc.Resolve(ctx, first.Token, models.ResourceKindResume)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	second, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, resourceID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The new token resolves, the revoked one still does not.
	_, err = svc.Resolve(ctx, second.Token, models.ResourceKindResume)
	assert.NoError(t, err)
	_, err = svc.Resolve(ctx, first.Token, models.ResourceKindResume)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

// TestResolveStampsAccess verifies successful resolution records the
// access time.
func TestResolveStampsAccess(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	link, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, uuid.New(), nil)
	require.NoError(t, err)
	require.Nil(t, link.LastAccessedAt)

	got, err := svc.Resolve(ctx, link.Token, models.ResourceKindResume)
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessedAt)
	assert.WithinDuration(t, time.Now(), *got.LastAccessedAt, time.Minute)
}

// TestResolveFailuresAreUniform verifies unknown, revoked, expired, and
// wrong-kind tokens are indistinguishable to the caller.
func TestResolveFailuresAreUniform(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	revoked, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, uuid.New(), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, "user-1", models.ResourceKindResume, revoked.ResourceID))

	expired, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, uuid.New(), nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(expired).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	kindMismatch, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, uuid.New(), nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"unknown": "no-such-token",
		"revoked": revoked.Token,
		"expired": expired.Token,
	} {
		_, err := svc.Resolve(ctx, token, models.ResourceKindResume)
		assert.ErrorIs(t, err, ErrLinkNotFound, name)
	}

	_, err = svc.Resolve(ctx, kindMismatch.Token, models.ResourceKindCoverLetter)
	assert.ErrorIs(t, err, ErrLinkNotFound, "kind mismatch")
}

// TestResolveExpiredDeactivates verifies lazy deactivation: once an
// expired token is seen, the row is switched off.
func TestResolveExpiredDeactivates(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})
	ctx := context.Background()

	link, err := svc.Issue(ctx, "user-1", models.ResourceKindResume, uuid.New(), nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(link).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = svc.Resolve(ctx, link.Token, models.ResourceKindResume)
	require.ErrorIs(t, err, ErrLinkNotFound)

	var row models.ShareLink
	require.NoError(t, db.Where("token = ?", link.Token).First(&row).Error)
	assert.False(t, row.Active)
}

// TestIssueExplicitExpiry verifies a caller-supplied expiry is kept
// verbatim.
func TestIssueExplicitExpiry(t *testing.T) {
	db := testDB(t)
	svc := NewService(db, Config{})

	expiry := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	link, err := svc.Issue(context.Background(), "user-1",
		models.ResourceKindResume, uuid.New(), &expiry)
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)
	assert.WithinDuration(t, expiry, *link.ExpiresAt, time.Second)
}

func TestMintTokenLengthAndUniqueness(t *testing.T) {
	a, err := mintToken()
	require.NoError(t, err)
	b, err := mintToken()
	require.NoError(t, err)

	// 32 random bytes, unpadded URL-safe base64.
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
