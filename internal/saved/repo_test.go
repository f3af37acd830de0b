package saved

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offersmonkey/internal/offers"
	"offersmonkey/pkg/database"
	"offersmonkey/pkg/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedOffer(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	require.NoError(t, offers.NewRepo(db).Create(context.Background(), models.Offer{
		ID: id, Title: "Offer " + id, Store: "Amazon", Status: "active",
	}))
}

func TestSaveAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	seedOffer(t, db, "o1")
	seedOffer(t, db, "o2")

	require.NoError(t, repo.Save(ctx, "u1", "o1"))
	require.NoError(t, repo.Save(ctx, "u1", "o2"))

	entries, err := repo.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusSaved, entries[0].Status)
}

func TestSaveIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	seedOffer(t, db, "o1")
	require.NoError(t, repo.Save(ctx, "u1", "o1"))
	_, err := repo.MarkRedeemed(ctx, "u1", "o1")
	require.NoError(t, err)

	// saving again must not reset the redeemed status
	require.NoError(t, repo.Save(ctx, "u1", "o1"))

	entries, err := repo.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusRedeemed, entries[0].Status)
}

func TestUnsave(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	seedOffer(t, db, "o1")
	require.NoError(t, repo.Save(ctx, "u1", "o1"))

	removed, err := repo.Unsave(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unsave(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMarkRedeemedRequiresSave(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)

	updated, err := repo.MarkRedeemed(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestListFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	seedOffer(t, db, "o1")
	seedOffer(t, db, "o2")
	require.NoError(t, repo.Save(ctx, "u1", "o1"))
	require.NoError(t, repo.Save(ctx, "u1", "o2"))
	_, err := repo.MarkRedeemed(ctx, "u1", "o2")
	require.NoError(t, err)

	redeemed, err := repo.List(ctx, "u1", StatusRedeemed)
	require.NoError(t, err)
	require.Len(t, redeemed, 1)
	assert.Equal(t, "o2", redeemed[0].OfferID)

	savedOnly, err := repo.List(ctx, "u1", StatusSaved)
	require.NoError(t, err)
	require.Len(t, savedOnly, 1)
	assert.Equal(t, "o1", savedOnly[0].OfferID)
}

func TestListSkipsDeletedOffers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	seedOffer(t, db, "o1")
	require.NoError(t, repo.Save(ctx, "u1", "o1"))

	_, err := offers.NewRepo(db).Delete(ctx, "o1")
	require.NoError(t, err)

	entries, err := repo.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
