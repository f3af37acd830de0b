package reviews

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offersmonkey/pkg/database"
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

func TestCreateAndGet(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	review, err := repo.Create(ctx, "u1", "o1", 4, "good deal")
	require.NoError(t, err)
	require.NotNil(t, review)

	assert.Equal(t, "u1", review.UserID)
	assert.Equal(t, "o1", review.OfferID)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "good deal", review.Text)
	assert.False(t, review.At.IsZero())
}

func TestListByOffer(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, "u1", "o1", 5, "")
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, "u1", "o2", 1, "")
	require.NoError(t, err)

	items, err := repo.ListByOffer(ctx, "o1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = repo.ListByOffer(ctx, "o1", 2, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAverageRating(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	avg, count, err := repo.AverageRating(ctx, "o1")
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)

	_, err = repo.Create(ctx, "u1", "o1", 2, "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u2", "o1", 4, "")
	require.NoError(t, err)

	avg, count, err = repo.AverageRating(ctx, "o1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 0.001)
	assert.Equal(t, 2, count)
}

func TestDeleteOwnReviewOnly(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	review, err := repo.Create(ctx, "u1", "o1", 3, "")
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, review.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, review.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
