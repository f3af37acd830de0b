package prefs

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestLoadEmpty(t *testing.T) {
	repo := NewRepo(setupTestDB(t))

	p, err := repo.Load(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, p.IsEmpty())
	assert.NotNil(t, p.Stores)
	assert.NotNil(t, p.Brands)
	assert.NotNil(t, p.Banks)
}

func TestAddAndLoad(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Amazon"))
	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Flipkart"))
	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceBrand, "Nike"))
	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceBank, "HDFC"))

	p, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon", "Flipkart"}, p.Stores)
	assert.Equal(t, []string{"Nike"}, p.Brands)
	assert.Equal(t, []string{"HDFC"}, p.Banks)
}

func TestAddIdempotent(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Amazon"))
	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Amazon"))

	p, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon"}, p.Stores)
}

func TestAddRejectsBadInput(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	assert.Error(t, repo.Add(ctx, "u1", "color", "red"))
	assert.Error(t, repo.Add(ctx, "u1", models.PreferenceStore, "  "))
}

func TestRemove(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceBrand, "Nike"))

	removed, err := repo.Remove(ctx, "u1", models.PreferenceBrand, "Nike")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "u1", models.PreferenceBrand, "Nike")
	require.NoError(t, err)
	assert.False(t, removed)

	p, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestReplace(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Myntra"))

	err := repo.Replace(ctx, "u1", models.Preferences{
		Stores: []string{"Amazon", "", "Amazon"},
		Banks:  []string{"ICICI"},
	})
	require.NoError(t, err)

	p, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon"}, p.Stores)
	assert.Empty(t, p.Brands)
	assert.Equal(t, []string{"ICICI"}, p.Banks)
}

func TestClear(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Amazon"))
	require.NoError(t, repo.Add(ctx, "u2", models.PreferenceStore, "Amazon"))

	require.NoError(t, repo.Clear(ctx, "u1"))

	p1, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p1.IsEmpty())

	p2, err := repo.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon"}, p2.Stores)
}

func TestUsersIsolated(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1", models.PreferenceStore, "Amazon"))
	require.NoError(t, repo.Add(ctx, "u2", models.PreferenceBrand, "Adidas"))

	p1, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazon"}, p1.Stores)
	assert.Empty(t, p1.Brands)
}
