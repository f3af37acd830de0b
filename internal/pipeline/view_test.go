package pipeline

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offersmonkey/internal/cache"
	"offersmonkey/internal/categories"
	"offersmonkey/internal/offers"
	"offersmonkey/internal/prefs"
	"offersmonkey/pkg/database"
	"offersmonkey/pkg/models"
)

func setupEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Open(database.Config{
		Path: filepath.Join(dir, "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	store, err := cache.NewFileStore(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	deps := Deps{
		Cache:      cache.New(store, time.Hour),
		Offers:     offers.NewRepo(db),
		Prefs:      prefs.NewRepo(db),
		Categories: categories.NewRepo(db),
	}
	return NewEngine(deps), db
}

func seedOffer(t *testing.T, db *sql.DB, id, title, store, cats string) {
	t.Helper()
	repo := offers.NewRepo(db)
	require.NoError(t, repo.Create(context.Background(), models.Offer{
		ID:         id,
		Title:      title,
		Store:      store,
		Categories: cats,
		Status:     "active",
	}))
}

func TestCurrentServesSampleWhenDatabaseEmpty(t *testing.T) {
	engine, _ := setupEngine(t)

	snap, err := engine.ViewFor("u1").Current(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.UsingSample)
	assert.NotEmpty(t, snap.Offers)
	assert.NotEmpty(t, snap.Categories)
}

func TestCurrentFiltersByPreferences(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	seedOffer(t, db, "o1", "Deal one", "Amazon", "Electronics")
	seedOffer(t, db, "o2", "Deal two", "Myntra", "Fashion")

	require.NoError(t, prefs.NewRepo(db).Add(ctx, "u1", models.PreferenceStore, "Amazon"))

	snap, err := engine.ViewFor("u1").Current(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Offers, 1)
	assert.Equal(t, "o1", snap.Offers[0].ID)
	assert.False(t, snap.Fallback)
	assert.False(t, snap.UsingSample)
	assert.Equal(t, 2, snap.TotalOffers)
}

func TestFallbackWhenPreferencesMatchNothing(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	seedOffer(t, db, "o1", "Deal one", "Amazon", "Electronics")
	seedOffer(t, db, "o2", "Deal two", "Myntra", "Fashion")

	require.NoError(t, prefs.NewRepo(db).Add(ctx, "u1", models.PreferenceStore, "Croma"))

	snap, err := engine.ViewFor("u1").Current(ctx)
	require.NoError(t, err)

	assert.Len(t, snap.Offers, 2)
	assert.True(t, snap.Fallback)
}

func TestCachedSnapshotServedUntilRefresh(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	seedOffer(t, db, "o1", "Deal one", "Amazon", "Electronics")

	v := engine.ViewFor("u1")
	snap, err := v.Current(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Offers, 1)

	// a new row does not appear until something refreshes the view
	seedOffer(t, db, "o2", "Deal two", "Amazon", "Electronics")

	snap, err = v.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Offers, 1)

	v.Refresh()
	assert.Eventually(t, func() bool {
		cur, err := v.Current(context.Background())
		return err == nil && len(cur.Offers) == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestApplyDiscardsStaleRebuild(t *testing.T) {
	v := newView("u1", Deps{})

	fresh := Snapshot{TotalOffers: 2}
	stale := Snapshot{TotalOffers: 1}

	v.apply(2, fresh)
	v.apply(1, stale)

	v.mu.Lock()
	defer v.mu.Unlock()
	assert.Equal(t, 2, v.cur.TotalOffers)
	assert.Equal(t, uint64(2), v.applied)
}

func TestRefreshCoalesces(t *testing.T) {
	engine, db := setupEngine(t)
	seedOffer(t, db, "o1", "Deal one", "Amazon", "Electronics")

	v := engine.ViewFor("u1")
	for i := 0; i < 20; i++ {
		v.Refresh()
	}

	assert.Eventually(t, func() bool {
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.ready && !v.inflight && !v.pending
	}, 5*time.Second, 10*time.Millisecond)
}

func TestInvalidateUserPicksUpPreferenceChange(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()

	seedOffer(t, db, "o1", "Deal one", "Amazon", "Electronics")
	seedOffer(t, db, "o2", "Deal two", "Myntra", "Fashion")

	v := engine.ViewFor("u1")
	snap, err := v.Current(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Offers, 2)

	require.NoError(t, prefs.NewRepo(db).Add(ctx, "u1", models.PreferenceStore, "Myntra"))
	engine.InvalidateUser("u1")

	assert.Eventually(t, func() bool {
		cur, err := v.Current(context.Background())
		return err == nil && len(cur.Offers) == 1 && cur.Offers[0].ID == "o2"
	}, 5*time.Second, 10*time.Millisecond)
}
