package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *FileStore) {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return New(store, time.Hour), store
}

func TestRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, []string{"a", "b"})

	var got []string
	require.True(t, c.GetJSON(ctx, KeyOffers, &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	var got []string
	assert.False(t, c.GetJSON(context.Background(), "nope", &got))
}

func TestExpiryOnRead(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, []string{"a"})

	// jump past the TTL; entries go stale on read, not via a sweeper
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	var got []string
	assert.False(t, c.GetJSON(ctx, KeyOffers, &got))
}

func TestFreshJustInsideTTL(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, []string{"a"})
	c.now = func() time.Time { return time.Now().Add(59 * time.Minute) }

	var got []string
	assert.True(t, c.GetJSON(ctx, KeyOffers, &got))
}

func TestOverwriteRefreshesTimestamp(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, []string{"old"})

	base := time.Now().Add(50 * time.Minute)
	c.now = func() time.Time { return base }
	c.PutJSON(ctx, KeyOffers, []string{"new"})

	c.now = func() time.Time { return base.Add(30 * time.Minute) }

	var got []string
	require.True(t, c.GetJSON(ctx, KeyOffers, &got))
	assert.Equal(t, []string{"new"}, got)
}

func TestCorruptFileReadsAsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	c := New(store, time.Hour)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, []string{"a"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{garbage"), 0o644))

	var got []string
	assert.False(t, c.GetJSON(ctx, KeyOffers, &got))
}

func TestDecodeMismatchReadsAsMiss(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyOffers, "just a string")

	var got []int
	assert.False(t, c.GetJSON(ctx, KeyOffers, &got))
}

func TestPerUserKeysIndependent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.PutJSON(ctx, KeyFilteredOffers+":u1", []string{"a"})

	var got []string
	assert.False(t, c.GetJSON(ctx, KeyFilteredOffers+":u2", &got))
	assert.True(t, c.GetJSON(ctx, KeyFilteredOffers+":u1", &got))
}
