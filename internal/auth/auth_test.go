package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

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

func testTokens() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "offersmonkey-test",
		Duration: time.Hour,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	u := User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		IsAdmin:      true,
	}
	require.NoError(t, repo.CreateUser(ctx, u))

	got, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, 0, got.TokenVersion)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "u1", byName.ID)
}

func TestGetUserMissing(t *testing.T) {
	repo := NewRepo(setupTestDB(t))

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDuplicateEmailRejected(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "h"}))
	err := repo.CreateUser(ctx, User{ID: "u2", Username: "bob", Email: "a@example.com", PasswordHash: "h"})
	assert.Error(t, err)
}

func TestTokenVersionBump(t *testing.T) {
	repo := NewRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "h"}))

	require.NoError(t, repo.BumpTokenVersion(ctx, "u1"))
	v, err := repo.GetTokenVersion(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, repo.UpdatePasswordAndBumpTokenVersion(ctx, "u1", "h2"))
	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h2", u.PasswordHash)
	assert.Equal(t, 2, u.TokenVersion)
}

func TestTokenSignParse(t *testing.T) {
	ts := testTokens()
	u := &User{ID: "u1", Username: "alice", Email: "a@example.com", IsAdmin: true, TokenVersion: 3}

	token, exp, err := ts.Sign(u)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	ts := testTokens()
	token, _, err := ts.Sign(&User{ID: "u1"})
	require.NoError(t, err)

	other := TokenService{Secret: []byte("different"), Issuer: ts.Issuer, Duration: ts.Duration}
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := testTokens().Parse("not-a-token")
	assert.Error(t, err)
}
