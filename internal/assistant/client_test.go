package assistant

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func TestDisabledWithoutEndpoint(t *testing.T) {
	c := NewClient("", "", "gpt-4o-mini", offers.NewRepo(setupTestDB(t)))

	assert.False(t, c.Enabled())
	_, err := c.Chat(context.Background(), "u1", "any deals?")
	assert.Error(t, err)
}

func TestChatGroundsPromptInOffers(t *testing.T) {
	db := setupTestDB(t)
	repo := offers.NewRepo(db)
	require.NoError(t, repo.Create(context.Background(), models.Offer{
		ID: "o1", Title: "Big headphone sale", Store: "Amazon", Savings: "60% OFF", Code: "AUDIO60", Status: "active",
	}))

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Try the headphone sale!"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4o-mini", repo)

	answer, err := c.Chat(context.Background(), "u1", "any audio deals?")
	require.NoError(t, err)
	assert.Equal(t, "Try the headphone sale!", answer)

	require.NotEmpty(t, got.Messages)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Big headphone sale")
	assert.Contains(t, got.Messages[0].Content, "AUDIO60")
	assert.Equal(t, "any audio deals?", got.Messages[len(got.Messages)-1].Content)
}

func TestChatKeepsPerUserHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := offers.NewRepo(db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", repo)

	_, err := c.Chat(context.Background(), "u1", "first question")
	require.NoError(t, err)

	assert.Len(t, c.History.For("u1"), 2)
	assert.Empty(t, c.History.For("u2"))
}

func TestChatUpstreamError(t *testing.T) {
	db := setupTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "rate limited"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", offers.NewRepo(db))

	_, err := c.Chat(context.Background(), "u1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	// failed calls leave no transcript
	assert.Empty(t, c.History.For("u1"))
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append("u1", Message{Role: "user", Text: "m"})
	}
	assert.Len(t, h.For("u1"), 3)
}
