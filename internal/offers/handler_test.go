package offers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewRepo(setupTestDB(t))
	seedOffers(t, repo)

	router := gin.New()
	NewHandler(repo).RegisterRoutes(router.Group("/offers"))
	return router
}

type listResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []struct {
		ID    string `json:"id"`
		Store string `json:"store"`
	} `json:"items"`
}

func getList(t *testing.T, router *gin.Engine, target string) listResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListStoresCommaSeparated(t *testing.T) {
	router := setupRouter(t)

	resp := getList(t, router, "/offers?stores=Amazon,Myntra")
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Items, 2)
	stores := []string{resp.Items[0].Store, resp.Items[1].Store}
	assert.Contains(t, stores, "Amazon")
	assert.Contains(t, stores, "Myntra")
}

func TestListStoresRepeatedParams(t *testing.T) {
	router := setupRouter(t)

	resp := getList(t, router, "/offers?stores=Amazon&stores=Myntra")
	assert.Equal(t, 2, resp.Total)
}

func TestListStoresMixedForms(t *testing.T) {
	router := setupRouter(t)

	// repeated params where one value is itself comma-separated
	resp := getList(t, router, "/offers?stores=Amazon,%20Myntra&stores=Swiggy")
	assert.Equal(t, 3, resp.Total)
}

func TestListCategoriesCommaSeparated(t *testing.T) {
	router := setupRouter(t)

	resp := getList(t, router, "/offers?categories=Electronics,Dining")
	assert.Equal(t, 2, resp.Total)
}

func TestListEchoesClampedPaging(t *testing.T) {
	router := setupRouter(t)

	resp := getList(t, router, "/offers?limit=0")
	assert.Equal(t, 20, resp.Limit)

	resp = getList(t, router, "/offers?limit=500&offset=-3")
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 0, resp.Offset)

	resp = getList(t, router, "/offers?limit=2")
	assert.Equal(t, 2, resp.Limit)
	assert.Len(t, resp.Items, 2)
}
