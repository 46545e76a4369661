package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/stretchr/testify/require"
)

func TestResourceHandler_CreateRequiresLogin(t *testing.T) {
	deps := setupTestRouter(t)
	w := do(t, deps.router, http.MethodPost, "/resources", map[string]string{"title": "Go", "url": "https://go.dev"}, nil)
	requireMessage(t, w, http.StatusUnauthorized, "Please log in to add a resource")
}

func TestResourceHandler_CreateAndList(t *testing.T) {
	deps := setupTestRouter(t)

	w := do(t, deps.router, http.MethodPost, "/resources", map[string]string{"title": "Go Tour", "url": "https://go.dev/tour", "category": "Programming"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, "New resource added successfully", body["message"])
	require.Equal(t, float64(1), body["id"])

	w = do(t, deps.router, http.MethodPost, "/resources", map[string]string{"title": "SICP", "url": "https://example.com/sicp"}, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Listing is public.
	w = do(t, deps.router, http.MethodGet, "/resources", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resources []db_model.Resource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resources))
	require.Len(t, resources, 2)
	require.Equal(t, "SICP", resources[0].Title)
	require.Nil(t, resources[0].Category)
	require.Equal(t, "Go Tour", resources[1].Title)
	require.Equal(t, "Programming", *resources[1].Category)
	require.Equal(t, int64(1), resources[1].UserID)
}

func TestResourceHandler_CreateValidation(t *testing.T) {
	deps := setupTestRouter(t)
	w := do(t, deps.router, http.MethodPost, "/resources", map[string]string{"title": "No URL"}, alice)
	requireMessage(t, w, http.StatusBadRequest, "Title and URL are required")

	w = do(t, deps.router, http.MethodPost, "/resources", "not json", alice)
	requireMessage(t, w, http.StatusBadRequest, "Invalid JSON body")
}
