package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playermarket-api/internal/blacklist"
	"playermarket-api/internal/economy"
	"playermarket-api/internal/handler"
	"playermarket-api/internal/item"
	"playermarket-api/internal/market"
	"playermarket-api/internal/middleware"
	"playermarket-api/internal/storage"
)

const moderatorKey = "test-moderator-key"

const (
	sellerID = "5f0c6a02-9a74-4f5c-9d3c-111111111111"
	buyerID  = "5f0c6a02-9a74-4f5c-9d3c-222222222222"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewMemoryStore()
	svc := market.NewService(store, blacklist.NewMirror(), item.NewJSONCodec(), economy.NewLedger(1000))
	require.NotNil(t, svc)

	return New(Config{
		Handler:          handler.New(store, "memory", "test"),
		ListingHandler:   handler.NewListingHandler(svc),
		BlacklistHandler: handler.NewBlacklistHandler(svc),
		PlayerHandler:    handler.NewPlayerHandler(svc),
		ModeratorMiddleware: middleware.NewModeratorMiddleware(middleware.ModeratorConfig{
			Key: moderatorKey,
		}),
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createListing(t *testing.T, h http.Handler) int64 {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/listings", map[string]any{
		"seller":   sellerID,
		"item":     map[string]any{"id": "stone", "count": 64},
		"quantity": 16,
		"price":    10,
		"stock":    64,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	id := createListing(t, h)

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", id), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/purchase", id), map[string]any{
		"buyer": buyerID,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var purchase struct {
		Data struct {
			Units int `json:"units"`
			Price int `json:"price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &purchase))
	assert.Equal(t, 16, purchase.Data.Units)
	assert.Equal(t, 10, purchase.Data.Price)

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", id), nil, map[string]string{
		"X-Player-ID": sellerID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", id), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestRouter(t)
	id := createListing(t, h)

	t.Run("missing listing is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/listings/9999", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id is 400", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/listings/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate listing is 409", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/listings", map[string]any{
			"seller":   sellerID,
			"item":     map[string]any{"id": "stone", "count": 32},
			"quantity": 16,
			"price":    10,
			"stock":    32,
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid listing is 400", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/listings", map[string]any{
			"seller":   sellerID,
			"item":     map[string]any{"id": "dirt"},
			"quantity": 0,
			"price":    10,
			"stock":    64,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("removing another player's listing is 403", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", id), nil, map[string]string{
			"X-Player-ID": buyerID,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestBlacklistModerationOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	// Without the moderator key the mutation is refused.
	rec := doJSON(t, h, http.MethodPost, "/api/v1/blacklist", map[string]any{"item": "bedrock"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	asModerator := map[string]string{"X-Moderator-Key": moderatorKey}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/blacklist", map[string]any{"item": "bedrock"}, asModerator)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Listing is open to everyone.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/blacklist", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data struct {
			Items []string `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"bedrock"}, list.Data.Items)

	// Blacklisted item can no longer be listed.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/listings", map[string]any{
		"seller":   sellerID,
		"item":     map[string]any{"id": "bedrock"},
		"quantity": 1,
		"price":    1,
		"stock":    1,
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/blacklist/bedrock", nil, asModerator)
	require.Equal(t, http.StatusOK, rec.Code)

	// A moderator may also remove listings they do not own.
	id := createListing(t, h)
	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", id), nil, asModerator)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestPlayerNameEndpointsOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPut, "/api/v1/players/"+sellerID+"/name", map[string]any{"name": "Steve"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/"+sellerID+"/name", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Steve", resp.Data.Name)

	// Unknown uuid resolves to itself.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/players/"+buyerID+"/name", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, buyerID, resp.Data.Name)

	// The cache only accepts well-formed uuids.
	rec = doJSON(t, h, http.MethodPut, "/api/v1/players/not-a-uuid/name", map[string]any{"name": "Steve"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/ready", "/api/status"} {
		rec := doJSON(t, h, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
