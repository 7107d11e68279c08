package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"playermarket-api/internal/market"
	"playermarket-api/pkg/apierror"
	"playermarket-api/pkg/response"
	"playermarket-api/pkg/uid"
)

// PlayerHandler handles the player name cache HTTP requests.
type PlayerHandler struct {
	market *market.Service
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(m *market.Service) *PlayerHandler {
	return &PlayerHandler{market: m}
}

// CacheNameRequest is the body for PUT /api/v1/players/{uuid}/name.
type CacheNameRequest struct {
	Name string `json:"name"`
}

// CacheName handles PUT /api/v1/players/{uuid}/name, called on player login.
func (h *PlayerHandler) CacheName(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "uuid")
	if !uid.IsValid(playerID) {
		response.Error(w, apierror.BadRequest("invalid player uuid"))
		return
	}

	var req CacheNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}

	if err := h.market.CacheName(r.Context(), playerID, req.Name); err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"uuid": playerID, "name": req.Name})
}

// ResolveName handles GET /api/v1/players/{uuid}/name. A cache miss returns
// the raw uuid rather than an error.
func (h *PlayerHandler) ResolveName(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "uuid")
	if playerID == "" {
		response.Error(w, apierror.BadRequest("player uuid is required"))
		return
	}

	name, err := h.market.ResolveName(r.Context(), playerID)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"uuid": playerID, "name": name})
}
