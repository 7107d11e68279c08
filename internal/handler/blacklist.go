package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"playermarket-api/internal/market"
	"playermarket-api/internal/middleware"
	"playermarket-api/pkg/apierror"
	"playermarket-api/pkg/response"
)

// BlacklistHandler handles moderation blacklist HTTP requests.
type BlacklistHandler struct {
	market *market.Service
}

// NewBlacklistHandler creates a new blacklist handler.
func NewBlacklistHandler(m *market.Service) *BlacklistHandler {
	return &BlacklistHandler{market: m}
}

// List handles GET /api/v1/blacklist
func (h *BlacklistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.market.Blacklist(r.Context())
	if err != nil {
		response.Error(w, marketError(err))
		return
	}
	response.OK(w, map[string]interface{}{"items": items})
}

// AddRequest is the body for POST /api/v1/blacklist.
type AddRequest struct {
	Item string `json:"item"`
}

// Add handles POST /api/v1/blacklist (moderator only)
func (h *BlacklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsModerator(r.Context()) {
		response.Error(w, apierror.Forbidden("moderator key required"))
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Item == "" {
		response.Error(w, apierror.BadRequest("item is required"))
		return
	}

	added, err := h.market.BlacklistAdd(r.Context(), req.Item)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"item": req.Item, "added": added})
}

// Remove handles DELETE /api/v1/blacklist/{item} (moderator only)
func (h *BlacklistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsModerator(r.Context()) {
		response.Error(w, apierror.Forbidden("moderator key required"))
		return
	}

	item := chi.URLParam(r, "item")
	if item == "" {
		response.Error(w, apierror.BadRequest("item is required"))
		return
	}

	removed, err := h.market.BlacklistRemove(r.Context(), item)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"item": item, "removed": removed})
}
