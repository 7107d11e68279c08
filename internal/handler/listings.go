package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"playermarket-api/internal/market"
	"playermarket-api/internal/middleware"
	"playermarket-api/internal/model"
	"playermarket-api/internal/storage"
	"playermarket-api/pkg/apierror"
	"playermarket-api/pkg/response"
)

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	market *market.Service
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(m *market.Service) *ListingHandler {
	return &ListingHandler{market: m}
}

// marketError converts storage taxonomy errors to API errors.
func marketError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apierror.NotFound("listing not found")
	case errors.Is(err, storage.ErrUnauthorized):
		return apierror.Forbidden("you do not own this listing")
	case errors.Is(err, storage.ErrUseAddStock):
		return apierror.Conflict("you already have a listing for an equivalent item, add stock to it instead")
	case errors.Is(err, storage.ErrBlacklisted):
		return apierror.Forbidden("this item may not be listed")
	case errors.Is(err, storage.ErrUnavailable):
		return apierror.Conflict("listing unavailable")
	case errors.Is(err, storage.ErrRejected), errors.Is(err, storage.ErrBadPayload):
		return apierror.BadRequest(err.Error())
	default:
		return apierror.ServiceUnavailable("storage backend unavailable")
	}
}

func listingID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid listing id")
	}
	return id, nil
}

// listingView is a Listing with the seller's display name resolved.
type listingView struct {
	model.Listing
	SellerName string `json:"seller_name"`
}

func (h *ListingHandler) withNames(r *http.Request, listings []model.Listing) []listingView {
	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		name, err := h.market.ResolveName(r.Context(), l.Seller)
		if err != nil {
			name = l.Seller
		}
		views = append(views, listingView{Listing: l, SellerName: name})
	}
	return views
}

// CreateListingRequest is the body for POST /api/v1/listings.
type CreateListingRequest struct {
	Seller   string          `json:"seller"`
	Item     json.RawMessage `json:"item"`
	Quantity int             `json:"quantity"`
	Price    int             `json:"price"`
	Stock    int             `json:"stock"`
}

// Create handles POST /api/v1/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	id, err := h.market.CreateListing(r.Context(), req.Seller, req.Item, req.Quantity, req.Price, req.Stock)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.Created(w, map[string]interface{}{"id": id})
}

// List handles GET /api/v1/listings with optional seller and type filters.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		listings []model.Listing
		err      error
	)
	switch {
	case r.URL.Query().Get("seller") != "":
		listings, err = h.market.SearchBySeller(r.Context(), r.URL.Query().Get("seller"))
	case r.URL.Query().Get("type") != "":
		listings, err = h.market.SearchByType(r.Context(), r.URL.Query().Get("type"))
	default:
		listings, err = h.market.Listings(r.Context())
	}
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, h.withNames(r, listings))
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	l, err := h.market.GetListing(r.Context(), id)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	views := h.withNames(r, []model.Listing{*l})
	response.OK(w, views[0])
}

// AddStockRequest is the body for POST /api/v1/listings/{id}/stock.
type AddStockRequest struct {
	Seller string          `json:"seller"`
	Delta  int             `json:"delta"`
	Item   json.RawMessage `json:"item"`
}

// AddStock handles POST /api/v1/listings/{id}/stock
func (h *ListingHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.market.AddStock(r.Context(), id, req.Seller, req.Delta, req.Item); err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"id": id, "added": req.Delta})
}

// Remove handles DELETE /api/v1/listings/{id}. The requester comes from the
// X-Player-ID header; moderators may remove anyone's listing.
func (h *ListingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	requester := r.Header.Get("X-Player-ID")
	moderator := middleware.IsModerator(r.Context())
	if requester == "" && !moderator {
		response.Error(w, apierror.BadRequest("X-Player-ID header is required"))
		return
	}

	stacks, err := h.market.RemoveListing(r.Context(), id, requester, moderator)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, map[string]interface{}{"id": id, "returned_stacks": stacks})
}

// PurchaseRequest is the body for POST /api/v1/listings/{id}/purchase.
type PurchaseRequest struct {
	Buyer string `json:"buyer"`
}

// Purchase handles POST /api/v1/listings/{id}/purchase
func (h *ListingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if req.Buyer == "" {
		response.Error(w, apierror.BadRequest("buyer is required"))
		return
	}

	sale, err := h.market.Purchase(r.Context(), id, req.Buyer)
	if err != nil {
		response.Error(w, marketError(err))
		return
	}

	response.OK(w, sale)
}
