package storage

import (
	"context"

	"playermarket-api/internal/model"
)

// TransferFunc moves currency from the buyer to the given seller. Backends
// call it mid-purchase, before any stock mutation; an error aborts the
// purchase with no state change.
type TransferFunc func(ctx context.Context, seller string, price int) error

// Store is the capability interface the rest of the application programs
// against. The backend choice (keyvalue, relational, memory) is a
// configuration detail.
type Store interface {
	// CreateListing persists a validated listing and returns its assigned id.
	// Id uniqueness is the backend's responsibility.
	CreateListing(ctx context.Context, l model.Listing) (int64, error)

	// GetListing returns the listing or ErrNotFound.
	GetListing(ctx context.Context, id int64) (*model.Listing, error)

	// Listings returns a snapshot of all open listings. The snapshot may be
	// stale relative to concurrent writers.
	Listings(ctx context.Context) ([]model.Listing, error)

	// ListingsBySeller returns the seller's open listings.
	ListingsBySeller(ctx context.Context, seller string) ([]model.Listing, error)

	// SetStock overwrites the stock of an open listing.
	SetStock(ctx context.Context, id int64, stock int) error

	// DeleteListing removes a listing outright. Missing ids return ErrNotFound.
	DeleteListing(ctx context.Context, id int64) error

	// Purchase executes one sale: transfer currency, then decrement stock by
	// the listing's sale quantity, auto-delisting when the remainder cannot
	// cover another sale. Returns the listing as it stood before the sale.
	// Concurrent purchases of the same listing must serialize; exactly one
	// wins the last sellable unit.
	Purchase(ctx context.Context, id int64, transfer TransferFunc) (*model.Listing, error)

	// Blacklist returns the authoritative blacklist snapshot.
	Blacklist(ctx context.Context) ([]string, error)

	// BlacklistAdd adds an item type to the blacklist and emits the
	// propagation signal. Returns false if it was already present.
	BlacklistAdd(ctx context.Context, item string) (bool, error)

	// BlacklistRemove removes an item type from the blacklist and emits the
	// propagation signal. Returns false if it was not present.
	BlacklistRemove(ctx context.Context, item string) (bool, error)

	// CacheName records the last-known display name for a player identity.
	// Best-effort, overwritten on every login.
	CacheName(ctx context.Context, uuid, name string) error

	// ResolveName returns the cached display name, or the raw uuid on a miss.
	ResolveName(ctx context.Context, uuid string) (string, error)

	// Close releases the backend's connection resources.
	Close() error
}
