package storage

import (
	"context"
	"fmt"
	"sync"

	"playermarket-api/internal/model"
)

// MemoryStore is an in-memory implementation of Store.
// Use this for development/testing or single-instance deployments; there is
// no cross-process propagation because there is no second process.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	listings  map[int64]model.Listing
	blacklist map[string]struct{}
	names     map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:  make(map[int64]model.Listing),
		blacklist: make(map[string]struct{}),
		names:     make(map[string]string),
	}
}

// CreateListing assigns the next id under the store lock.
func (s *MemoryStore) CreateListing(ctx context.Context, l model.Listing) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l.ID = s.nextID
	l.Item = append([]byte(nil), l.Item...)
	s.listings[l.ID] = l
	return l.ID, nil
}

// GetListing returns the listing or ErrNotFound.
func (s *MemoryStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

// Listings returns a snapshot of all open listings.
func (s *MemoryStore) Listings(ctx context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		listings = append(listings, l)
	}
	return listings, nil
}

// ListingsBySeller returns the seller's open listings.
func (s *MemoryStore) ListingsBySeller(ctx context.Context, seller string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var listings []model.Listing
	for _, l := range s.listings {
		if l.Seller == seller {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// SetStock overwrites the stock of an open listing.
func (s *MemoryStore) SetStock(ctx context.Context, id int64, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return ErrNotFound
	}
	l.Stock = stock
	s.listings[id] = l
	return nil
}

// DeleteListing removes the listing outright.
func (s *MemoryStore) DeleteListing(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

// Purchase serializes through the store lock, so concurrent buyers of the
// last sellable unit resolve to exactly one winner.
func (s *MemoryStore) Purchase(ctx context.Context, id int64, transfer TransferFunc) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}

	if err := transfer(ctx, l.Seller, l.Price); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	newStock := l.Stock - l.Quantity
	if Delists(newStock, l.Quantity) {
		delete(s.listings, id)
	} else {
		updated := l
		updated.Stock = newStock
		s.listings[id] = updated
	}
	return &l, nil
}

// Blacklist returns the blacklist snapshot.
func (s *MemoryStore) Blacklist(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.blacklist))
	for item := range s.blacklist {
		items = append(items, item)
	}
	return items, nil
}

// BlacklistAdd records the item; returns false if already present.
func (s *MemoryStore) BlacklistAdd(ctx context.Context, item string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blacklist[item]; ok {
		return false, nil
	}
	s.blacklist[item] = struct{}{}
	return true, nil
}

// BlacklistRemove deletes the item; returns false if not present.
func (s *MemoryStore) BlacklistRemove(ctx context.Context, item string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blacklist[item]; !ok {
		return false, nil
	}
	delete(s.blacklist, item)
	return true, nil
}

// CacheName stores the player's last-known display name.
func (s *MemoryStore) CacheName(ctx context.Context, uuid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.names[uuid] = name
	return nil
}

// ResolveName returns the cached name, falling back to the raw uuid.
func (s *MemoryStore) ResolveName(ctx context.Context, uuid string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name, ok := s.names[uuid]; ok {
		return name, nil
	}
	return uuid, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
