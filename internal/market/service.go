package market

import (
	"context"
	"fmt"
	"log"

	"playermarket-api/internal/blacklist"
	"playermarket-api/internal/economy"
	"playermarket-api/internal/item"
	"playermarket-api/internal/model"
	"playermarket-api/internal/storage"
)

// Service implements the marketplace operations on top of whichever storage
// backend is configured. Validation, duplicate detection and the auto-delist
// threshold live here and in the storage policy, defined once for every
// backend. All dependencies are injected; there is no ambient current-market
// lookup.
type Service struct {
	store   storage.Store
	mirror  *blacklist.Mirror
	codec   item.Codec
	economy economy.Service
}

// Sale describes one completed purchase.
type Sale struct {
	ListingID int64  `json:"listing_id"`
	Item      []byte `json:"item"`
	Units     int    `json:"units"`
	Price     int    `json:"price"`
	Seller    string `json:"seller"`
}

// NewService creates the market service. Returns nil if any required
// dependency is missing.
func NewService(store storage.Store, mirror *blacklist.Mirror, codec item.Codec, econ economy.Service) *Service {
	if store == nil || mirror == nil || codec == nil || econ == nil {
		return nil
	}
	return &Service{store: store, mirror: mirror, codec: codec, economy: econ}
}

// CreateListing validates and persists a new sale offer. A seller with an
// open listing for an equivalent item gets ErrUseAddStock instead of a second
// listing. The duplicate scan and the create are separate backend calls; a
// concurrent create by the same seller can slip between them, which is an
// accepted best-effort guarantee on the key-value backend.
func (s *Service) CreateListing(ctx context.Context, seller string, payload []byte, quantity, price, stock int) (int64, error) {
	l := model.Listing{
		Seller:   seller,
		Item:     payload,
		Stock:    stock,
		Price:    price,
		Quantity: quantity,
	}
	if err := l.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrRejected, err)
	}

	typeID := s.codec.TypeID(payload)
	if typeID == "" {
		return 0, storage.ErrBadPayload
	}
	if s.mirror.Contains(typeID) {
		return 0, storage.ErrBlacklisted
	}

	open, err := s.store.ListingsBySeller(ctx, seller)
	if err != nil {
		return 0, err
	}
	for _, other := range open {
		if s.codec.Equivalent(other.Item, payload) {
			return 0, storage.ErrUseAddStock
		}
	}

	id, err := s.store.CreateListing(ctx, l)
	if err != nil {
		return 0, err
	}
	log.Printf("[Market] Listing %d created by %s (%dx @ %d, stock %d)", id, seller, quantity, price, stock)
	return id, nil
}

// GetListing returns a listing by id.
func (s *Service) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	return s.store.GetListing(ctx, id)
}

// readable filters out listings whose payload the codec cannot interpret.
// Such listings are skipped, never deleted; the failure may be transient
// decoding drift rather than data corruption.
func (s *Service) readable(listings []model.Listing) []model.Listing {
	out := listings[:0]
	for _, l := range listings {
		if s.codec.TypeID(l.Item) == "" {
			log.Printf("[Market] Skipping listing %d with unreadable payload", l.ID)
			continue
		}
		out = append(out, l)
	}
	return out
}

// Listings returns a snapshot of all open, readable listings.
func (s *Service) Listings(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.store.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return s.readable(listings), nil
}

// SearchBySeller returns the seller's open, readable listings.
func (s *Service) SearchBySeller(ctx context.Context, seller string) ([]model.Listing, error) {
	listings, err := s.store.ListingsBySeller(ctx, seller)
	if err != nil {
		return nil, err
	}
	return s.readable(listings), nil
}

// SearchByType returns open listings whose item type matches.
func (s *Service) SearchByType(ctx context.Context, typeID string) ([]model.Listing, error) {
	listings, err := s.store.Listings(ctx)
	if err != nil {
		return nil, err
	}
	var matched []model.Listing
	for _, l := range listings {
		if s.codec.TypeID(l.Item) == typeID {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// AddStock raises an existing listing's stock. Only the seller may add, and
// only with a payload equivalent to the listed item.
func (s *Service) AddStock(ctx context.Context, id int64, seller string, delta int, payload []byte) error {
	if delta <= 0 {
		return fmt.Errorf("%w: stock delta must be positive", storage.ErrRejected)
	}

	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if l.Seller != seller {
		return storage.ErrUnauthorized
	}
	if !s.codec.Equivalent(l.Item, payload) {
		return fmt.Errorf("%w: supplied item does not match the listing", storage.ErrRejected)
	}
	return s.store.SetStock(ctx, id, l.Stock+delta)
}

// RemoveListing deletes a listing and returns its remaining stock as discrete
// stacks sized by the item's per-stack limit. Moderators may remove any
// listing; sellers only their own.
func (s *Service) RemoveListing(ctx context.Context, id int64, requester string, moderator bool) ([]Stack, error) {
	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Seller != requester && !moderator {
		return nil, storage.ErrUnauthorized
	}
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return nil, err
	}
	log.Printf("[Market] Listing %d removed by %s (moderator=%v, %d units returned)", id, requester, moderator, l.Stock)
	return SplitStacks(l.Item, l.Stock, s.codec.MaxUnitsPerStack(l.Item)), nil
}

// Purchase executes one sale for the buyer. The backend serializes the
// read-decide-write and calls the economy transfer before touching stock, so
// a failed payment leaves listing and currency untouched.
func (s *Service) Purchase(ctx context.Context, id int64, buyer string) (*Sale, error) {
	transfer := func(ctx context.Context, seller string, price int) error {
		return s.economy.Transfer(ctx, buyer, seller, int64(price))
	}
	l, err := s.store.Purchase(ctx, id, transfer)
	if err != nil {
		return nil, err
	}
	log.Printf("[Market] Listing %d: %s bought %d units for %d", id, buyer, l.Quantity, l.Price)
	return &Sale{
		ListingID: l.ID,
		Item:      l.Item,
		Units:     l.Quantity,
		Price:     l.Price,
		Seller:    l.Seller,
	}, nil
}

// IsBlacklisted checks the local mirror; the hot path never waits on the
// backend.
func (s *Service) IsBlacklisted(typeID string) bool {
	return s.mirror.Contains(typeID)
}

// Blacklist returns the authoritative blacklist from the store.
func (s *Service) Blacklist(ctx context.Context) ([]string, error) {
	return s.store.Blacklist(ctx)
}

// BlacklistAdd adds an item type to the shared blacklist. The store emits the
// propagation signal for other processes; the local mirror is updated
// immediately rather than waiting for our own signal to come back around.
func (s *Service) BlacklistAdd(ctx context.Context, typeID string) (bool, error) {
	added, err := s.store.BlacklistAdd(ctx, typeID)
	if err != nil {
		return false, err
	}
	if added {
		s.mirror.Add(typeID)
		log.Printf("[Market] Blacklisted item type %s", typeID)
	}
	return added, nil
}

// BlacklistRemove removes an item type from the shared blacklist.
func (s *Service) BlacklistRemove(ctx context.Context, typeID string) (bool, error) {
	removed, err := s.store.BlacklistRemove(ctx, typeID)
	if err != nil {
		return false, err
	}
	if removed {
		s.mirror.Remove(typeID)
		log.Printf("[Market] Unblacklisted item type %s", typeID)
	}
	return removed, nil
}

// CacheName records a player's display name, typically on login.
func (s *Service) CacheName(ctx context.Context, uuid, name string) error {
	return s.store.CacheName(ctx, uuid, name)
}

// ResolveName returns the cached display name or the raw uuid.
func (s *Service) ResolveName(ctx context.Context, uuid string) (string, error) {
	return s.store.ResolveName(ctx, uuid)
}
