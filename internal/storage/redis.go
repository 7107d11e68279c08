package storage

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"playermarket-api/internal/model"
)

// RedisStore implements Store on a shared Redis instance. Listings live in
// per-namespace hashes, ids come from an atomic counter, and blacklist
// mutations are pushed to other processes over pub/sub.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a Redis-backed store scoped to the given namespace.
// The client is shared with the caller and not closed by Close.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	log.Printf("[RedisStore] Initialized with namespace: %s", namespace)
	return &RedisStore{client: client, namespace: namespace}
}

// CreateListing reserves the next id with INCR, then publishes the listing
// fields and its open marker in one batched write. The id is reserved before
// it becomes visible, so concurrent creators can never share an id, but the
// listing briefly exists only as a consumed counter value.
func (s *RedisStore) CreateListing(ctx context.Context, l model.Listing) (int64, error) {
	id, err := s.client.Incr(ctx, keyLastID(s.namespace)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to reserve listing id: %w", err)
	}

	key := keyListing(s.namespace, id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldItem, string(l.Item),
		fieldSeller, l.Seller,
		fieldStock, strconv.Itoa(l.Stock),
		fieldPrice, strconv.Itoa(l.Price),
		fieldQuantity, strconv.Itoa(l.Quantity),
	)
	pipe.HSet(ctx, keyOpen(s.namespace), formatID(id), l.Seller)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to write listing %d: %w", id, err)
	}
	return id, nil
}

// GetListing returns the listing or ErrNotFound.
func (s *RedisStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	open, err := s.client.HExists(ctx, keyOpen(s.namespace), formatID(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check listing %d: %w", id, err)
	}
	if !open {
		return nil, ErrNotFound
	}
	return s.readListing(ctx, id)
}

func (s *RedisStore) readListing(ctx context.Context, id int64) (*model.Listing, error) {
	fields, err := s.client.HGetAll(ctx, keyListing(s.namespace, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return parseListingHash(id, fields)
}

func parseListingHash(id int64, fields map[string]string) (*model.Listing, error) {
	stock, err := strconv.Atoi(fields[fieldStock])
	if err != nil {
		return nil, fmt.Errorf("listing %d has bad stock %q: %w", id, fields[fieldStock], err)
	}
	price, err := strconv.Atoi(fields[fieldPrice])
	if err != nil {
		return nil, fmt.Errorf("listing %d has bad price %q: %w", id, fields[fieldPrice], err)
	}
	quantity, err := strconv.Atoi(fields[fieldQuantity])
	if err != nil {
		return nil, fmt.Errorf("listing %d has bad quantity %q: %w", id, fields[fieldQuantity], err)
	}
	return &model.Listing{
		ID:       id,
		Seller:   fields[fieldSeller],
		Item:     []byte(fields[fieldItem]),
		Stock:    stock,
		Price:    price,
		Quantity: quantity,
	}, nil
}

// Listings walks the open-listing hash and fetches each record. Entries whose
// record is missing or unparsable are skipped, not deleted.
func (s *RedisStore) Listings(ctx context.Context) ([]model.Listing, error) {
	open, err := s.client.HGetAll(ctx, keyOpen(s.namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read open listings: %w", err)
	}
	return s.collectListings(ctx, open, "")
}

// ListingsBySeller filters the open-listing hash by its seller values before
// fetching records, so only the seller's listings cost a round trip.
func (s *RedisStore) ListingsBySeller(ctx context.Context, seller string) ([]model.Listing, error) {
	open, err := s.client.HGetAll(ctx, keyOpen(s.namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read open listings: %w", err)
	}
	return s.collectListings(ctx, open, seller)
}

func (s *RedisStore) collectListings(ctx context.Context, open map[string]string, seller string) ([]model.Listing, error) {
	listings := make([]model.Listing, 0, len(open))
	for rawID, owner := range open {
		if seller != "" && owner != seller {
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			log.Printf("[RedisStore] Skipping open entry with bad id %q", rawID)
			continue
		}
		l, err := s.readListing(ctx, id)
		if err != nil {
			log.Printf("[RedisStore] Skipping listing %d: %v", id, err)
			continue
		}
		listings = append(listings, *l)
	}
	return listings, nil
}

// SetStock overwrites the stock field of an open listing.
func (s *RedisStore) SetStock(ctx context.Context, id int64, stock int) error {
	open, err := s.client.HExists(ctx, keyOpen(s.namespace), formatID(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check listing %d: %w", id, err)
	}
	if !open {
		return ErrNotFound
	}
	if err := s.client.HSet(ctx, keyListing(s.namespace, id), fieldStock, strconv.Itoa(stock)).Err(); err != nil {
		return fmt.Errorf("failed to update stock for listing %d: %w", id, err)
	}
	return nil
}

// DeleteListing removes the open marker and the record in one batched write.
func (s *RedisStore) DeleteListing(ctx context.Context, id int64) error {
	open, err := s.client.HExists(ctx, keyOpen(s.namespace), formatID(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to check listing %d: %w", id, err)
	}
	if !open {
		return ErrNotFound
	}
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, keyOpen(s.namespace), formatID(id))
	pipe.Del(ctx, keyListing(s.namespace, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	return nil
}

// Purchase transfers currency, then recomputes stock. There is no cross-key
// transaction here: the transfer runs first so a failed payment never touches
// stock, and the final stock write is a single batched operation.
func (s *RedisStore) Purchase(ctx context.Context, id int64, transfer TransferFunc) (*model.Listing, error) {
	l, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := transfer(ctx, l.Seller, l.Price); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	newStock := l.Stock - l.Quantity
	if Delists(newStock, l.Quantity) {
		pipe := s.client.TxPipeline()
		pipe.HDel(ctx, keyOpen(s.namespace), formatID(id))
		pipe.Del(ctx, keyListing(s.namespace, id))
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to delist listing %d: %w", id, err)
		}
	} else {
		if err := s.client.HSet(ctx, keyListing(s.namespace, id), fieldStock, strconv.Itoa(newStock)).Err(); err != nil {
			return nil, fmt.Errorf("failed to update stock for listing %d: %w", id, err)
		}
	}
	return l, nil
}

// Blacklist returns the authoritative blacklist snapshot.
func (s *RedisStore) Blacklist(ctx context.Context) ([]string, error) {
	items, err := s.client.HKeys(ctx, keyBlacklist).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist: %w", err)
	}
	return items, nil
}

// BlacklistAdd records the item and pushes the delta to every subscriber.
func (s *RedisStore) BlacklistAdd(ctx context.Context, item string) (bool, error) {
	exists, err := s.client.HExists(ctx, keyBlacklist, item).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := s.client.HSet(ctx, keyBlacklist, item, "true").Err(); err != nil {
		return false, fmt.Errorf("failed to add %q to blacklist: %w", item, err)
	}
	if err := s.client.Publish(ctx, ChannelBlacklistAdd, item).Err(); err != nil {
		log.Printf("[RedisStore] Failed to publish blacklist add for %q: %v", item, err)
	}
	return true, nil
}

// BlacklistRemove deletes the item and pushes the delta to every subscriber.
func (s *RedisStore) BlacklistRemove(ctx context.Context, item string) (bool, error) {
	exists, err := s.client.HExists(ctx, keyBlacklist, item).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if !exists {
		return false, nil
	}
	if err := s.client.HDel(ctx, keyBlacklist, item).Err(); err != nil {
		return false, fmt.Errorf("failed to remove %q from blacklist: %w", item, err)
	}
	if err := s.client.Publish(ctx, ChannelBlacklistRemove, item).Err(); err != nil {
		log.Printf("[RedisStore] Failed to publish blacklist remove for %q: %v", item, err)
	}
	return true, nil
}

// CacheName stores the player's last-known display name.
func (s *RedisStore) CacheName(ctx context.Context, uuid, name string) error {
	if err := s.client.HSet(ctx, keyUUIDCache, uuid, name).Err(); err != nil {
		return fmt.Errorf("failed to cache name for %s: %w", uuid, err)
	}
	return nil
}

// ResolveName returns the cached name, falling back to the raw uuid.
func (s *RedisStore) ResolveName(ctx context.Context, uuid string) (string, error) {
	name, err := s.client.HGet(ctx, keyUUIDCache, uuid).Result()
	if err == redis.Nil {
		return uuid, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve name for %s: %w", uuid, err)
	}
	return name, nil
}

// Close is a no-op; the shared client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)
