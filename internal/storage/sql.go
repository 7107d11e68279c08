package storage

import (
	"context"
	"database/sql"
	"fmt"

	"playermarket-api/internal/model"
)

// dialect captures the small SQL differences between the supported drivers.
type dialect struct {
	name            string
	forUpdate       string // row-lock suffix for the purchase read
	blacklistInsert string
	nameUpsert      string
}

// SQLStore implements Store on a relational database. Ids come from the
// auto-increment primary key, purchases serialize through row locking, and
// blacklist mutations append to the market_events log consumed by pollers on
// other processes.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// CreateListing inserts the row and reads back the generated key. The
// database guarantees id uniqueness; there is no client-side counter.
func (s *SQLStore) CreateListing(ctx context.Context, l model.Listing) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO listings(seller_uuid, item, stock, price, quantity) VALUES (?, ?, ?, ?, ?)`,
		l.Seller, string(l.Item), l.Stock, l.Price, l.Quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to insert listing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated listing id: %w", err)
	}
	return id, nil
}

func scanListing(row interface{ Scan(...any) error }) (*model.Listing, error) {
	var l model.Listing
	var item string
	if err := row.Scan(&l.ID, &l.Seller, &item, &l.Stock, &l.Price, &l.Quantity); err != nil {
		return nil, err
	}
	l.Item = []byte(item)
	return &l, nil
}

// GetListing returns the listing or ErrNotFound.
func (s *SQLStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seller_uuid, item, stock, price, quantity FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return l, nil
}

func (s *SQLStore) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}
	return listings, nil
}

// Listings returns a snapshot of all open listings.
func (s *SQLStore) Listings(ctx context.Context) ([]model.Listing, error) {
	return s.queryListings(ctx,
		`SELECT id, seller_uuid, item, stock, price, quantity FROM listings ORDER BY id`)
}

// ListingsBySeller uses the seller index rather than a full scan.
func (s *SQLStore) ListingsBySeller(ctx context.Context, seller string) ([]model.Listing, error) {
	return s.queryListings(ctx,
		`SELECT id, seller_uuid, item, stock, price, quantity FROM listings WHERE seller_uuid = ? ORDER BY id`,
		seller)
}

// SetStock overwrites the stock of an existing listing.
func (s *SQLStore) SetStock(ctx context.Context, id int64, stock int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE listings SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("failed to update stock for listing %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListing removes the row outright.
func (s *SQLStore) DeleteListing(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purchase wraps read-decide-write in one transaction with the row locked for
// the duration, so two buyers racing for the last sellable unit serialize and
// exactly one succeeds. The currency transfer runs inside the transaction;
// a failed transfer rolls everything back.
func (s *SQLStore) Purchase(ctx context.Context, id int64, transfer TransferFunc) (*model.Listing, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, seller_uuid, item, stock, price, quantity FROM listings WHERE id = ?`+s.dialect.forUpdate, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock listing %d: %w", id, err)
	}

	if err := transfer(ctx, l.Seller, l.Price); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	newStock := l.Stock - l.Quantity
	if Delists(newStock, l.Quantity) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to delist listing %d: %w", id, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `UPDATE listings SET stock = ? WHERE id = ?`, newStock, id); err != nil {
			return nil, fmt.Errorf("failed to update stock for listing %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase of listing %d: %w", id, err)
	}
	return l, nil
}

// Blacklist returns the authoritative blacklist snapshot.
func (s *SQLStore) Blacklist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item FROM blacklist`)
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist: %w", err)
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// BlacklistAdd inserts the entry and appends the propagation event in one
// transaction, so other processes never see one without the other.
func (s *SQLStore) BlacklistAdd(ctx context.Context, item string) (bool, error) {
	return s.mutateBlacklist(ctx, item, model.EventBlacklistAdd, s.dialect.blacklistInsert)
}

// BlacklistRemove deletes the entry and appends the propagation event.
func (s *SQLStore) BlacklistRemove(ctx context.Context, item string) (bool, error) {
	return s.mutateBlacklist(ctx, item, model.EventBlacklistRemove, `DELETE FROM blacklist WHERE item = ?`)
}

func (s *SQLStore) mutateBlacklist(ctx context.Context, item string, event model.EventType, stmt string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin blacklist transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, stmt, item)
	if err != nil {
		return false, fmt.Errorf("failed to mutate blacklist for %q: %w", item, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO market_events(type, item, processed) VALUES (?, ?, 0)`,
		string(event), item); err != nil {
		return false, fmt.Errorf("failed to append %s event for %q: %w", event, item, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit blacklist change for %q: %w", item, err)
	}
	return true, nil
}

// CacheName upserts the player's last-known display name.
func (s *SQLStore) CacheName(ctx context.Context, uuid, name string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.nameUpsert, uuid, name); err != nil {
		return fmt.Errorf("failed to cache name for %s: %w", uuid, err)
	}
	return nil
}

// ResolveName returns the cached name, falling back to the raw uuid.
func (s *SQLStore) ResolveName(ctx context.Context, uuid string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM uuid_cache WHERE uuid = ?`, uuid).Scan(&name)
	if err == sql.ErrNoRows {
		return uuid, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve name for %s: %w", uuid, err)
	}
	return name, nil
}

// PollEvents returns unprocessed events in creation order.
func (s *SQLStore) PollEvents(ctx context.Context) ([]model.MarketEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, item FROM market_events WHERE processed = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to poll events: %w", err)
	}
	defer rows.Close()

	var events []model.MarketEvent
	for rows.Next() {
		var e model.MarketEvent
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.Item); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = model.EventType(typ)
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkProcessed flags an event as applied. The row is retained as audit log.
func (s *SQLStore) MarkProcessed(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE market_events SET processed = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark event %d processed: %w", id, err)
	}
	return nil
}

// Close closes the database connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ensure SQLStore implements Store
var _ Store = (*SQLStore)(nil)
