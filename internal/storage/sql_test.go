package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playermarket-api/internal/model"
)

func newSQLiteTestStore(t *testing.T) *SQLStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreCreateAndGetRoundTrip(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	l := newTestListing()
	id, err := s.CreateListing(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, l.Seller, got.Seller)
	assert.Equal(t, l.Item, got.Item)
	assert.Equal(t, l.Stock, got.Stock)
	assert.Equal(t, l.Price, got.Price)
	assert.Equal(t, l.Quantity, got.Quantity)

	_, err = s.GetListing(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStorePurchaseScenario(t *testing.T) {
	// create 64/16 @ 10, purchase once -> 48, three more -> gone.
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	id, err := s.CreateListing(ctx, newTestListing())
	require.NoError(t, err)

	l, err := s.Purchase(ctx, id, noTransfer)
	require.NoError(t, err)
	assert.Equal(t, 64, l.Stock, "purchase returns the pre-sale snapshot")

	got, err := s.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 48, got.Stock)

	for i := 0; i < 3; i++ {
		_, err = s.Purchase(ctx, id, noTransfer)
		require.NoError(t, err)
	}

	_, err = s.GetListing(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound, "listing auto-delists at zero stock")

	_, err = s.Purchase(ctx, id, noTransfer)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStorePurchaseFailedTransferRollsBack(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	id, err := s.CreateListing(ctx, newTestListing())
	require.NoError(t, err)

	broke := func(ctx context.Context, seller string, price int) error {
		return errors.New("insufficient funds")
	}
	_, err = s.Purchase(ctx, id, broke)
	assert.ErrorIs(t, err, ErrUnavailable)

	got, err := s.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 64, got.Stock, "transaction rolled back")
}

func TestSQLStoreConcurrentLastUnitPurchase(t *testing.T) {
	// Several buyers race for the only sellable unit; the purchase
	// transaction serializes them and exactly one wins.
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	l := newTestListing()
	l.Stock = 16
	l.Quantity = 16
	id, err := s.CreateListing(ctx, l)
	require.NoError(t, err)

	const buyers = 8
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Purchase(ctx, id, noTransfer)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestSQLStoreListingQueriesAndMutations(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	mine := newTestListing()
	other := newTestListing()
	other.Seller = testBuyer

	id, err := s.CreateListing(ctx, mine)
	require.NoError(t, err)
	_, err = s.CreateListing(ctx, other)
	require.NoError(t, err)

	bySeller, err := s.ListingsBySeller(ctx, testSeller)
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, testSeller, bySeller[0].Seller)

	all, err := s.Listings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.SetStock(ctx, id, 128))
	got, err := s.GetListing(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 128, got.Stock)

	require.NoError(t, s.DeleteListing(ctx, id))
	assert.ErrorIs(t, s.DeleteListing(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.SetStock(ctx, id, 1), ErrNotFound)
}

func TestSQLStoreBlacklistIdempotenceAndEventLog(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	added, err := s.BlacklistAdd(ctx, "stone")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.BlacklistAdd(ctx, "dirt")
	require.NoError(t, err)
	assert.True(t, added)

	// A no-op mutation appends no event.
	added, err = s.BlacklistAdd(ctx, "stone")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := s.BlacklistRemove(ctx, "stone")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.BlacklistRemove(ctx, "stone")
	require.NoError(t, err)
	assert.False(t, removed)

	items, err := s.Blacklist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dirt"}, items)

	// Every state change, and only state changes, landed in the event log,
	// in mutation order.
	events, err := s.PollEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.EventBlacklistAdd, events[0].Type)
	assert.Equal(t, "stone", events[0].Item)
	assert.Equal(t, model.EventBlacklistAdd, events[1].Type)
	assert.Equal(t, "dirt", events[1].Item)
	assert.Equal(t, model.EventBlacklistRemove, events[2].Type)
	assert.Equal(t, "stone", events[2].Item)

	// Processed events drop out of subsequent polls.
	require.NoError(t, s.MarkProcessed(ctx, events[0].ID))
	require.NoError(t, s.MarkProcessed(ctx, events[1].ID))

	events, err = s.PollEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventBlacklistRemove, events[0].Type)
}

func TestSQLStoreNameCacheUpsert(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	name, err := s.ResolveName(ctx, testSeller)
	require.NoError(t, err)
	assert.Equal(t, testSeller, name, "cache miss falls back to the raw uuid")

	require.NoError(t, s.CacheName(ctx, testSeller, "Steve"))
	require.NoError(t, s.CacheName(ctx, testSeller, "Alex"))

	name, err = s.ResolveName(ctx, testSeller)
	require.NoError(t, err)
	assert.Equal(t, "Alex", name)
}

func TestMySQLSchemaItemColumnWidthsAgree(t *testing.T) {
	// The blacklist and market_events item columns must hold the same ids:
	// anything the event log records has to fit the blacklist table too.
	widths := regexp.MustCompile(`item VARCHAR\((\d+)\)`).FindAllStringSubmatch(
		strings.Join(mysqlSchema, "\n"), -1)
	require.Len(t, widths, 2)
	assert.Equal(t, widths[0][1], widths[1][1])
}
