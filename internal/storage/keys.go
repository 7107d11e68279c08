package storage

import (
	"fmt"
	"strconv"
)

// Redis key layout. Listings and their counter are scoped per namespace (one
// logical market per server); the blacklist and uuid cache are shared by
// every namespace on the same Redis instance.
const (
	keyBlacklist = "market:blacklist"
	keyUUIDCache = "market:uuidcache"
)

// Pub/sub channels carrying blacklist deltas between processes.
const (
	ChannelBlacklistAdd    = "market-blacklist-add"
	ChannelBlacklistRemove = "market-blacklist-remove"
)

// Listing hash field names.
const (
	fieldItem     = "Item"
	fieldSeller   = "Seller"
	fieldStock    = "Stock"
	fieldPrice    = "Price"
	fieldQuantity = "Quantity"
)

func keyLastID(namespace string) string {
	return "market:" + namespace + ":lastID"
}

func keyListing(namespace string, id int64) string {
	return fmt.Sprintf("market:%s:%d", namespace, id)
}

func keyOpen(namespace string) string {
	return "market:" + namespace + ":open"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
