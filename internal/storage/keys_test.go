package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "market:survival:lastID", keyLastID("survival"))
	assert.Equal(t, "market:survival:42", keyListing("survival", 42))
	assert.Equal(t, "market:survival:open", keyOpen("survival"))
	assert.Equal(t, "market:blacklist", keyBlacklist)
	assert.Equal(t, "market:uuidcache", keyUUIDCache)
}

func TestKeyLayoutIsNamespaced(t *testing.T) {
	// Two servers sharing one Redis instance must not see each other's
	// listings, but do share the blacklist and the name cache.
	assert.NotEqual(t, keyListing("alpha", 1), keyListing("beta", 1))
	assert.NotEqual(t, keyLastID("alpha"), keyLastID("beta"))
	assert.NotEqual(t, keyOpen("alpha"), keyOpen("beta"))
}
