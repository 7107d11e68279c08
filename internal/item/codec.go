package item

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Codec is the collaborator contract for interpreting item payloads. The
// marketplace core treats payloads as opaque blobs; equivalence, stacking
// limits, and type identity are game-specific and delegated here.
//
// Equivalent must be deterministic with no false positives (merging unrelated
// items) and no false negatives (blocking legitimate add-stock); duplicate
// detection and stock matching both ride on it.
type Codec interface {
	// Equivalent reports whether two payloads describe the same tradable
	// item, ignoring quantity.
	Equivalent(a, b []byte) bool

	// MaxUnitsPerStack returns the item's per-stack unit limit, used to split
	// returned stock into discrete stacks.
	MaxUnitsPerStack(payload []byte) int

	// TypeID returns the item-type identifier checked against the blacklist.
	// Empty means the payload is unreadable.
	TypeID(payload []byte) string
}

// DefaultMaxStack is used when a payload does not carry a stack limit.
const DefaultMaxStack = 64

// JSONCodec interprets payloads as JSON item documents with the conventional
// fields "id" (item type), "count" (quantity) and "max_stack".
type JSONCodec struct{}

// NewJSONCodec returns the default payload codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) decode(payload []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode item payload: %w", err)
	}
	return doc, nil
}

// Equivalent deep-compares the two documents with their quantity cleared, so
// a stack of 3 and a stack of 40 of the same item compare equal.
func (c *JSONCodec) Equivalent(a, b []byte) bool {
	da, err := c.decode(a)
	if err != nil {
		return false
	}
	db, err := c.decode(b)
	if err != nil {
		return false
	}
	delete(da, "count")
	delete(db, "count")
	return reflect.DeepEqual(da, db)
}

// MaxUnitsPerStack reads the payload's max_stack property.
func (c *JSONCodec) MaxUnitsPerStack(payload []byte) int {
	doc, err := c.decode(payload)
	if err != nil {
		return DefaultMaxStack
	}
	if v, ok := doc["max_stack"].(float64); ok && v > 0 {
		return int(v)
	}
	return DefaultMaxStack
}

// TypeID reads the payload's item-type id.
func (c *JSONCodec) TypeID(payload []byte) string {
	doc, err := c.decode(payload)
	if err != nil {
		return ""
	}
	id, _ := doc["id"].(string)
	return id
}

// Ensure JSONCodec implements Codec
var _ Codec = (*JSONCodec)(nil)
