package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONCodecEquivalent(t *testing.T) {
	c := NewJSONCodec()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same item different counts", `{"id":"stone","count":3}`, `{"id":"stone","count":40}`, true},
		{"count absent on one side", `{"id":"stone"}`, `{"id":"stone","count":12}`, true},
		{"different item types", `{"id":"stone","count":1}`, `{"id":"dirt","count":1}`, false},
		{"different extra properties", `{"id":"sword","enchant":"sharpness"}`, `{"id":"sword","enchant":"fire"}`, false},
		{"matching nested properties", `{"id":"sword","meta":{"dmg":7}}`, `{"id":"sword","meta":{"dmg":7},"count":1}`, true},
		{"unreadable left side", `garbage`, `{"id":"stone"}`, false},
		{"unreadable right side", `{"id":"stone"}`, `garbage`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Equivalent([]byte(tt.a), []byte(tt.b)))
		})
	}
}

func TestJSONCodecMaxUnitsPerStack(t *testing.T) {
	c := NewJSONCodec()

	assert.Equal(t, 16, c.MaxUnitsPerStack([]byte(`{"id":"ender_pearl","max_stack":16}`)))
	assert.Equal(t, DefaultMaxStack, c.MaxUnitsPerStack([]byte(`{"id":"stone"}`)))
	assert.Equal(t, DefaultMaxStack, c.MaxUnitsPerStack([]byte(`{"id":"stone","max_stack":0}`)))
	assert.Equal(t, DefaultMaxStack, c.MaxUnitsPerStack([]byte(`garbage`)))
}

func TestJSONCodecTypeID(t *testing.T) {
	c := NewJSONCodec()

	assert.Equal(t, "stone", c.TypeID([]byte(`{"id":"stone","count":64}`)))
	assert.Equal(t, "", c.TypeID([]byte(`{"count":64}`)))
	assert.Equal(t, "", c.TypeID([]byte(`{"id":7}`)), "non-string id is unreadable")
	assert.Equal(t, "", c.TypeID([]byte(`garbage`)))
}
