package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelists(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		quantity int
		expected bool
	}{
		{
			name:     "stock covers several more sales",
			stock:    48,
			quantity: 16,
			expected: false,
		},
		{
			name:     "stock covers exactly one more sale",
			stock:    16,
			quantity: 16,
			expected: false,
		},
		{
			name:     "stock below one sale quantity",
			stock:    15,
			quantity: 16,
			expected: true,
		},
		{
			name:     "stock exhausted",
			stock:    0,
			quantity: 16,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Delists(tt.stock, tt.quantity))
		})
	}
}
