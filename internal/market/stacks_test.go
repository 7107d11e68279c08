package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStacks(t *testing.T) {
	payload := []byte(`{"id":"stone"}`)

	tests := []struct {
		name     string
		stock    int
		maxStack int
		units    []int
	}{
		{"exact multiple", 128, 64, []int{64, 64}},
		{"with remainder", 150, 64, []int{64, 64, 22}},
		{"below one stack", 10, 64, []int{10}},
		{"single unit limit", 3, 1, []int{1, 1, 1}},
		{"zero stock", 0, 64, nil},
		{"negative stock", -5, 64, nil},
		{"bogus stack limit treated as one", 3, 0, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stacks := SplitStacks(payload, tt.stock, tt.maxStack)
			require := assert.New(t)
			require.Len(stacks, len(tt.units))

			total := 0
			for i, s := range stacks {
				require.Equal(tt.units[i], s.Units)
				require.Equal(payload, s.Item)
				total += s.Units
			}
			if tt.stock > 0 {
				require.Equal(tt.stock, total, "no units lost or invented")
			}
		})
	}
}
