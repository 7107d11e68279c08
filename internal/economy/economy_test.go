package economy

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerTransfer(t *testing.T) {
	l := NewLedger(1000)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, "buyer", "seller", 250))
	assert.Equal(t, int64(750), l.Balance("buyer"))
	assert.Equal(t, int64(1250), l.Balance("seller"))
}

func TestLedgerInsufficientFunds(t *testing.T) {
	l := NewLedger(100)
	ctx := context.Background()

	err := l.Transfer(ctx, "buyer", "seller", 101)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing moved.
	assert.Equal(t, int64(100), l.Balance("buyer"))
	assert.Equal(t, int64(100), l.Balance("seller"))
}

func TestLedgerNegativeAmount(t *testing.T) {
	l := NewLedger(100)

	err := l.Transfer(context.Background(), "buyer", "seller", -1)
	assert.Error(t, err)
	assert.Equal(t, int64(100), l.Balance("buyer"))
}

func TestLedgerZeroAmount(t *testing.T) {
	l := NewLedger(100)

	require.NoError(t, l.Transfer(context.Background(), "buyer", "seller", 0))
	assert.Equal(t, int64(100), l.Balance("buyer"))
	assert.Equal(t, int64(100), l.Balance("seller"))
}

func TestLedgerConcurrentTransfersConserveMoney(t *testing.T) {
	l := NewLedger(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = l.Transfer(ctx, "a", "b", 1)
				_ = l.Transfer(ctx, "b", "a", 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), l.Balance("a")+l.Balance("b"))
}
