package economy

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Service is the collaborator contract for moving currency between player
// accounts. The game economy implements this in production; the marketplace
// only requires that a returned error means no money moved.
type Service interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// ErrInsufficientFunds is returned when the paying account cannot cover the
// amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is an in-memory Service for development and tests. Accounts start
// at the configured opening balance on first touch.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]int64
	opening  int64
}

// NewLedger creates a ledger whose accounts open with the given balance.
func NewLedger(opening int64) *Ledger {
	return &Ledger{
		balances: make(map[string]int64),
		opening:  opening,
	}
}

func (l *Ledger) balanceLocked(account string) int64 {
	if _, ok := l.balances[account]; !ok {
		l.balances[account] = l.opening
	}
	return l.balances[account]
}

// Transfer moves amount from one account to the other, atomically.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative transfer amount %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceLocked(from) < amount {
		return fmt.Errorf("%w: account %s", ErrInsufficientFunds, from)
	}
	l.balanceLocked(to)
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Balance returns the account's current balance.
func (l *Ledger) Balance(account string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(account)
}

// Ensure Ledger implements Service
var _ Service = (*Ledger)(nil)
