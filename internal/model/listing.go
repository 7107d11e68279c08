package model

import "errors"

// Listing represents a posted sale offer: Quantity units of the stored item
// are sold per purchase at Price, drawn from Stock.
type Listing struct {
	ID       int64  `json:"id"`
	Seller   string `json:"seller"`
	Item     []byte `json:"item"`
	Stock    int    `json:"stock"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Validation errors for new listings.
var (
	ErrBadQuantity = errors.New("quantity per sale must be positive")
	ErrBadPrice    = errors.New("price must be positive")
	ErrBadStock    = errors.New("stock must cover at least one sale quantity")
	ErrNoSeller    = errors.New("seller is required")
	ErrNoItem      = errors.New("item payload is required")
)

// Validate checks the invariants expected of a listing at creation time.
// Stock may legitimately drop below Quantity later through partial sales;
// that state is handled by the auto-delist policy, not rejected here.
func (l *Listing) Validate() error {
	switch {
	case l.Seller == "":
		return ErrNoSeller
	case len(l.Item) == 0:
		return ErrNoItem
	case l.Quantity <= 0:
		return ErrBadQuantity
	case l.Price <= 0:
		return ErrBadPrice
	case l.Stock < l.Quantity:
		return ErrBadStock
	}
	return nil
}
