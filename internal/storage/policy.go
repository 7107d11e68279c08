package storage

// Delists reports whether a listing should be removed after a sale leaves it
// with the given stock. A listing that can never fulfil another whole sale is
// removed rather than left lingering in a sub-sellable state. Every backend
// applies this same threshold.
func Delists(stock, quantity int) bool {
	return stock < quantity
}
