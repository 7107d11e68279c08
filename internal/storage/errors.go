package storage

import "errors"

// Error taxonomy shared by every backend. Backend-specific failures
// (connection loss, SQL errors) are wrapped with %w so callers can still
// branch on these sentinels.
var (
	// ErrNotFound indicates the listing id is unknown or no longer open.
	ErrNotFound = errors.New("listing not found")

	// ErrUnauthorized indicates the requester is neither the seller nor a
	// moderator for a mutation that requires one of the two.
	ErrUnauthorized = errors.New("not authorized for this listing")

	// ErrUseAddStock indicates the seller already has an open listing for an
	// equivalent item; the caller should add stock to it instead.
	ErrUseAddStock = errors.New("equivalent listing already open, add stock instead")

	// ErrRejected indicates the listing or mutation failed validation.
	ErrRejected = errors.New("listing rejected")

	// ErrBlacklisted indicates the item type may not be listed.
	ErrBlacklisted = errors.New("item is blacklisted")

	// ErrUnavailable indicates a purchase could not complete, either because
	// the listing vanished under the buyer or the currency transfer failed.
	// Either way no stock and no currency has moved.
	ErrUnavailable = errors.New("listing unavailable")

	// ErrBadPayload indicates a stored item payload could not be decoded.
	// Listings with unreadable payloads are skipped in list/search output but
	// never deleted, since the failure may be decoding drift rather than
	// corruption.
	ErrBadPayload = errors.New("stored item payload unreadable")
)
