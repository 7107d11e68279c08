package model

import "time"

// EventType identifies a blacklist mutation recorded in the event log.
type EventType string

const (
	EventBlacklistAdd    EventType = "BLACKLIST_ADD"
	EventBlacklistRemove EventType = "BLACKLIST_REMOVE"
)

// MarketEvent is an append-only record of a blacklist change, used by the
// relational backend to propagate mutations to every process sharing the
// database. Rows are marked processed rather than deleted so the table
// doubles as an audit log.
type MarketEvent struct {
	ID        int64     `json:"id"`
	Type      EventType `json:"type"`
	Item      string    `json:"item"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}
