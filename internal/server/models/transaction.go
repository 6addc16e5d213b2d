package models

import "time"

// Reasons recorded on quantity transactions.
const (
	ReasonInitial  = "initial"
	ReasonConsumed = "consumed"
	ReasonLost     = "lost"
	ReasonBorrowed = "borrowed"
	ReasonGifted   = "gifted"
	ReasonOther    = "other"
)

// QuantityTransaction journals a change to an item's quantity. The item's
// Quantity field is the running sum of its deltas.
type QuantityTransaction struct {
	ID        string
	ItemID    string
	Delta     float64
	Note      string
	Reason    string
	CreatedAt time.Time
}
