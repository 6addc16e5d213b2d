package models

import "time"

// Category is a node in the per-user category forest. Name and Description
// are sealed ciphertext. ParentID is empty for roots. Private is the node's
// own flag; effective privacy (inherited from ancestors) is derived per
// request and never stored.
type Category struct {
	ID               string
	UserID           string
	Name             []byte
	Description      []byte
	ParentID         string
	Private          bool
	IntentionalCount int
	Color            string
	Count            int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
