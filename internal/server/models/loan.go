package models

import "time"

// Loan records an item lent out. ReturnedAt is nil while the loan is open.
type Loan struct {
	ID         string
	ItemID     string
	Borrower   string
	Note       string
	Quantity   float64
	LentAt     time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
