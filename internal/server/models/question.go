package models

import "time"

// Question is a free-text Q&A record; both sides are sealed ciphertext.
type Question struct {
	ID        string
	UserID    string
	Question  []byte
	Answer    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
