package domain

import "time"

// Wallet holds a user's stored balance, credited when a subscription top-up
// transaction reaches PAID.
type Wallet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Currency  string    `json:"currency"`
	Balance   int64     `json:"balance"` // In smallest currency unit
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
