package entity

import "time"

// Contact is a client of the business. Invoices copy its details as a
// snapshot at creation time instead of referencing it live.
type Contact struct {
	ID         string
	BusinessID string
	Name       string
	Email      string
	Phone      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
