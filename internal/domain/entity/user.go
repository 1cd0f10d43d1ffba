package entity

import "time"

// User roles. Staff can manage invoices day to day; destructive operations
// (delete, cancel, void) require admin.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an account scoped to one business.
type User struct {
	ID           string
	BusinessID   string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
