package entity

import "time"

// Project groups jobs and invoices for one client engagement. The billing
// engine only checks existence and tenant ownership.
type Project struct {
	ID         string
	BusinessID string
	ContactID  string
	Name       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
