package entity

import "time"

// Business is the tenant. Everything else carries its ID.
type Business struct {
	ID            string
	Name          string
	TaxID         string
	Email         string
	Phone         string
	Address       string
	Currency      string // default currency for new invoices
	InvoicePrefix string // default prefix for allocated invoice numbers
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
