package entity

import "time"

// Job is a scheduled unit of field work, optionally invoiced afterwards.
type Job struct {
	ID         string
	BusinessID string
	ProjectID  string
	ContactID  string
	Title      string
	Status     string
	ScheduledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
