package store

import "time"

const (
	RefreshStatusRunning   = "running"
	RefreshStatusSucceeded = "succeeded"
	RefreshStatusFailed    = "failed"
)

// RefreshRun is one recorded refresh cycle of the dashboard.
type RefreshRun struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Error      *string
}
