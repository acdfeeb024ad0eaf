// Package repository keeps the history of dispatched alerts.
package repository

import (
	"context"
	"time"
)

// Status is the lifecycle state of an alert.
type Status string

// Alert statuses.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Alert is one dispatched alert for a fixture.
type Alert struct {
	ID             string    `json:"id"`
	FixtureID      int64     `json:"fixture_id"`
	Match          string    `json:"match"`
	League         string    `json:"league"`
	Minute         int       `json:"minute"`
	Score          string    `json:"score"`
	Classification string    `json:"classification"`
	Confidence     float64   `json:"confidence"`
	Status         Status    `json:"status"`
	AlertedAt      time.Time `json:"alerted_at"`
}

// Stats summarises the alert history.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Last24h   int `json:"last_24h"`
}

// Store provides read/write access to alert history.
type Store interface {
	// IsAlerted reports whether the fixture was alerted within the memory window.
	IsAlerted(ctx context.Context, fixtureID int64) bool

	// Record stores an alert, assigning an ID and timestamp when missing.
	// A second alert for the same fixture replaces the first.
	Record(ctx context.Context, a Alert) (Alert, error)

	// SetStatus updates the status of a fixture's alert.
	// Returns ErrNotFound if the fixture has no alert.
	SetStatus(ctx context.Context, fixtureID int64, status Status) error

	// Get returns the alert for a fixture.
	// Returns ErrNotFound if the fixture has no alert.
	Get(ctx context.Context, fixtureID int64) (Alert, error)

	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]Alert, error)

	// Cleanup drops alerts older than the memory window and returns how many were removed.
	Cleanup(ctx context.Context) int

	Stats(ctx context.Context) Stats

	Count(ctx context.Context) int
}
