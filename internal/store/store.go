// Package store keeps a history of generation runs behind a Repository
// interface. Memory is the default; SQLite persists across restarts.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for an unknown generation id.
var ErrNotFound = errors.New("generation not found")

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the stored summary of one generation run.
type Record struct {
	ID              string    `json:"id"`
	ProjectSlug     string    `json:"projectSlug"`
	Status          Status    `json:"status"`
	Phase           int       `json:"phase"`
	PhaseName       string    `json:"phaseName"`
	Success         bool      `json:"success"`
	Composite       float64   `json:"overallScore"`
	Verdict         string    `json:"verdict,omitempty"`
	MeetsThresholds bool      `json:"meetsThresholds"`
	Iterations      int       `json:"iterations"`
	OutputDir       string    `json:"outputDir,omitempty"`
	DeploymentURL   string    `json:"deploymentUrl,omitempty"`
	Errors          []string  `json:"errors,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt,omitzero"`
}

func (r *Record) clone() *Record {
	c := *r
	c.Errors = append([]string(nil), r.Errors...)
	return &c
}

// Repository stores generation records. Implementations are safe for
// concurrent use.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns the most recent records first, at most limit of them
	// (all when limit <= 0).
	List(ctx context.Context, limit int) ([]*Record, error)
	// Reset deletes every record.
	Reset(ctx context.Context) error
	Close() error
}

// Open returns the repository for driver ("memory" or "sqlite").
func Open(driver, path string) (Repository, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
