// Package store archives solved schedules so that the CLI and the HTTP
// server can list and reload earlier runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/utkarsh5026/makespan/schedule"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("store: run not found")

// Store defines the persistence layer for runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, opts ListOptions) ([]*Run, int, error)
	DeleteRun(ctx context.Context, id string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// Run is one solved instance together with how it was solved.
type Run struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Durations         []int                    `json:"durations"`
	Processors        int                      `json:"processors"`
	Mode              string                   `json:"mode"`
	Makespan          int                      `json:"makespan"`
	HeuristicMakespan int                      `json:"heuristic_makespan,omitempty"`
	LowerBound        int                      `json:"lower_bound"`
	Utilization       float64                  `json:"utilization"`
	Proven            bool                     `json:"proven"`
	Nodes             int64                    `json:"nodes"`
	Elapsed           time.Duration            `json:"elapsed_ns"`
	Assignments       []schedule.ScheduledTask `json:"assignments"`
	CreatedAt         time.Time                `json:"created_at"`
}

// NewRun captures s under a fresh "run_" ID. Search statistics and the
// heuristic makespan are left for the caller to fill in.
func NewRun(name, mode string, s *schedule.Schedule) *Run {
	durations := s.Durations()
	return &Run{
		ID:          "run_" + uuid.New().String(),
		Name:        name,
		Durations:   durations,
		Processors:  s.Processors(),
		Mode:        mode,
		Makespan:    s.Makespan(),
		LowerBound:  schedule.LowerBound(durations, s.Processors()),
		Utilization: s.Utilization(),
		Assignments: s.Assignments(),
		CreatedAt:   time.Now().UTC(),
	}
}

// Schedule rebuilds the archived schedule, validating it again.
func (r *Run) Schedule() (*schedule.Schedule, error) {
	return schedule.New(r.Durations, r.Processors, r.Assignments)
}

// ListOptions configures list queries with pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// Clamp enforces limits (max 100, min 1).
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
