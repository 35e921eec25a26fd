package sync

import (
	"context"
	"time"

	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/google/uuid"
)

// RunStatus represents the terminal state of a reconciliation cycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Trigger says what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Counts aggregates per-run record outcomes.
type Counts struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Errors    int
}

// Add merges another set of counts into this one.
func (c *Counts) Add(other Counts) {
	c.Processed += other.Processed
	c.Created += other.Created
	c.Updated += other.Updated
	c.Skipped += other.Skipped
	c.Errors += other.Errors
}

// Run is the audit record of one reconciliation cycle for one store. It is
// created in the running state before the first step and finalized exactly
// once; a finalized run is never mutated again.
type Run struct {
	ID          uuid.UUID
	StoreID     string
	TriggeredBy Trigger
	Status      RunStatus
	Counts      Counts
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// NewRun creates a run in the running state.
func NewRun(storeID string, trigger Trigger, now time.Time) *Run {
	return &Run{
		ID:          uuid.New(),
		StoreID:     storeID,
		TriggeredBy: trigger,
		Status:      RunStatusRunning,
		StartedAt:   now,
	}
}

// Complete finalizes the run as completed with its aggregate counts.
func (r *Run) Complete(counts Counts, now time.Time) {
	r.Counts = counts
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
}

// Fail finalizes the run as failed, recording whatever counts were reached.
func (r *Run) Fail(counts Counts, detail string, now time.Time) {
	r.Counts = counts
	r.Status = RunStatusFailed
	r.Error = detail
	r.CompletedAt = &now
}

// Cancel finalizes the run as cancelled, distinguishing an operator stop
// from a genuine error.
func (r *Run) Cancel(counts Counts, now time.Time) {
	r.Counts = counts
	r.Status = RunStatusCancelled
	r.CompletedAt = &now
}

// IsFinalized reports whether the run has reached a terminal status.
func (r *Run) IsFinalized() bool {
	return r.Status != RunStatusRunning
}

// ErrRunNotFound is returned when a run id resolves to nothing.
var ErrRunNotFound = shared.NewDomainError("RUN_NOT_FOUND", "Sync run not found")

// RunRepository defines the interface for sync run persistence.
type RunRepository interface {
	// Create persists a freshly started run
	Create(ctx context.Context, run *Run) error

	// Update persists the finalized state of a run
	Update(ctx context.Context, run *Run) error

	// FindByID finds a run by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// FindRecent returns runs ordered by start time descending
	FindRecent(ctx context.Context, storeID string, limit, offset int) ([]Run, error)
}
