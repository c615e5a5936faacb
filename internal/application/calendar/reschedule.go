package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
)

// Outcome is the terminal state of one reschedule interaction.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeReverted  Outcome = "reverted"
)

// DeadlineUpdater issues the single-field deadline update against the task's
// identity. Implemented by services.TaskService.
type DeadlineUpdater interface {
	UpdateDeadline(ctx context.Context, owner, id uuid.UUID, deadline time.Time) (*entities.Task, error)
}

// Rescheduler holds the calendar's local task snapshot and reconciles it with
// the authoritative store after each drag or resize.
//
// The discipline is apply-after-success: the snapshot is only changed once
// the update has succeeded, using the merged task the store returned. On
// failure the snapshot is untouched, so the calendar never shows a dropped
// event as committed when it was not. Each interaction runs
// Idle → Pending → {Committed | Reverted} in a single step; interactions on
// different tasks are independent.
type Rescheduler struct {
	updater DeadlineUpdater
	owner   uuid.UUID

	mu    sync.RWMutex
	tasks map[uuid.UUID]*entities.Task
}

// NewRescheduler creates a rescheduler over a snapshot of the owner's tasks.
func NewRescheduler(updater DeadlineUpdater, owner uuid.UUID, tasks []*entities.Task) *Rescheduler {
	snapshot := make(map[uuid.UUID]*entities.Task, len(tasks))
	for _, task := range tasks {
		snapshot[task.ID] = task.Clone()
	}
	return &Rescheduler{
		updater: updater,
		owner:   owner,
		tasks:   snapshot,
	}
}

// Reschedule moves the task's deadline to the interaction's resulting start
// instant. Only the deadline travels to the store; every other field of the
// local copy is replaced by the authoritative result untouched.
func (r *Rescheduler) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time) (Outcome, error) {
	r.mu.RLock()
	_, known := r.tasks[id]
	r.mu.RUnlock()
	if !known {
		return OutcomeReverted, entities.ErrTaskNotFound
	}

	updated, err := r.updater.UpdateDeadline(ctx, r.owner, id, newStart)
	if err != nil {
		return OutcomeReverted, err
	}

	r.mu.Lock()
	r.tasks[id] = updated.Clone()
	r.mu.Unlock()

	return OutcomeCommitted, nil
}

// Task returns the local copy of a task, or nil when it is not in the
// snapshot.
func (r *Rescheduler) Task(id uuid.UUID) *entities.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if task, ok := r.tasks[id]; ok {
		return task.Clone()
	}
	return nil
}

// Tasks returns the current snapshot.
func (r *Rescheduler) Tasks() []*entities.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entities.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, task.Clone())
	}
	return out
}
