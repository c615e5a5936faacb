package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
)

// SortField is the closed set of fields a caller may sort by. Anything outside
// this set is rejected before it reaches a repository.
type SortField string

const (
	SortByDeadline  SortField = "deadline"
	SortByPriority  SortField = "priority"
	SortByCreatedAt SortField = "createdAt"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByDeadline, SortByPriority, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// FilterSpec is a validated, server-trusted description of which tasks to
// select. Owner is always present and always injected server-side; it is the
// multi-tenancy boundary. Nil optional fields mean "no constraint".
type FilterSpec struct {
	Owner        uuid.UUID
	Subject      *string // case-insensitive substring match
	Priority     *entities.Priority
	Status       *entities.Status
	DeadlineFrom *time.Time // inclusive
	DeadlineTo   *time.Time // inclusive
}

// SortSpec describes result ordering. Field is guaranteed valid by the query
// engine before the spec reaches a repository.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// TaskPatch carries a partial update. Nil fields are left untouched, which is
// what lets the calendar reschedule send a deadline-only update without
// clobbering concurrent edits to other fields.
type TaskPatch struct {
	Title       *string
	Subject     *string
	Description *string
	Priority    *entities.Priority
	Status      *entities.Status
	Deadline    *time.Time
	Subtasks    *entities.Subtasks
}

// IsEmpty reports whether the patch would change nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Subject == nil && p.Description == nil &&
		p.Priority == nil && p.Status == nil && p.Deadline == nil && p.Subtasks == nil
}

// TaskRepository defines the store adapter contract. Every owner-scoped
// operation verifies ownership before mutating and returns
// entities.ErrTaskNotFound when the record does not belong to the caller, so
// a probe with a foreign ID is indistinguishable from a miss.
type TaskRepository interface {
	Find(ctx context.Context, filter FilterSpec, sort SortSpec) ([]*entities.Task, error)
	DistinctSubjects(ctx context.Context, owner uuid.UUID) ([]string, error)
	Insert(ctx context.Context, task *entities.Task) (*entities.Task, error)
	UpdateByID(ctx context.Context, owner, id uuid.UUID, patch TaskPatch) (*entities.Task, error)
	DeleteByID(ctx context.Context, owner, id uuid.UUID) error
}

// SubjectCache caches the distinct-subject list per owner for filter
// autocompletion. Implementations must treat a miss and an unavailable cache
// identically: the caller falls back to the repository either way.
type SubjectCache interface {
	Get(ctx context.Context, owner uuid.UUID) ([]string, bool)
	Set(ctx context.Context, owner uuid.UUID, subjects []string)
	Invalidate(ctx context.Context, owner uuid.UUID)
}
