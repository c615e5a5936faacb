package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/ports"
)

// MemoryTaskRepository implements ports.TaskRepository in process memory. It
// mirrors the Postgres adapter's filter, ordering, and ownership semantics
// and backs the unit and handler tests.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*entities.Task
}

// NewMemoryTaskRepository creates an empty in-memory repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[uuid.UUID]*entities.Task)}
}

// Find retrieves tasks matching filter, ordered per sort with id as the
// secondary key, matching the SQL adapter's ordering.
func (r *MemoryTaskRepository) Find(ctx context.Context, filter ports.FilterSpec, sortSpec ports.SortSpec) ([]*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*entities.Task{}
	for _, task := range r.tasks {
		if matches(task, filter) {
			matched = append(matched, task.Clone())
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], sortSpec)
	})

	return matched, nil
}

func matches(task *entities.Task, filter ports.FilterSpec) bool {
	if task.Owner != filter.Owner {
		return false
	}
	if filter.Subject != nil && !strings.Contains(strings.ToLower(task.Subject), strings.ToLower(*filter.Subject)) {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.DeadlineFrom != nil && (task.Deadline == nil || task.Deadline.Before(*filter.DeadlineFrom)) {
		return false
	}
	if filter.DeadlineTo != nil && (task.Deadline == nil || task.Deadline.After(*filter.DeadlineTo)) {
		return false
	}
	return true
}

func less(a, b *entities.Task, spec ports.SortSpec) bool {
	cmp := 0
	switch spec.Field {
	case ports.SortByDeadline:
		cmp = compareDeadlines(a.Deadline, b.Deadline, spec.Descending)
	case ports.SortByPriority:
		cmp = compareInts(a.Priority.Rank(), b.Priority.Rank())
	case ports.SortByCreatedAt:
		cmp = compareTimes(a.CreatedAt, b.CreatedAt)
	}

	if spec.Descending {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.ID.String() < b.ID.String()
}

// compareDeadlines orders nil deadlines last regardless of direction, same as
// NULLS LAST in the SQL adapter. The descending flag is needed because the
// caller negates the comparison afterwards.
func compareDeadlines(a, b *time.Time, descending bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if descending {
			return -1
		}
		return 1
	case b == nil:
		if descending {
			return 1
		}
		return -1
	default:
		return compareTimes(*a, *b)
	}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DistinctSubjects returns the owner's distinct non-empty subjects, sorted.
func (r *MemoryTaskRepository) DistinctSubjects(ctx context.Context, owner uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, task := range r.tasks {
		if task.Owner == owner && task.Subject != "" {
			seen[task.Subject] = struct{}{}
		}
	}

	subjects := make([]string, 0, len(seen))
	for s := range seen {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	return subjects, nil
}

// Insert stores a task record.
func (r *MemoryTaskRepository) Insert(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task.Clone()
	return task.Clone(), nil
}

// UpdateByID applies a partial update with the same ownership rule as the
// SQL adapter: a foreign or unknown id yields ErrTaskNotFound.
func (r *MemoryTaskRepository) UpdateByID(ctx context.Context, owner, id uuid.UUID, patch ports.TaskPatch) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.Owner != owner {
		return nil, entities.ErrTaskNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Subject != nil {
		task.Subject = *patch.Subject
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Deadline != nil {
		d := *patch.Deadline
		task.Deadline = &d
	}
	if patch.Subtasks != nil {
		task.Subtasks = make(entities.Subtasks, len(*patch.Subtasks))
		copy(task.Subtasks, *patch.Subtasks)
	}
	task.UpdatedAt = time.Now().UTC()

	return task.Clone(), nil
}

// DeleteByID removes the task identified by (owner, id).
func (r *MemoryTaskRepository) DeleteByID(ctx context.Context, owner, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.Owner != owner {
		return entities.ErrTaskNotFound
	}

	delete(r.tasks, id)
	return nil
}
