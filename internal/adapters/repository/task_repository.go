package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/ports"
)

// TaskRepository implements ports.TaskRepository against Postgres.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, owner_id, title, subject, description, priority, status, deadline, subtasks, created_at, updated_at`

// Find retrieves the tasks matching filter, ordered per sort. The WHERE
// clause always begins with the owner equality constraint; the sort column is
// resolved from the closed SortField set, never interpolated from input.
func (r *TaskRepository) Find(ctx context.Context, filter ports.FilterSpec, sort ports.SortSpec) ([]*entities.Task, error) {
	conditions := []string{"owner_id = $1"}
	args := []interface{}{filter.Owner}
	argIndex := 2

	if filter.Subject != nil {
		conditions = append(conditions, fmt.Sprintf("subject ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(*filter.Subject)+"%")
		argIndex++
	}

	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, *filter.Priority)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.DeadlineFrom != nil {
		conditions = append(conditions, fmt.Sprintf("deadline >= $%d", argIndex))
		args = append(args, *filter.DeadlineFrom)
		argIndex++
	}

	if filter.DeadlineTo != nil {
		conditions = append(conditions, fmt.Sprintf("deadline <= $%d", argIndex))
		args = append(args, *filter.DeadlineTo)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE %s
		ORDER BY %s, id
	`, taskColumns, strings.Join(conditions, " AND "), orderClause(sort))

	var tasks []*entities.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, storeErr("failed to find tasks", err)
	}

	return tasks, nil
}

// orderClause maps the validated sort spec to a safe ORDER BY expression.
// Priority sorts by urgency rank rather than alphabetically; tasks without a
// deadline sort last in either direction.
func orderClause(sort ports.SortSpec) string {
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	switch sort.Field {
	case ports.SortByDeadline:
		return "deadline " + direction + " NULLS LAST"
	case ports.SortByPriority:
		return "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 END " + direction
	case ports.SortByCreatedAt:
		return "created_at " + direction
	default:
		// Unreachable: the query engine rejects unknown fields.
		return "created_at " + direction
	}
}

// DistinctSubjects returns the owner's distinct non-empty subject values.
func (r *TaskRepository) DistinctSubjects(ctx context.Context, owner uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT subject FROM tasks
		WHERE owner_id = $1 AND subject <> ''
		ORDER BY subject
	`

	subjects := []string{}
	if err := r.db.SelectContext(ctx, &subjects, query, owner); err != nil {
		return nil, storeErr("failed to load distinct subjects", err)
	}

	return subjects, nil
}

// Insert creates a task record.
func (r *TaskRepository) Insert(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks (id, owner_id, title, subject, description, priority, status, deadline, subtasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Owner,
		task.Title,
		task.Subject,
		task.Description,
		task.Priority,
		task.Status,
		task.Deadline,
		task.Subtasks,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return nil, storeErr("failed to insert task", err)
	}

	return task, nil
}

// UpdateByID applies a partial update to the task identified by (owner, id).
// Ownership is part of the WHERE clause, so a foreign ID updates zero rows
// and surfaces as ErrTaskNotFound.
func (r *TaskRepository) UpdateByID(ctx context.Context, owner, id uuid.UUID, patch ports.TaskPatch) (*entities.Task, error) {
	sets := []string{}
	args := []interface{}{owner, id}
	argIndex := 3

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Subject != nil {
		addSet("subject", *patch.Subject)
	}
	if patch.Description != nil {
		addSet("description", *patch.Description)
	}
	if patch.Priority != nil {
		addSet("priority", *patch.Priority)
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.Deadline != nil {
		addSet("deadline", *patch.Deadline)
	}
	if patch.Subtasks != nil {
		addSet("subtasks", *patch.Subtasks)
	}

	addSet("updated_at", time.Now().UTC())

	query := fmt.Sprintf(`
		UPDATE tasks SET %s
		WHERE owner_id = $1 AND id = $2
		RETURNING %s
	`, strings.Join(sets, ", "), taskColumns)

	var task entities.Task
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, storeErr("failed to update task", err)
	}

	return &task, nil
}

// DeleteByID permanently removes the task identified by (owner, id).
func (r *TaskRepository) DeleteByID(ctx context.Context, owner, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE owner_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, owner, id)
	if err != nil {
		return storeErr("failed to delete task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

// storeErr wraps a driver error, surfacing connection loss as
// ErrStoreUnavailable so the transport layer can answer 503 instead of a
// generic 500.
func storeErr(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w", op, entities.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// escapeLike neutralizes LIKE metacharacters so a subject filter matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
