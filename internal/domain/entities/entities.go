package entities

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	// ErrTaskNotFound covers both a missing task and a task owned by another
	// user. The two cases are indistinguishable to the caller so that task IDs
	// never leak across owners.
	ErrTaskNotFound = errors.New("task not found")

	ErrStoreUnavailable = errors.New("task store unavailable")
)

// ValidationError reports a request parameter the caller can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a named parameter.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Enums and types
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Subtask is a single checklist item on a task. Subtasks keep their insertion
// order and each one toggles independently of its siblings.
type Subtask struct {
	Title string `json:"title" validate:"required"`
	Done  bool   `json:"done"`
}

// Subtasks is stored as a single JSONB column.
type Subtasks []Subtask

// Value implements driver.Valuer.
func (s Subtasks) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subtasks: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Subtasks) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported subtasks source type %T", src)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to unmarshal subtasks: %w", err)
	}
	return nil
}

// Task represents a study task belonging to exactly one owner. Owner is the
// multi-tenancy boundary: every query and mutation is scoped to it.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Owner       uuid.UUID  `json:"-" db:"owner_id"`
	Title       string     `json:"title" db:"title"`
	Subject     string     `json:"subject" db:"subject"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	Deadline    *time.Time `json:"deadline" db:"deadline"`
	Subtasks    Subtasks   `json:"subtasks" db:"subtasks"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the task is done.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// HasDeadline reports whether the task carries a deadline. Tasks without one
// never count as "upcoming".
func (t *Task) HasDeadline() bool {
	return t.Deadline != nil
}

// Clone returns a deep copy, used by the in-memory store and the calendar
// rescheduler so callers can never alias stored state.
func (t *Task) Clone() *Task {
	cp := *t
	if t.Deadline != nil {
		d := *t.Deadline
		cp.Deadline = &d
	}
	if t.Subtasks != nil {
		cp.Subtasks = make(Subtasks, len(t.Subtasks))
		copy(cp.Subtasks, t.Subtasks)
	}
	return &cp
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities from least to most urgent. Used wherever tasks are
// sorted by priority so the order is semantic rather than alphabetical.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}
