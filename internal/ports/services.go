package ports

import (
	"time"

	"github.com/studytrack/core/internal/domain/entities"
)

// TaskQueryParams is the raw, partially-trusted parameter set taken straight
// from the request. Empty strings mean "absent". The query engine turns this
// into a FilterSpec/SortSpec pair or a ValidationError; nothing downstream
// ever sees these raw values.
type TaskQueryParams struct {
	Subject  string
	Priority string
	Status   string
	From     string // calendar date, 2006-01-02
	To       string // calendar date, 2006-01-02
	SortBy   string // field[:direction]
}

// CreateTaskRequest carries the fields a caller may set on a new task. Owner
// is deliberately absent: it always comes from the authenticated caller.
type CreateTaskRequest struct {
	Title       string             `json:"title" validate:"required"`
	Subject     string             `json:"subject"`
	Description string             `json:"description"`
	Priority    entities.Priority  `json:"priority"`
	Status      entities.Status    `json:"status"`
	Deadline    *time.Time         `json:"deadline"`
	Subtasks    entities.Subtasks  `json:"subtasks"`
}

// UpdateTaskRequest carries a partial update; nil fields are untouched.
type UpdateTaskRequest struct {
	Title       *string            `json:"title"`
	Subject     *string            `json:"subject"`
	Description *string            `json:"description"`
	Priority    *entities.Priority `json:"priority"`
	Status      *entities.Status   `json:"status"`
	Deadline    *time.Time         `json:"deadline"`
	Subtasks    *entities.Subtasks `json:"subtasks"`
}

// DashboardStats is the aggregate payload for the dashboard and reports
// pages. Completed+Pending always equals Total.
type DashboardStats struct {
	Total     int              `json:"total"`
	Completed int              `json:"completed"`
	Pending   int              `json:"pending"`
	Upcoming  []*entities.Task `json:"upcoming"`
}
