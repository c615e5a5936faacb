package http

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/studytrack/core/internal/application/export"
	"github.com/studytrack/core/internal/application/services"
	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
	"github.com/studytrack/core/internal/ports"
)

// OwnerContextKey is where the auth middleware stores the caller's identity.
const OwnerContextKey = "owner"

// TaskHandler handles task-related requests. The owner for every operation
// comes from the request context, never from client input.
type TaskHandler struct {
	taskService  *services.TaskService
	statsService *services.StatsService
	logger       *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *services.TaskService, statsService *services.StatsService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		statsService: statsService,
		logger:       logger,
	}
}

// TaskListResponse wraps the filtered task list.
type TaskListResponse struct {
	Tasks []*entities.Task `json:"tasks"`
}

// SubjectsResponse wraps the distinct-subject list.
type SubjectsResponse struct {
	Subjects []string `json:"subjects"`
}

// MessageResponse is a simple confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), owner, queryParams(c))
	if err != nil {
		return h.mapError(c, err, "List tasks failed")
	}

	if tasks == nil {
		tasks = []*entities.Task{}
	}
	return c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks})
}

// CreateTask handles POST /tasks. Any owner field in the body is ignored; the
// authenticated caller is always the owner.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), owner, req)
	if err != nil {
		return h.mapError(c, err, "Create task failed")
	}

	return c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/:id with a partial body.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), owner, id, req)
	if err != nil {
		return h.mapError(c, err, "Update task failed")
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), owner, id); err != nil {
		return h.mapError(c, err, "Delete task failed")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// DashboardStats handles GET /tasks/stats/dashboard.
func (h *TaskHandler) DashboardStats(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.statsService.Dashboard(c.Request().Context(), owner, queryParams(c))
	if err != nil {
		return h.mapError(c, err, "Dashboard stats failed")
	}

	return c.JSON(http.StatusOK, stats)
}

// Subjects handles GET /tasks/meta/subjects.
func (h *TaskHandler) Subjects(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	subjects, err := h.taskService.Subjects(c.Request().Context(), owner)
	if err != nil {
		return h.mapError(c, err, "Load subjects failed")
	}

	if subjects == nil {
		subjects = []string{}
	}
	return c.JSON(http.StatusOK, SubjectsResponse{Subjects: subjects})
}

// ExportCSV handles GET /tasks/export/csv: the currently filtered list as a
// CSV attachment.
func (h *TaskHandler) ExportCSV(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), owner, queryParams(c))
	if err != nil {
		return h.mapError(c, err, "CSV export failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.csv"`)
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)

	return export.WriteCSV(c.Response(), tasks)
}

// ExportPDF handles GET /tasks/export/pdf: the currently filtered list as a
// tabular PDF attachment. The document is rendered fully before any bytes are
// written so a formatting failure never yields a truncated file.
func (h *TaskHandler) ExportPDF(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), owner, queryParams(c))
	if err != nil {
		return h.mapError(c, err, "PDF export failed")
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, tasks, time.Now()); err != nil {
		h.logger.Error("PDF render failed", "error", err, "owner_id", owner)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render PDF")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *TaskHandler) mapError(c echo.Context, err error, logMsg string) error {
	var validationErr *entities.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	case errors.Is(err, entities.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Task store unavailable")
	default:
		h.logger.Error(logMsg, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// queryParams collects the raw filter/sort parameters. Validation happens in
// the query engine, not here.
func queryParams(c echo.Context) ports.TaskQueryParams {
	return ports.TaskQueryParams{
		Subject:  c.QueryParam("subject"),
		Priority: c.QueryParam("priority"),
		Status:   c.QueryParam("status"),
		From:     c.QueryParam("from"),
		To:       c.QueryParam("to"),
		SortBy:   c.QueryParam("sortBy"),
	}
}

func ownerFromContext(c echo.Context) (uuid.UUID, error) {
	owner, ok := c.Get(OwnerContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing caller identity")
	}
	return owner, nil
}
