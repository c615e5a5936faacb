package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/studytrack/core/internal/application/calendar"
)

// CalendarEventsResponse wraps the projected event list.
type CalendarEventsResponse struct {
	Events []calendar.Event `json:"events"`
}

// RescheduleRequest carries the new deadline for a drag or resize commit.
type RescheduleRequest struct {
	Deadline time.Time `json:"deadline" validate:"required"`
}

// CalendarEvents handles GET /tasks/calendar/events. The same filter
// parameters as the list endpoint apply; view selects the projection.
func (h *TaskHandler) CalendarEvents(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	view := calendar.View(c.QueryParam("view"))
	if view == "" {
		view = calendar.ViewMonth
	}
	switch view {
	case calendar.ViewMonth, calendar.ViewWeek, calendar.ViewDay:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid calendar view")
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), owner, queryParams(c))
	if err != nil {
		return h.mapError(c, err, "Calendar events failed")
	}

	return c.JSON(http.StatusOK, CalendarEventsResponse{Events: calendar.EventsFromTasks(tasks, view)})
}

// RescheduleTask handles PATCH /tasks/:id/deadline, the commit half of a
// calendar reschedule. Only the deadline changes; everything else on the task
// is left as stored, and the merged task is returned so the client can
// replace its local copy.
func (h *TaskHandler) RescheduleTask(c echo.Context) error {
	owner, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Deadline.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "Deadline is required")
	}

	task, err := h.taskService.UpdateDeadline(c.Request().Context(), owner, id, req.Deadline)
	if err != nil {
		return h.mapError(c, err, "Reschedule failed")
	}

	return c.JSON(http.StatusOK, task)
}
