// Package calendar maps deadline-bearing tasks onto calendar event intervals
// and reconciles local state after a drag or resize reschedules a deadline.
package calendar

import (
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
)

// View identifies the active calendar layout. Month view renders events as
// all-day; week and day views use the padded interval.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// EventDuration pads each event so it stays visible and draggable in week and
// day views; a zero-length interval would collapse to an invisible sliver.
const EventDuration = 30 * time.Minute

// EventClass styles an event by priority and status.
type EventClass string

const (
	ClassCompleted      EventClass = "event-completed"
	ClassHighPriority   EventClass = "event-high"
	ClassMediumPriority EventClass = "event-medium"
	ClassLowPriority    EventClass = "event-low"
)

// Event is a task projected onto the calendar as the interval
// [deadline, deadline+EventDuration].
type Event struct {
	ID     uuid.UUID      `json:"id"`
	Title  string         `json:"title"`
	Start  time.Time      `json:"start"`
	End    time.Time      `json:"end"`
	AllDay bool           `json:"all_day"`
	Class  EventClass     `json:"class"`
	Task   *entities.Task `json:"task"`
}

// EventsFromTasks maps each deadline-bearing task to an event. Tasks without
// a deadline have no place on the calendar and are skipped.
func EventsFromTasks(tasks []*entities.Task, view View) []Event {
	events := make([]Event, 0, len(tasks))
	for _, task := range tasks {
		if !task.HasDeadline() {
			continue
		}
		start := *task.Deadline
		events = append(events, Event{
			ID:     task.ID,
			Title:  task.Title,
			Start:  start,
			End:    start.Add(EventDuration),
			AllDay: view == ViewMonth,
			Class:  classFor(task.Priority, task.Status),
			Task:   task,
		})
	}
	return events
}

// classFor matches exhaustively on both enums so a new priority or status
// value cannot silently fall through to a default style.
func classFor(priority entities.Priority, status entities.Status) EventClass {
	switch status {
	case entities.StatusCompleted:
		return ClassCompleted
	case entities.StatusPending:
		switch priority {
		case entities.PriorityHigh:
			return ClassHighPriority
		case entities.PriorityMedium:
			return ClassMediumPriority
		case entities.PriorityLow:
			return ClassLowPriority
		}
	}
	return ClassLowPriority
}
