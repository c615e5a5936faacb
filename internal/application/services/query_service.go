package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/ports"
)

const dateLayout = "2006-01-02"

// DefaultSort orders by creation time, newest first, matching what the task
// list shows when the caller supplies no sortBy.
var DefaultSort = ports.SortSpec{Field: ports.SortByCreatedAt, Descending: true}

// BuildQuery translates raw request parameters into a validated filter and
// sort specification. Owner is never read from params; it is injected here as
// an equality constraint, which makes every downstream query owner-exclusive
// by construction.
//
// Absent or blank parameters impose no constraint. Malformed values are
// rejected with a ValidationError rather than silently ignored.
func BuildQuery(owner uuid.UUID, params ports.TaskQueryParams) (ports.FilterSpec, ports.SortSpec, error) {
	filter := ports.FilterSpec{Owner: owner}

	if subject := strings.TrimSpace(params.Subject); subject != "" {
		filter.Subject = &subject
	}

	if params.Priority != "" {
		p := entities.Priority(params.Priority)
		if !p.IsValid() {
			return ports.FilterSpec{}, ports.SortSpec{}, entities.NewValidationError("priority", "must be one of low, medium, high")
		}
		filter.Priority = &p
	}

	if params.Status != "" {
		s := entities.Status(params.Status)
		if !s.IsValid() {
			return ports.FilterSpec{}, ports.SortSpec{}, entities.NewValidationError("status", "must be one of pending, completed")
		}
		filter.Status = &s
	}

	if params.From != "" {
		from, err := parseDateBound(params.From, false)
		if err != nil {
			return ports.FilterSpec{}, ports.SortSpec{}, entities.NewValidationError("from", "must be a date in the form 2006-01-02")
		}
		filter.DeadlineFrom = &from
	}

	if params.To != "" {
		to, err := parseDateBound(params.To, true)
		if err != nil {
			return ports.FilterSpec{}, ports.SortSpec{}, entities.NewValidationError("to", "must be a date in the form 2006-01-02")
		}
		filter.DeadlineTo = &to
	}

	if filter.DeadlineFrom != nil && filter.DeadlineTo != nil && filter.DeadlineFrom.After(*filter.DeadlineTo) {
		return ports.FilterSpec{}, ports.SortSpec{}, entities.NewValidationError("from", "must not be after to")
	}

	sort, err := parseSortBy(params.SortBy)
	if err != nil {
		return ports.FilterSpec{}, ports.SortSpec{}, err
	}

	return filter, sort, nil
}

// parseDateBound parses a calendar date as an inclusive bound: the start of
// day for lower bounds, the end of day for upper bounds. Dates are absolute
// instants in UTC.
func parseDateBound(value string, endOfDay bool) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// parseSortBy parses a compound "field:direction" token. The field must come
// from the allow-list; an unknown field is a validation error, never a silent
// fallback. A missing or unrecognized direction defaults to ascending.
func parseSortBy(raw string) (ports.SortSpec, error) {
	if raw == "" {
		return DefaultSort, nil
	}

	field, direction, _ := strings.Cut(raw, ":")
	sortField := ports.SortField(field)
	if !sortField.IsValid() {
		return ports.SortSpec{}, entities.NewValidationError("sortBy", "field must be one of deadline, priority, createdAt")
	}

	return ports.SortSpec{
		Field:      sortField,
		Descending: direction == "desc",
	}, nil
}
