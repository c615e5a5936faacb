package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
	"github.com/studytrack/core/internal/ports"
)

// StatsService computes dashboard aggregates over an owner's (optionally
// filtered) task set. It is read-only: no method mutates a task.
type StatsService struct {
	repo   ports.TaskRepository
	logger *logger.Logger

	window time.Duration
	limit  int
	now    func() time.Time
}

// NewStatsService creates a stats service. window is the forward-looking
// range used for the upcoming-deadline list when the caller supplies no
// explicit bounds; limit caps the list so the dashboard payload stays small.
func NewStatsService(repo ports.TaskRepository, logger *logger.Logger, window time.Duration, limit int) *StatsService {
	return &StatsService{
		repo:   repo,
		logger: logger,
		window: window,
		limit:  limit,
		now:    time.Now,
	}
}

// Dashboard returns totals, the completion breakdown, and the upcoming
// deadline list for the owner's tasks matching params.
//
// The upcoming window is [from, to] when the caller supplied those bounds
// (the reports page does), otherwise [now, now+window]. A supplied from
// without a to extends the window's length past from, and vice versa.
func (s *StatsService) Dashboard(ctx context.Context, owner uuid.UUID, params ports.TaskQueryParams) (*ports.DashboardStats, error) {
	// sortBy has no effect on aggregates; ignore it rather than reject a
	// list-page parameter set reused against the dashboard.
	params.SortBy = ""

	filter, _, err := BuildQuery(owner, params)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.Find(ctx, filter, ports.SortSpec{Field: ports.SortByDeadline})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for stats: %w", err)
	}

	stats := &ports.DashboardStats{Upcoming: []*entities.Task{}}
	for _, task := range tasks {
		stats.Total++
		if task.IsCompleted() {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}

	lower, upper := s.upcomingWindow(filter)
	for _, task := range tasks {
		if task.IsCompleted() || !task.HasDeadline() {
			continue
		}
		if task.Deadline.Before(lower) || task.Deadline.After(upper) {
			continue
		}
		stats.Upcoming = append(stats.Upcoming, task)
	}

	// Ascending by deadline, ties broken by ID so the order is deterministic.
	sort.SliceStable(stats.Upcoming, func(i, j int) bool {
		a, b := stats.Upcoming[i], stats.Upcoming[j]
		if a.Deadline.Equal(*b.Deadline) {
			return a.ID.String() < b.ID.String()
		}
		return a.Deadline.Before(*b.Deadline)
	})

	if len(stats.Upcoming) > s.limit {
		stats.Upcoming = stats.Upcoming[:s.limit]
	}

	return stats, nil
}

func (s *StatsService) upcomingWindow(filter ports.FilterSpec) (time.Time, time.Time) {
	lower := s.now().UTC()
	if filter.DeadlineFrom != nil {
		lower = *filter.DeadlineFrom
	}

	upper := lower.Add(s.window)
	if filter.DeadlineTo != nil {
		upper = *filter.DeadlineTo
	}

	return lower, upper
}
