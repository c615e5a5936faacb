package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/core/internal/adapters/repository"
	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
	"github.com/studytrack/core/internal/ports"
)

func newTestStatsService(t *testing.T, now time.Time) (*StatsService, *repository.MemoryTaskRepository) {
	t.Helper()
	repo := repository.NewMemoryTaskRepository()
	svc := NewStatsService(repo, logger.NewNop(), 7*24*time.Hour, 5)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestStatsService_CountsAlwaysBalance(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		seedTask(t, repo, owner, func(task *entities.Task) { task.Status = entities.StatusCompleted })
	}
	for i := 0; i < 4; i++ {
		seedTask(t, repo, owner, nil)
	}

	stats, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 4, stats.Pending)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)
}

func TestStatsService_CountsBalanceUnderFilter(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()

	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Subject = "Math"
		task.Status = entities.StatusCompleted
	})
	seedTask(t, repo, owner, func(task *entities.Task) { task.Subject = "Math" })
	seedTask(t, repo, owner, func(task *entities.Task) { task.Subject = "History" })

	stats, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{Subject: "math"})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)
}

func TestStatsService_UpcomingExclusions(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()

	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "in window"
		task.Deadline = deadlineAt("2025-01-12T09:00:00Z")
	})
	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "completed, in window"
		task.Status = entities.StatusCompleted
		task.Deadline = deadlineAt("2025-01-12T09:00:00Z")
	})
	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "no deadline"
	})
	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "past the window"
		task.Deadline = deadlineAt("2025-02-20T09:00:00Z")
	})
	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "already overdue"
		task.Deadline = deadlineAt("2025-01-09T09:00:00Z")
	})

	stats, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)

	require.Len(t, stats.Upcoming, 1)
	assert.Equal(t, "in window", stats.Upcoming[0].Title)
}

func TestStatsService_UpcomingOrderedAndCapped(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	svc.limit = 3
	owner := uuid.New()

	days := []string{"2025-01-14", "2025-01-11", "2025-01-13", "2025-01-12", "2025-01-15"}
	for _, day := range days {
		d := day
		seedTask(t, repo, owner, func(task *entities.Task) {
			task.Title = d
			task.Deadline = deadlineAt(d + "T09:00:00Z")
		})
	}

	stats, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)

	require.Len(t, stats.Upcoming, 3)
	for i := 1; i < len(stats.Upcoming); i++ {
		prev, cur := stats.Upcoming[i-1], stats.Upcoming[i]
		assert.False(t, cur.Deadline.Before(*prev.Deadline), "upcoming must be non-decreasing by deadline")
	}
	assert.Equal(t, "2025-01-11", stats.Upcoming[0].Title)
	assert.Equal(t, "2025-01-13", stats.Upcoming[2].Title)
}

func TestStatsService_UpcomingTieBrokenByID(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()

	deadline := deadlineAt("2025-01-12T09:00:00Z")
	for i := 0; i < 4; i++ {
		seedTask(t, repo, owner, func(task *entities.Task) { task.Deadline = deadline })
	}

	first, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)
	second, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)

	require.Len(t, first.Upcoming, 4)
	for i := range first.Upcoming {
		assert.Equal(t, first.Upcoming[i].ID, second.Upcoming[i].ID, "tie order must be deterministic")
	}
	for i := 1; i < len(first.Upcoming); i++ {
		assert.Less(t, first.Upcoming[i-1].ID.String(), first.Upcoming[i].ID.String())
	}
}

func TestStatsService_CallerWindowOverridesDefault(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()

	// Far outside the default 7-day window, inside the caller's range.
	seedTask(t, repo, owner, func(task *entities.Task) {
		task.Title = "far future"
		task.Deadline = deadlineAt("2025-03-15T09:00:00Z")
	})

	stats, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{
		From: "2025-03-01",
		To:   "2025-03-31",
	})
	require.NoError(t, err)

	require.Len(t, stats.Upcoming, 1)
	assert.Equal(t, "far future", stats.Upcoming[0].Title)
}

func TestStatsService_InvalidFilterRejected(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestStatsService(t, now)

	_, err := svc.Dashboard(context.Background(), uuid.New(), ports.TaskQueryParams{Priority: "urgent"})

	var validationErr *entities.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestStatsService_ReadOnly(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	svc, repo := newTestStatsService(t, now)
	owner := uuid.New()
	task := seedTask(t, repo, owner, func(task *entities.Task) {
		task.Deadline = deadlineAt("2025-01-12T09:00:00Z")
	})

	_, err := svc.Dashboard(context.Background(), owner, ports.TaskQueryParams{})
	require.NoError(t, err)

	after, err := repo.Find(context.Background(), ports.FilterSpec{Owner: owner}, DefaultSort)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, task.UpdatedAt, after[0].UpdatedAt)
}
