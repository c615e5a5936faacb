package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/core/internal/adapters/repository"
	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
)

// fakeSubjectCache records cache traffic so tests can assert on hit/miss and
// invalidation behavior.
type fakeSubjectCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID][]string
	gets, sets  int
	invalidates int
}

func newFakeSubjectCache() *fakeSubjectCache {
	return &fakeSubjectCache{entries: map[uuid.UUID][]string{}}
}

func (c *fakeSubjectCache) Get(ctx context.Context, owner uuid.UUID) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	subjects, ok := c.entries[owner]
	return subjects, ok
}

func (c *fakeSubjectCache) Set(ctx context.Context, owner uuid.UUID, subjects []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[owner] = subjects
}

func (c *fakeSubjectCache) Invalidate(ctx context.Context, owner uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	delete(c.entries, owner)
}

func newTestTaskService(t *testing.T) (*TaskService, *repository.MemoryTaskRepository, *fakeSubjectCache) {
	t.Helper()
	repo := repository.NewMemoryTaskRepository()
	cache := newFakeSubjectCache()
	return NewTaskService(repo, cache, logger.NewNop()), repo, cache
}

func seedTask(t *testing.T, repo *repository.MemoryTaskRepository, owner uuid.UUID, mutate func(*entities.Task)) *entities.Task {
	t.Helper()

	now := time.Now().UTC()
	task := &entities.Task{
		ID:        uuid.New(),
		Owner:     owner,
		Title:     "study",
		Priority:  entities.PriorityMedium,
		Status:    entities.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(task)
	}

	created, err := repo.Insert(context.Background(), task)
	require.NoError(t, err)
	return created
}

func deadlineAt(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}
