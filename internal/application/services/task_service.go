package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
	"github.com/studytrack/core/internal/ports"
)

// TaskService handles task CRUD and list queries. Every method takes the
// owner explicitly; there is no ambient "current user".
type TaskService struct {
	repo   ports.TaskRepository
	cache  ports.SubjectCache
	logger *logger.Logger
}

// NewTaskService creates a new task service. cache may be a no-op
// implementation when caching is disabled.
func NewTaskService(repo ports.TaskRepository, cache ports.SubjectCache, logger *logger.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListTasks returns the owner's tasks matching the raw query parameters,
// validated and ordered per the parsed sort specification.
func (s *TaskService) ListTasks(ctx context.Context, owner uuid.UUID, params ports.TaskQueryParams) ([]*entities.Task, error) {
	filter, sort, err := BuildQuery(owner, params)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// CreateTask creates a task for the given owner. Owner always comes from the
// authenticated caller, never from the request body.
func (s *TaskService) CreateTask(ctx context.Context, owner uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.NewValidationError("title", "must not be empty")
	}

	priority := req.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, entities.NewValidationError("priority", "must be one of low, medium, high")
	}

	status := req.Status
	if status == "" {
		status = entities.StatusPending
	}
	if !status.IsValid() {
		return nil, entities.NewValidationError("status", "must be one of pending, completed")
	}

	if err := validateSubtasks(req.Subtasks); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &entities.Task{
		ID:          uuid.New(),
		Owner:       owner,
		Title:       title,
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		Priority:    priority,
		Status:      status,
		Deadline:    req.Deadline,
		Subtasks:    req.Subtasks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Insert(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.cache.Invalidate(ctx, owner)
	s.logger.Info("Task created", "task_id", created.ID, "owner_id", owner)

	return created, nil
}

// UpdateTask applies a partial update to the owner's task. Nil request fields
// are left untouched.
func (s *TaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, entities.NewValidationError("body", "at least one field must be provided")
	}

	updated, err := s.repo.UpdateByID(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, owner)
	s.logger.Info("Task updated", "task_id", id, "owner_id", owner)

	return updated, nil
}

// UpdateDeadline issues a deadline-only update. The calendar rescheduler uses
// this so a drag never resends (and so never clobbers) any other field.
func (s *TaskService) UpdateDeadline(ctx context.Context, owner, id uuid.UUID, deadline time.Time) (*entities.Task, error) {
	updated, err := s.repo.UpdateByID(ctx, owner, id, ports.TaskPatch{Deadline: &deadline})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task rescheduled", "task_id", id, "owner_id", owner, "deadline", deadline)

	return updated, nil
}

// DeleteTask permanently removes the owner's task.
func (s *TaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, owner, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, owner)
	s.logger.Info("Task deleted", "task_id", id, "owner_id", owner)

	return nil
}

// Subjects returns the owner's distinct non-empty subject values for filter
// autocompletion, served from cache when possible.
func (s *TaskService) Subjects(ctx context.Context, owner uuid.UUID) ([]string, error) {
	if subjects, ok := s.cache.Get(ctx, owner); ok {
		return subjects, nil
	}

	subjects, err := s.repo.DistinctSubjects(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}

	s.cache.Set(ctx, owner, subjects)

	return subjects, nil
}

func buildPatch(req ports.UpdateTaskRequest) (ports.TaskPatch, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return ports.TaskPatch{}, entities.NewValidationError("title", "must not be empty")
		}
		req.Title = &title
	}

	if req.Priority != nil && !req.Priority.IsValid() {
		return ports.TaskPatch{}, entities.NewValidationError("priority", "must be one of low, medium, high")
	}

	if req.Status != nil && !req.Status.IsValid() {
		return ports.TaskPatch{}, entities.NewValidationError("status", "must be one of pending, completed")
	}

	if req.Subtasks != nil {
		if err := validateSubtasks(*req.Subtasks); err != nil {
			return ports.TaskPatch{}, err
		}
	}

	return ports.TaskPatch{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
		Subtasks:    req.Subtasks,
	}, nil
}

func validateSubtasks(subtasks entities.Subtasks) error {
	for i, st := range subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return entities.NewValidationError("subtasks", fmt.Sprintf("subtask %d has an empty title", i))
		}
	}
	return nil
}
