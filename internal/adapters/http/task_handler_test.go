package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/core/internal/adapters/repository"
	"github.com/studytrack/core/internal/application/services"
	"github.com/studytrack/core/internal/domain/entities"
	"github.com/studytrack/core/internal/infrastructure/logger"
	"github.com/studytrack/core/internal/ports"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type handlerFixture struct {
	echo    *echo.Echo
	handler *TaskHandler
	repo    *repository.MemoryTaskRepository
	owner   uuid.UUID
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	log := logger.NewNop()
	repo := repository.NewMemoryTaskRepository()
	taskService := services.NewTaskService(repo, repository.NoopSubjectCache{}, log)
	statsService := services.NewStatsService(repo, log, 7*24*time.Hour, 5)

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	return &handlerFixture{
		echo:    e,
		handler: NewTaskHandler(taskService, statsService, log),
		repo:    repo,
		owner:   uuid.New(),
	}
}

// do runs one handler with the fixture owner installed, the way the auth
// middleware would install it.
func (f *handlerFixture) do(t *testing.T, method, target, body string, paramID string, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.Set(OwnerContextKey, f.owner)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return rec, h(c)
}

func (f *handlerFixture) seed(t *testing.T, owner uuid.UUID, mutate func(*entities.Task)) *entities.Task {
	t.Helper()
	now := time.Now().UTC()
	task := &entities.Task{
		ID:        uuid.New(),
		Owner:     owner,
		Title:     "untitled",
		Priority:  entities.PriorityMedium,
		Status:    entities.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(task)
	}
	stored, err := f.repo.Insert(context.Background(), task)
	require.NoError(t, err)
	return stored
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

func TestListTasks_EmptyListIsJSONArray(t *testing.T) {
	f := newHandlerFixture(t)

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks", "", "", f.handler.ListTasks)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
}

func TestListTasks_InvalidFilterRejected(t *testing.T) {
	f := newHandlerFixture(t)

	for _, target := range []string{
		"/api/v1/tasks?priority=urgent",
		"/api/v1/tasks?status=done",
		"/api/v1/tasks?from=2025-13-40",
		"/api/v1/tasks?from=2025-02-01&to=2025-01-01",
		"/api/v1/tasks?sortBy=owner:asc",
	} {
		_, err := f.do(t, http.MethodGet, target, "", "", f.handler.ListTasks)
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err), target)
	}
}

func TestListTasks_FiltersAndSorts(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, f.owner, func(task *entities.Task) {
		task.Title = "late"
		d := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
		task.Deadline = &d
	})
	f.seed(t, f.owner, func(task *entities.Task) {
		task.Title = "early"
		d := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
		task.Deadline = &d
	})

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks?sortBy=deadline:asc", "", "", f.handler.ListTasks)
	require.NoError(t, err)

	var resp TaskListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "early", resp.Tasks[0].Title)
	assert.Equal(t, "late", resp.Tasks[1].Title)
}

func TestListTasks_NeverReturnsOtherOwners(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, uuid.New(), func(task *entities.Task) { task.Title = "foreign" })
	f.seed(t, f.owner, func(task *entities.Task) { task.Title = "mine" })

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks", "", "", f.handler.ListTasks)
	require.NoError(t, err)

	var resp TaskListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "mine", resp.Tasks[0].Title)
}

func TestListTasks_MissingOwnerUnauthorized(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)

	err := f.handler.ListTasks(c)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestCreateTask_DefaultsApplied(t *testing.T) {
	f := newHandlerFixture(t)

	rec, err := f.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"  Read notes  "}`, "", f.handler.CreateTask)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var task entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "Read notes", task.Title)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, entities.StatusPending, task.Status)
}

func TestCreateTask_MissingTitleRejected(t *testing.T) {
	f := newHandlerFixture(t)

	_, err := f.do(t, http.MethodPost, "/api/v1/tasks", `{"subject":"Math"}`, "", f.handler.CreateTask)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestUpdateTask_ForeignTaskIsNotFound(t *testing.T) {
	f := newHandlerFixture(t)
	foreign := f.seed(t, uuid.New(), nil)

	_, err := f.do(t, http.MethodPut, "/api/v1/tasks/"+foreign.ID.String(), `{"status":"completed"}`, foreign.ID.String(), f.handler.UpdateTask)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestUpdateTask_MalformedIDRejected(t *testing.T) {
	f := newHandlerFixture(t)

	_, err := f.do(t, http.MethodPut, "/api/v1/tasks/not-a-uuid", `{"status":"completed"}`, "not-a-uuid", f.handler.UpdateTask)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestDeleteTask_OwnTaskSucceeds(t *testing.T) {
	f := newHandlerFixture(t)
	task := f.seed(t, f.owner, nil)

	rec, err := f.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), "", task.ID.String(), f.handler.DeleteTask)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = f.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), "", task.ID.String(), f.handler.DeleteTask)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestDashboardStats_Payload(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, f.owner, func(task *entities.Task) { task.Status = entities.StatusCompleted })
	f.seed(t, f.owner, nil)

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks/stats/dashboard", "", "", f.handler.DashboardStats)
	require.NoError(t, err)

	var stats ports.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
}

func TestSubjects_SortedDistinct(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, f.owner, func(task *entities.Task) { task.Subject = "Math" })
	f.seed(t, f.owner, func(task *entities.Task) { task.Subject = "Art" })
	f.seed(t, f.owner, func(task *entities.Task) { task.Subject = "Math" })

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks/meta/subjects", "", "", f.handler.Subjects)
	require.NoError(t, err)

	assert.JSONEq(t, `{"subjects":["Art","Math"]}`, rec.Body.String())
}

func TestExportCSV_HeadersAndBody(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, f.owner, func(task *entities.Task) {
		task.Title = "Essay"
		task.Subject = "English"
	})

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks/export/csv", "", "", f.handler.ExportCSV)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tasks.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Body.String(), `"Essay","English","medium","pending",""`)
}

func TestExportCSV_FilterErrorBeforeAnyBytes(t *testing.T) {
	f := newHandlerFixture(t)

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks/export/csv?priority=urgent", "", "", f.handler.ExportCSV)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	assert.Zero(t, rec.Body.Len())
}

func TestExportPDF_Headers(t *testing.T) {
	f := newHandlerFixture(t)
	f.seed(t, f.owner, nil)

	rec, err := f.do(t, http.MethodGet, "/api/v1/tasks/export/pdf", "", "", f.handler.ExportPDF)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tasks.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}
