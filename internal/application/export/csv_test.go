package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytrack/core/internal/domain/entities"
)

func exportTask(mutate func(*entities.Task)) *entities.Task {
	task := &entities.Task{
		ID:       uuid.New(),
		Title:    "Read chapter 4",
		Subject:  "History",
		Priority: entities.PriorityMedium,
		Status:   entities.StatusPending,
	}
	if mutate != nil {
		mutate(task)
	}
	return task
}

func TestWriteCSV_EmptyListIsHeaderOnly(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, `"Title","Subject","Priority","Status","Deadline"`+"\n", buf.String())
}

func TestWriteCSV_EveryFieldQuoted(t *testing.T) {
	deadline := time.Date(2025, 2, 7, 9, 0, 0, 0, time.UTC)
	task := exportTask(func(task *entities.Task) {
		task.Deadline = &deadline
	})

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, []*entities.Task{task}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Read chapter 4","History","medium","pending","2/7/2025"`, lines[1])
}

func TestWriteCSV_QuotesDoubledAndCommasKept(t *testing.T) {
	task := exportTask(func(task *entities.Task) {
		task.Title = `Review "Othello", Act 2`
	})

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, []*entities.Task{task}))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, `Review "Othello", Act 2`, records[1][0])
}

func TestWriteCSV_AbsentDeadlineIsEmptyField(t *testing.T) {
	task := exportTask(nil)

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, []*entities.Task{task}))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", records[1][4])
}

func TestWriteCSV_PreservesInputOrder(t *testing.T) {
	tasks := []*entities.Task{
		exportTask(func(task *entities.Task) { task.Title = "first" }),
		exportTask(func(task *entities.Task) { task.Title = "second" }),
		exportTask(func(task *entities.Task) { task.Title = "third" }),
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, tasks))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "first", records[1][0])
	assert.Equal(t, "second", records[2][0])
	assert.Equal(t, "third", records[3][0])
}
