// Package export renders an ordered task list as CSV text or a paginated
// tabular PDF. It never inspects how the list was produced and never mutates
// it, so the same filtered list the client sees is exactly what gets
// exported.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/studytrack/core/internal/domain/entities"
)

// Columns is the fixed export column order shared by CSV and PDF output.
var Columns = []string{"Title", "Subject", "Priority", "Status", "Deadline"}

// deadlineLayout matches the short locale date the task list displays.
const deadlineLayout = "1/2/2006"

// WriteCSV writes the header row followed by one record per task. Every field
// is quoted and embedded quotes are doubled, regardless of content, so the
// output parses identically no matter what the titles contain. An absent
// deadline renders as an empty field.
func WriteCSV(w io.Writer, tasks []*entities.Task) error {
	if err := writeCSVRecord(w, Columns); err != nil {
		return err
	}

	for _, task := range tasks {
		record := []string{
			task.Title,
			task.Subject,
			string(task.Priority),
			string(task.Status),
			formatDeadline(task.Deadline, ""),
		}
		if err := writeCSVRecord(w, record); err != nil {
			return err
		}
	}

	return nil
}

func writeCSVRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}

	if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\n"); err != nil {
		return fmt.Errorf("failed to write csv record: %w", err)
	}
	return nil
}

func formatDeadline(deadline *time.Time, placeholder string) string {
	if deadline == nil {
		return placeholder
	}
	return deadline.UTC().Format(deadlineLayout)
}
