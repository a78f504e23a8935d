package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/schedule"
)

func TasksToCSV(tasks []schedule.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Link", "Note", "Completed", "Start", "Duration (days)", "End", "Created"}); err != nil {
		return err
	}

	for _, task := range tasks {
		row := []string{
			task.ID,
			task.Title,
			task.Link,
			task.Note,
			fmt.Sprintf("%t", task.Completed),
			task.StartDate.String(),
			fmt.Sprintf("%d", task.Duration),
			task.End().String(),
			task.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func ActivityToCSV(days []activity.DailyActivity, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Day", "Solved", "Level"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Day.String(),
			fmt.Sprintf("%d", d.Delta),
			fmt.Sprintf("%d", d.Level),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
