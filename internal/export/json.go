package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/schedule"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	TaskCount  int        `json:"task_count"`
	Tasks      []jsonTask `json:"tasks"`
	Activity   []jsonDay  `json:"activity,omitempty"`
}

type jsonTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Link      string `json:"link,omitempty"`
	Note      string `json:"note,omitempty"`
	Completed bool   `json:"completed"`
	Start     string `json:"start"`
	Duration  int    `json:"duration_days"`
	End       string `json:"end"`
	CreatedAt string `json:"created_at"`
}

type jsonDay struct {
	Day    string `json:"day"`
	Solved int    `json:"solved"`
	Level  int    `json:"level"`
}

func ToJSON(tasks []schedule.Task, days []activity.DailyActivity, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TaskCount:  len(tasks),
	}

	for _, task := range tasks {
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        task.ID,
			Title:     task.Title,
			Link:      task.Link,
			Note:      task.Note,
			Completed: task.Completed,
			Start:     task.StartDate.String(),
			Duration:  task.Duration,
			End:       task.End().String(),
			CreatedAt: task.CreatedAt.Local().Format(time.RFC3339),
		})
	}

	for _, d := range days {
		export.Activity = append(export.Activity, jsonDay{
			Day:    d.Day.String(),
			Solved: d.Delta,
			Level:  d.Level,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
