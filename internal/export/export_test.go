package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/cpcdash/internal/activity"
	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/schedule"
)

func sampleData(t *testing.T) ([]schedule.Task, []activity.DailyActivity) {
	t.Helper()
	start, err := dates.Parse("2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()

	tasks := []schedule.Task{
		{
			ID:        "a",
			Title:     "div2 virtual",
			Link:      "https://codeforces.com/contest/1900",
			Note:      "focus on C",
			Completed: true,
			StartDate: start,
			Duration:  1,
			CreatedAt: now,
		},
		{
			ID:        "b",
			Title:     "dp practice set",
			StartDate: start.AddDays(1),
			Duration:  7,
			CreatedAt: now,
		},
	}

	days := []activity.DailyActivity{
		{Day: start, Delta: 0, Level: 0},
		{Day: start.AddDays(1), Delta: 4, Level: 2},
	}
	return tasks, days
}

// ============================================================
// CSV
// ============================================================

func TestTasksToCSV(t *testing.T) {
	tasks, _ := sampleData(t)
	path := filepath.Join(t.TempDir(), "tasks.csv")

	if err := TasksToCSV(tasks, path); err != nil {
		t.Fatalf("TasksToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 2 data rows
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Title", "Link", "Note", "Completed", "Start", "Duration (days)", "End", "Created"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[1] != "div2 virtual" {
		t.Fatalf("Title = %q, want 'div2 virtual'", row[1])
	}
	if row[4] != "true" {
		t.Fatalf("Completed = %q, want true", row[4])
	}
	if row[5] != "2024-03-01" || row[7] != "2024-03-02" {
		t.Fatalf("window = %q..%q, want 2024-03-01..2024-03-02", row[5], row[7])
	}

	// Multi-day window: end is start + duration
	row = records[2]
	if row[6] != "7" || row[7] != "2024-03-09" {
		t.Fatalf("7-day window should end 2024-03-09, got duration %q end %q", row[6], row[7])
	}
}

func TestActivityToCSV(t *testing.T) {
	_, days := sampleData(t)
	path := filepath.Join(t.TempDir(), "activity.csv")

	if err := ActivityToCSV(days, path); err != nil {
		t.Fatalf("ActivityToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[2][0] != "2024-03-02" || records[2][1] != "4" || records[2][2] != "2" {
		t.Fatalf("wrong activity row: %v", records[2])
	}
}

func TestCSVEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := TasksToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("empty export should still write the header, got %d rows", len(records))
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	tasks, days := sampleData(t)
	path := filepath.Join(t.TempDir(), "export.json")

	if err := ToJSON(tasks, days, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		ExportedAt string `json:"exported_at"`
		TaskCount  int    `json:"task_count"`
		Tasks      []struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Start    string `json:"start"`
			Duration int    `json:"duration_days"`
			End      string `json:"end"`
		} `json:"tasks"`
		Activity []struct {
			Day    string `json:"day"`
			Solved int    `json:"solved"`
			Level  int    `json:"level"`
		} `json:"activity"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if decoded.TaskCount != 2 || len(decoded.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got count %d len %d", decoded.TaskCount, len(decoded.Tasks))
	}
	if decoded.Tasks[1].End != "2024-03-09" {
		t.Fatalf("wrong end: %s", decoded.Tasks[1].End)
	}
	if len(decoded.Activity) != 2 || decoded.Activity[1].Solved != 4 {
		t.Fatalf("wrong activity: %+v", decoded.Activity)
	}
	if _, err := time.Parse(time.RFC3339, decoded.ExportedAt); err != nil {
		t.Fatalf("exported_at not RFC3339: %q", decoded.ExportedAt)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["task_count"].(float64) != 0 {
		t.Fatalf("expected task_count 0, got %v", decoded["task_count"])
	}
}
