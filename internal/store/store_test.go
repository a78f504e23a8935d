package store

import (
	"testing"
	"time"

	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(t *testing.T, str string) dates.Day {
	t.Helper()
	d, err := dates.Parse(str)
	if err != nil {
		t.Fatalf("parse day %s: %v", str, err)
	}
	return d
}

// ============================================================
// Store initialization and migration
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 2 {
		t.Fatalf("expected user_version 2, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/cpcdash.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrationUpgradesLegacyTasks(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/legacy.db"

	// Build a v1 database by hand: single target_date, no duration.
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	legacy := `
	DROP TABLE tasks;
	CREATE TABLE tasks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		link        TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT '',
		completed   INTEGER NOT NULL DEFAULT 0,
		target_date TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	INSERT INTO tasks (id, title, target_date) VALUES ('old-1', 'legacy task', '2024-01-05');
	INSERT INTO tasks (id, title) VALUES ('old-2', 'dateless task');
	PRAGMA user_version = 1;
	`
	if _, err := s.db.Exec(legacy); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: migrateV2 should run.
	s, err = New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tasks, err := s.LoadTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	byID := map[string]schedule.Task{}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	if got := byID["old-1"]; got.StartDate != day(t, "2024-01-05") || got.Duration != 1 {
		t.Fatalf("legacy target_date should become a 1-day window: %+v", got)
	}
	if got := byID["old-2"]; got.StartDate.IsZero() || got.Duration != 1 {
		t.Fatalf("dateless legacy task should default to a 1-day window: %+v", got)
	}
}

// ============================================================
// Activity history
// ============================================================

func TestSaveAndLoadHistory(t *testing.T) {
	s := newTestStore(t)

	history := map[dates.Day]int{
		day(t, "2024-01-01"): 50,
		day(t, "2024-01-02"): 53,
	}
	if err := s.SaveHistory(history); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[day(t, "2024-01-02")] != 53 {
		t.Fatalf("wrong total loaded: %v", loaded)
	}
}

func TestSaveHistoryNeverLowers(t *testing.T) {
	s := newTestStore(t)
	d := day(t, "2024-01-01")

	s.SaveHistory(map[dates.Day]int{d: 50})
	// A save from stale in-memory state must not lower the stored row.
	s.SaveHistory(map[dates.Day]int{d: 10})

	loaded, _ := s.LoadHistory()
	if loaded[d] != 50 {
		t.Fatalf("stored total regressed: got %d, want 50", loaded[d])
	}
}

func TestSaveHistorySkipsNonPositive(t *testing.T) {
	s := newTestStore(t)
	s.SaveHistory(map[dates.Day]int{day(t, "2024-01-01"): 0})

	loaded, _ := s.LoadHistory()
	if len(loaded) != 0 {
		t.Fatal("zero totals must not be persisted")
	}
}

func TestLoadHistorySkipsMalformedRows(t *testing.T) {
	s := newTestStore(t)
	s.db.Exec(`INSERT INTO activity_history (day, total) VALUES ('garbage', 5)`)
	s.db.Exec(`INSERT INTO activity_history (day, total) VALUES ('2024-01-01', -3)`)
	s.db.Exec(`INSERT INTO activity_history (day, total) VALUES ('2024-01-02', 7)`)

	loaded, err := s.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("malformed rows should be skipped, got %v", loaded)
	}
	if loaded[day(t, "2024-01-02")] != 7 {
		t.Fatal("valid row should survive")
	}
}

func TestLoadHistoryEmpty(t *testing.T) {
	s := newTestStore(t)
	loaded, err := s.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatal("expected empty history")
	}
}

// ============================================================
// Tasks
// ============================================================

func testTask(t *testing.T, id, title, start string, duration int) schedule.Task {
	t.Helper()
	return schedule.Task{
		ID:        id,
		Title:     title,
		StartDate: day(t, start),
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
}

func TestSaveAndLoadTasks(t *testing.T) {
	s := newTestStore(t)

	tasks := []schedule.Task{
		testTask(t, "a", "newest", "2024-01-03", 2),
		testTask(t, "b", "older", "2024-01-01", 1),
	}
	tasks[1].Completed = true
	tasks[1].Link = "https://codeforces.com/problemset/problem/1/A"
	tasks[1].Note = "warmup"

	if err := s.SaveTasks(tasks); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(loaded))
	}
	// Order must survive the round trip.
	if loaded[0].ID != "a" || loaded[1].ID != "b" {
		t.Fatalf("insertion order lost: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if !loaded[1].Completed || loaded[1].Note != "warmup" {
		t.Fatalf("fields lost: %+v", loaded[1])
	}
	if loaded[0].StartDate != day(t, "2024-01-03") || loaded[0].Duration != 2 {
		t.Fatalf("window lost: %+v", loaded[0])
	}
}

func TestSaveTasksReplaces(t *testing.T) {
	s := newTestStore(t)
	s.SaveTasks([]schedule.Task{testTask(t, "a", "one", "2024-01-01", 1)})
	s.SaveTasks([]schedule.Task{testTask(t, "b", "two", "2024-01-02", 1)})

	loaded, _ := s.LoadTasks()
	if len(loaded) != 1 || loaded[0].ID != "b" {
		t.Fatalf("save should replace the collection: %+v", loaded)
	}
}

func TestSaveTasksEmpty(t *testing.T) {
	s := newTestStore(t)
	s.SaveTasks([]schedule.Task{testTask(t, "a", "one", "2024-01-01", 1)})
	if err := s.SaveTasks(nil); err != nil {
		t.Fatal(err)
	}
	loaded, _ := s.LoadTasks()
	if len(loaded) != 0 {
		t.Fatal("empty save should clear the collection")
	}
}

func TestLoadTasksRepairsInvalidDuration(t *testing.T) {
	s := newTestStore(t)
	s.db.Exec(`INSERT INTO tasks (id, title, start_date, duration, position, created_at)
	           VALUES ('x', 'bad duration', '2024-01-01', 0, 0, '2024-01-01T00:00:00Z')`)

	loaded, err := s.LoadTasks()
	if err != nil {
		t.Fatal(err)
	}
	if loaded[0].Duration != 1 {
		t.Fatalf("duration 0 should load as 1, got %d", loaded[0].Duration)
	}
}

func TestLoadTasksRepairsBadStartDate(t *testing.T) {
	s := newTestStore(t)
	s.db.Exec(`INSERT INTO tasks (id, title, start_date, duration, position, created_at)
	           VALUES ('x', 'bad date', 'not-a-date', 1, 0, '2024-01-01T00:00:00Z')`)

	loaded, err := s.LoadTasks()
	if err != nil {
		t.Fatal(err)
	}
	if loaded[0].StartDate != dates.Today() {
		t.Fatalf("unparsable start date should default to today, got %s", loaded[0].StartDate)
	}
}

// ============================================================
// Handles and settings
// ============================================================

func TestHandles(t *testing.T) {
	s := newTestStore(t)

	h, err := s.GetHandle("codeforces")
	if err != nil {
		t.Fatal(err)
	}
	if h != "" {
		t.Fatal("unset handle should be empty, not an error")
	}

	s.SetHandle("codeforces", "tourist")
	s.SetHandle("atcoder", "tourist")
	s.SetHandle("codeforces", "jiangly") // overwrite

	h, _ = s.GetHandle("codeforces")
	if h != "jiangly" {
		t.Fatalf("expected jiangly, got %s", h)
	}

	all, err := s.AllHandles()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(all))
	}
	// Sorted by platform
	if all[0].Platform != "atcoder" {
		t.Fatalf("expected atcoder first, got %s", all[0].Platform)
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetSetting("window_days")
	if err != nil {
		t.Fatal(err)
	}
	if v != "365" {
		t.Fatalf("expected default window_days 365, got %s", v)
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("window_days", "180")
	v, _ := s.GetSetting("window_days")
	if v != "180" {
		t.Fatalf("expected 180, got %s", v)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nonexistent"); err == nil {
		t.Fatal("expected error for missing setting")
	}
}

// ============================================================
// End-to-end with the core modules
// ============================================================

func TestStoreBacksActivitySeries(t *testing.T) {
	// The store satisfies activity.Storage; exercised indirectly here
	// to keep the persistence contract honest.
	s := newTestStore(t)

	if err := s.SaveHistory(map[dates.Day]int{day(t, "2024-01-01"): 12}); err != nil {
		t.Fatal(err)
	}
	h, err := s.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if h[day(t, "2024-01-01")] != 12 {
		t.Fatal("history round trip failed")
	}
}
