package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/cpcdash/internal/dates"
	"github.com/sadopc/cpcdash/internal/schedule"
)

// LoadTasks reads the task collection in insertion order (newest
// first). Rows from older layouts are repaired on the way in: a missing
// or invalid duration becomes 1 day, a missing start date becomes the
// legacy target_date if present, else today.
func (s *Store) LoadTasks() ([]schedule.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, title, link, note, completed, start_date, target_date, duration, created_at
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []schedule.Task
	for rows.Next() {
		var t schedule.Task
		var completed, duration int
		var startDate, targetDate sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &t.Link, &t.Note, &completed,
			&startDate, &targetDate, &duration, &createdAt); err != nil {
			return nil, err
		}
		t.Completed = completed == 1

		t.Duration = duration
		if t.Duration < 1 {
			t.Duration = 1
		}

		if startDate.Valid {
			t.StartDate, _ = dates.Parse(startDate.String)
		}
		if t.StartDate.IsZero() && targetDate.Valid {
			t.StartDate, _ = dates.Parse(targetDate.String)
		}
		if t.StartDate.IsZero() {
			t.StartDate = dates.Today()
		}

		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTasks replaces the stored collection with tasks, preserving their
// order. Done in a single transaction so a crash can never leave a
// half-written list.
func (s *Store) SaveTasks(tasks []schedule.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, title, link, note, completed, start_date, duration, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		completed := 0
		if t.Completed {
			completed = 1
		}
		_, err := stmt.Exec(t.ID, t.Title, t.Link, t.Note, completed,
			t.StartDate.String(), t.Duration, i, t.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
