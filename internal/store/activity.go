package store

import (
	"fmt"

	"github.com/sadopc/cpcdash/internal/dates"
)

// LoadHistory reads the full activity history. Rows with an unparsable
// day or a non-positive total are skipped: the history is cosmetic and
// a bad row must not poison the rest.
func (s *Store) LoadHistory() (map[dates.Day]int, error) {
	rows, err := s.db.Query(`SELECT day, total FROM activity_history`)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	history := make(map[dates.Day]int)
	for rows.Next() {
		var dayStr string
		var total int
		if err := rows.Scan(&dayStr, &total); err != nil {
			return nil, err
		}
		day, err := dates.Parse(dayStr)
		if err != nil || total <= 0 {
			continue
		}
		history[day] = total
	}
	return history, rows.Err()
}

// SaveHistory writes the full history in one transaction. The upsert
// keeps the on-disk ratchet: a row is only ever raised, never lowered,
// even if two processes race on the same database file.
func (s *Store) SaveHistory(history map[dates.Day]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activity_history (day, total) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET total = excluded.total
		WHERE excluded.total > activity_history.total`)
	if err != nil {
		return fmt.Errorf("prepare history upsert: %w", err)
	}
	defer stmt.Close()

	for day, total := range history {
		if total <= 0 {
			continue
		}
		if _, err := stmt.Exec(day.String(), total); err != nil {
			return fmt.Errorf("upsert history %s: %w", day, err)
		}
	}
	return tx.Commit()
}
