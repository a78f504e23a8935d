package store

import (
	"database/sql"
	"fmt"
)

// Handle is a saved per-platform username.
type Handle struct {
	Platform string
	Value    string
}

func (s *Store) GetHandle(platform string) (string, error) {
	var handle string
	err := s.db.QueryRow(`SELECT handle FROM handles WHERE platform = ?`, platform).Scan(&handle)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get handle %q: %w", platform, err)
	}
	return handle, nil
}

func (s *Store) SetHandle(platform, handle string) error {
	_, err := s.db.Exec(
		`INSERT INTO handles (platform, handle) VALUES (?, ?)
		 ON CONFLICT(platform) DO UPDATE SET handle = excluded.handle`,
		platform, handle,
	)
	return err
}

func (s *Store) AllHandles() ([]Handle, error) {
	rows, err := s.db.Query(`SELECT platform, handle FROM handles ORDER BY platform`)
	if err != nil {
		return nil, fmt.Errorf("list handles: %w", err)
	}
	defer rows.Close()

	var handles []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.Platform, &h.Value); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}
