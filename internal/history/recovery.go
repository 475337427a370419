package history

import (
	"database/sql"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// recover seeds the memory store with the newest rows and the all-time
// totals held on disk.
func (s *SQLiteStore) recover() error {
	downloads, err := s.loadDownloads()
	if err != nil {
		return err
	}
	captures, err := s.loadCaptures()
	if err != nil {
		return err
	}

	var t Totals
	err = s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status != ? THEN bytes ELSE 0 END), 0)
		FROM downloads`, StatusFailed, StatusFailed,
	).Scan(&t.Downloads, &t.FailedDownloads, &t.Bytes)
	if err != nil {
		return fmt.Errorf("totalling downloads: %w", err)
	}
	err = s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(events), 0) FROM capture_sessions`).Scan(&t.Captures, &t.Events)
	if err != nil {
		return fmt.Errorf("totalling captures: %w", err)
	}

	s.seed(downloads, captures, t)
	return nil
}

func (s *SQLiteStore) loadDownloads() ([]Download, error) {
	rows, err := s.db.Query(`
		SELECT repo, branch, url, path, bytes, status, error, at
		FROM downloads
		ORDER BY id DESC
		LIMIT ?`, maxRecent)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Download
	for rows.Next() {
		var d Download
		var url, path, errText, at sql.NullString
		if err := rows.Scan(&d.Repo, &d.Branch, &url, &path, &d.Bytes, &d.Status, &errText, &at); err != nil {
			s.logger.Error("scan download row", zap.Error(err))
			continue
		}
		d.URL, d.Path, d.Error = url.String, path.String, errText.String
		d.At = parseTime(at)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating downloads: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

func (s *SQLiteStore) loadCaptures() ([]CaptureSession, error) {
	rows, err := s.db.Query(`
		SELECT session_id, path, mode, target_window, events, started_at, ended_at
		FROM capture_sessions
		ORDER BY ended_at DESC
		LIMIT ?`, maxRecent)
	if err != nil {
		return nil, fmt.Errorf("querying capture sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []CaptureSession
	for rows.Next() {
		var c CaptureSession
		var target, started, ended sql.NullString
		if err := rows.Scan(&c.ID, &c.Path, &c.Mode, &target, &c.Events, &started, &ended); err != nil {
			s.logger.Error("scan capture row", zap.Error(err))
			continue
		}
		c.TargetWindow = target.String
		c.StartedAt = parseTime(started)
		c.EndedAt = parseTime(ended)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capture sessions: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}
