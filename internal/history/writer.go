package history

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

func (s *SQLiteStore) writerLoop() {
	defer close(s.doneChan)

	batch := make([]writeOp, 0, batchSize)
	flushTimer := time.NewTimer(flushInterval)
	defer flushTimer.Stop()

	for {
		select {
		case op, ok := <-s.writeChan:
			if !ok {
				if len(batch) > 0 {
					s.flushBatch(batch)
				}
				return
			}

			batch = append(batch, op)

			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
				flushTimer.Reset(flushInterval)
			}

		case <-flushTimer.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
			flushTimer.Reset(flushInterval)
		}
	}
}

func (s *SQLiteStore) flushBatch(batch []writeOp) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Error("begin transaction", zap.Error(err))
		return
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range batch {
		if err := executeOp(tx, op); err != nil {
			s.logger.Error("write op failed", zap.String("type", string(op.opType)), zap.Error(err))
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit transaction", zap.Error(err))
	}
}

func executeOp(tx *sql.Tx, op writeOp) error {
	switch op.opType {
	case opDownload:
		d := op.download
		_, err := tx.Exec(`
			INSERT INTO downloads (repo, branch, url, path, bytes, status, error, at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Repo, d.Branch, d.URL, d.Path, d.Bytes, d.Status, d.Error, formatTime(d.At),
		)
		return err
	case opCapture:
		c := op.capture
		_, err := tx.Exec(`
			INSERT INTO capture_sessions (session_id, path, mode, target_window, events, started_at, ended_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id) DO UPDATE SET
				events = excluded.events,
				ended_at = excluded.ended_at`,
			c.ID, c.Path, c.Mode, c.TargetWindow, c.Events, formatTime(c.StartedAt), formatTime(c.EndedAt),
		)
		return err
	default:
		return fmt.Errorf("unknown op type %q", op.opType)
	}
}

// timeLayout is fixed width so stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
