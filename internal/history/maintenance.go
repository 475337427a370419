package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	maintenanceInterval = 1 * time.Hour
	vacuumInterval      = 7 * 24 * time.Hour
)

func (s *SQLiteStore) startMaintenance(ctx context.Context, retentionDays int) {
	go s.maintenanceLoop(ctx, retentionDays)
}

func (s *SQLiteStore) maintenanceLoop(ctx context.Context, retentionDays int) {
	defer close(s.maintenanceDone)

	lastVacuum := time.Now()
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.prune(time.Now(), retentionDays); err != nil {
				s.logger.Error("maintenance cycle failed", zap.Error(err))
			}

			if time.Since(lastVacuum) >= vacuumInterval {
				if _, err := s.db.Exec("VACUUM"); err != nil {
					s.logger.Error("VACUUM failed", zap.Error(err))
				} else {
					lastVacuum = time.Now()
				}
			}
		}
	}
}

// prune deletes rows older than retentionDays before now. A non-positive
// retention keeps everything.
func (s *SQLiteStore) prune(now time.Time, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := formatTime(now.AddDate(0, 0, -retentionDays))

	res, err := s.db.Exec("DELETE FROM downloads WHERE at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning downloads: %w", err)
	}
	nd, _ := res.RowsAffected()

	res, err = s.db.Exec("DELETE FROM capture_sessions WHERE ended_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning capture sessions: %w", err)
	}
	nc, _ := res.RowsAffected()

	if nd+nc > 0 {
		s.logger.Info("pruned history", zap.Int64("downloads", nd), zap.Int64("captures", nc))
	}
	return nil
}
