package history

import (
	"go.uber.org/zap"

	"github.com/nixlim/jarviz/internal/config"
)

// NewStore returns a persistent store for cfg, or an in-memory one when the
// db path is empty or the database cannot be opened. The bool reports
// whether the store is persistent.
func NewStore(cfg config.StorageConfig, logger *zap.Logger) (Store, bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBPath == "" {
		return NewMemoryStore(), false, nil
	}

	dbPath := config.ExpandPath(cfg.DBPath)

	store, err := NewSQLiteStore(dbPath, cfg.RetentionDays, logger)
	if err != nil {
		logger.Warn("SQLite history unavailable, falling back to in-memory store", zap.Error(err))
		return NewMemoryStore(), false, nil
	}

	return store, true, nil
}
