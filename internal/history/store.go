package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	writeChannelSize = 1000
	batchSize        = 50
	flushInterval    = 100 * time.Millisecond

	maintenanceStopTimeout = 30 * time.Second
	drainTimeout           = 10 * time.Second
)

type opType string

const (
	opDownload opType = "download"
	opCapture  opType = "capture"
)

type writeOp struct {
	opType   opType
	download *Download
	capture  *CaptureSession
}

// SQLiteStore answers reads from its embedded MemoryStore and persists every
// record through a batched background writer.
type SQLiteStore struct {
	*MemoryStore
	db              *sql.DB
	logger          *zap.Logger
	writeChan       chan writeOp
	droppedWrites   atomic.Int64
	doneChan        chan struct{}
	closed          atomic.Bool
	cancelMaint     context.CancelFunc
	maintenanceDone chan struct{}
}

// NewSQLiteStore opens dbPath, loads recent history into memory and starts
// the writer and maintenance goroutines.
func NewSQLiteStore(dbPath string, retentionDays int, logger *zap.Logger) (*SQLiteStore, error) {
	return newSQLiteStoreWithChannelSize(dbPath, writeChannelSize, retentionDays, logger)
}

func newSQLiteStoreWithChannelSize(dbPath string, chanSize, retentionDays int, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	store := &SQLiteStore{
		MemoryStore:     NewMemoryStore(),
		db:              db,
		logger:          logger.Named("history"),
		writeChan:       make(chan writeOp, chanSize),
		doneChan:        make(chan struct{}),
		cancelMaint:     cancel,
		maintenanceDone: make(chan struct{}),
	}

	if err := store.recover(); err != nil {
		cancel()
		_ = db.Close()
		return nil, fmt.Errorf("recovering history: %w", err)
	}

	go store.writerLoop()
	store.startMaintenance(ctx, retentionDays)

	return store, nil
}

func (s *SQLiteStore) RecordDownload(d Download) {
	s.MemoryStore.RecordDownload(d)
	s.sendWrite(writeOp{opType: opDownload, download: &d})
}

func (s *SQLiteStore) RecordCapture(c CaptureSession) {
	s.MemoryStore.RecordCapture(c)
	s.sendWrite(writeOp{opType: opCapture, capture: &c})
}

func (s *SQLiteStore) sendWrite(op writeOp) {
	if s.closed.Load() {
		return
	}
	defer func() { _ = recover() }()
	select {
	case s.writeChan <- op:
	default:
		s.droppedWrites.Add(1)
		s.logger.Warn("write channel full, dropped write", zap.String("type", string(op.opType)))
	}
}

// DroppedWrites reports how many records never reached the writer.
func (s *SQLiteStore) DroppedWrites() int64 {
	return s.droppedWrites.Load()
}

// Close stops maintenance, drains pending writes and closes the database.
// Records made after Close are kept in memory only.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.cancelMaint()
	select {
	case <-s.maintenanceDone:
	case <-time.After(maintenanceStopTimeout):
		s.logger.Warn("maintenance goroutine did not stop", zap.Duration("timeout", maintenanceStopTimeout))
	}

	close(s.writeChan)

	select {
	case <-s.doneChan:
	case <-time.After(drainTimeout):
		s.logger.Error("failed to drain writes, data may be lost", zap.Duration("timeout", drainTimeout))
	}

	return s.db.Close()
}
