// Package history keeps a log of archive downloads and capture sessions. The
// in-memory store always serves reads; the SQLite store persists writes in
// the background and preloads recent rows on open.
package history

import "time"

// Download status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Download records one archive fetch attempt.
type Download struct {
	Repo   string
	Branch string
	URL    string
	Path   string
	Bytes  int64
	Status string
	Error  string
	At     time.Time
}

// CaptureSession records one finished capture recording.
type CaptureSession struct {
	ID           string
	Path         string
	Mode         string
	TargetWindow string
	Events       int
	StartedAt    time.Time
	EndedAt      time.Time
}

// Duration is how long the session ran.
func (c CaptureSession) Duration() time.Duration {
	return c.EndedAt.Sub(c.StartedAt)
}

// Totals summarises everything held by a store.
type Totals struct {
	Downloads       int
	FailedDownloads int
	Bytes           int64
	Captures        int
	Events          int
}

// Store is implemented by MemoryStore and SQLiteStore. All methods are safe
// for concurrent use.
type Store interface {
	RecordDownload(d Download)
	RecordCapture(c CaptureSession)
	// RecentDownloads returns up to limit downloads, newest first.
	RecentDownloads(limit int) []Download
	// RecentCaptures returns up to limit capture sessions, newest first.
	RecentCaptures(limit int) []CaptureSession
	Totals() Totals
	Close() error
}
