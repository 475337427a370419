package history

import (
	"sync"
)

// maxRecent caps how many entries of each kind are held in memory.
const maxRecent = 500

// MemoryStore is a bounded in-memory Store. Entries are kept oldest first.
type MemoryStore struct {
	mu        sync.RWMutex
	downloads []Download
	captures  []CaptureSession
	totals    Totals
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) RecordDownload(d Download) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = appendBounded(m.downloads, d)
	m.totals.Downloads++
	if d.Status == StatusFailed {
		m.totals.FailedDownloads++
	} else {
		m.totals.Bytes += d.Bytes
	}
}

func (m *MemoryStore) RecordCapture(c CaptureSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = appendBounded(m.captures, c)
	m.totals.Captures++
	m.totals.Events += c.Events
}

func (m *MemoryStore) RecentDownloads(limit int) []Download {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.downloads, limit)
}

func (m *MemoryStore) RecentCaptures(limit int) []CaptureSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.captures, limit)
}

func (m *MemoryStore) Totals() Totals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// seed replaces the store contents with rows loaded from disk.
func (m *MemoryStore) seed(downloads []Download, captures []CaptureSession, totals Totals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = downloads
	m.captures = captures
	m.totals = totals
}

func appendBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > maxRecent {
		s = append(s[:0:0], s[len(s)-maxRecent:]...)
	}
	return s
}

func newestFirst[T any](s []T, limit int) []T {
	if limit <= 0 || limit > len(s) {
		limit = len(s)
	}
	out := make([]T, 0, limit)
	for i := len(s) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s[i])
	}
	return out
}
