package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogSummary describes the contents of a capture log.
type LogSummary struct {
	Total     int
	Counts    map[EventType]int
	FirstT    float64
	LastT     float64
	Malformed int
}

// Duration is the span between the first and last event in seconds.
func (s LogSummary) Duration() float64 {
	if s.Total == 0 {
		return 0
	}
	return s.LastT - s.FirstT
}

// Summarize reads the capture log at path.
func Summarize(path string) (LogSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return LogSummary{}, fmt.Errorf("opening capture log: %w", err)
	}
	defer f.Close()
	return SummarizeReader(f)
}

// SummarizeReader counts the events in a JSONL capture stream. Lines that do
// not decode are counted as malformed rather than failing the whole read.
// Appended sessions restart t at zero, so FirstT/LastT track the extremes.
func SummarizeReader(r io.Reader) (LogSummary, error) {
	sum := LogSummary{Counts: make(map[EventType]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil || e.Type == "" {
			sum.Malformed++
			continue
		}
		if sum.Total == 0 || e.T < sum.FirstT {
			sum.FirstT = e.T
		}
		if sum.Total == 0 || e.T > sum.LastT {
			sum.LastT = e.T
		}
		sum.Total++
		sum.Counts[e.Type]++
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("reading capture log: %w", err)
	}
	return sum, nil
}
