// Package schedule scrapes the public helltides.com schedule and derives the
// next Helltide, Legion and World Boss start times.
package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DefaultURL is the schedule page scraped by Fetch.
const DefaultURL = "https://helltides.com/schedule"

// DefaultLimit caps how many date lines are considered per fetch.
const DefaultLimit = 40

const userAgent = "Mozilla/5.0"

// Kind classifies a schedule entry.
type Kind string

const (
	KindHelltide  Kind = "helltide"
	KindWorldBoss Kind = "worldboss"
	KindLegion    Kind = "legion"
	KindEvent     Kind = "event"
)

// Event is one upcoming schedule entry.
type Event struct {
	Kind     Kind
	StartsAt time.Time
	Label    string
}

// worldBosses are the labels that identify a world boss spawn.
var worldBosses = []string{"Avarice", "Ashava", "Wandering Death", "Azmodan"}

var (
	datePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	linePattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}\s+[AP]M)(.*)$`)
)

const timeLayout = "1/2/2006 3:04 PM"

// Client fetches and parses the schedule page.
type Client struct {
	url        string
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the schedule page URL.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLocation sets the zone the page's wall-clock times are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

// WithClock sets the time source used to drop past events.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a schedule client reading times in the local zone.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:        DefaultURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		loc:        time.Local,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the schedule page and returns future events in start order.
// At most limit date lines are considered; limit < 1 is treated as 1.
func (c *Client) Fetch(ctx context.Context, limit int) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building schedule request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching schedule: HTTP %d", resp.StatusCode)
	}

	events, err := Parse(resp.Body, limit, c.now(), c.loc)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("schedule fetched", zap.Int("events", len(events)))
	return events, nil
}

// Parse extracts schedule entries from an HTML page. Times are read as wall
// clock in loc; entries not after now are dropped.
func Parse(r io.Reader, limit int, now time.Time, loc *time.Location) ([]Event, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule page: %w", err)
	}

	var lines []string
	collectText(doc, &lines)

	if limit < 1 {
		limit = 1
	}
	var dated []string
	for _, ln := range lines {
		if datePattern.MatchString(ln) {
			dated = append(dated, ln)
			if len(dated) == limit {
				break
			}
		}
	}

	var events []Event
	for _, ln := range dated {
		ev, ok := parseLine(ln, loc)
		if !ok || !ev.StartsAt.After(now) {
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})
	return events, nil
}

func parseLine(ln string, loc *time.Location) (Event, bool) {
	m := linePattern.FindStringSubmatch(ln)
	if m == nil {
		return Event{}, false
	}
	stamp := strings.Join(strings.Fields(m[1]), " ")
	t, err := time.ParseInLocation(timeLayout, stamp, loc)
	if err != nil {
		return Event{}, false
	}

	label := strings.TrimSpace(m[2])
	kind := KindEvent
	if isWorldBoss(label) {
		kind = KindWorldBoss
	}
	return Event{Kind: kind, StartsAt: t, Label: label}, true
}

func isWorldBoss(label string) bool {
	for _, b := range worldBosses {
		if strings.EqualFold(label, b) {
			return true
		}
	}
	return false
}

// collectText appends every non-empty text node, trimmed, as its own line.
func collectText(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, text)
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "svg":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}
