package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://github.com"

	// ChunkSize is the read size used while streaming an archive.
	ChunkSize = 256 * 1024

	defaultTimeout = 60 * time.Second
)

var (
	// ErrNotFound is returned for a 404: owner, repo or branch is wrong.
	ErrNotFound = errors.New("404 not found: check owner/repo/branch")

	// ErrHTMLResponse is returned when the server answers 200 with an HTML
	// page instead of an archive, usually a sign-in page or a wrong link.
	ErrHTMLResponse = errors.New("got HTML instead of a zip: link or auth may be wrong")
)

// AuthError is returned for 401 and 403 responses.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed (%d): if the repo is private, add a token", e.StatusCode)
}

// HTTPError is returned for any other non-200 response.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("download failed: HTTP %d", e.StatusCode)
}

// Request describes one archive download.
type Request struct {
	URL    string
	Branch string
	OutDir string
	// Token is sent as "Authorization: token <Token>" when non-empty.
	Token string
}

// ProgressFunc receives bytes written so far and the expected total, which is
// 0 when the server does not send Content-Length.
type ProgressFunc func(done, total int64)

// Client downloads branch archives.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL points the client at a different archive host. Used in tests.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = u }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client with a 60s timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download resolves req.URL, streams the branch archive into req.OutDir and
// returns the final path. Data goes to a ".part" file that is renamed on
// success and removed on any failure, so a failed download leaves nothing
// behind.
func (c *Client) Download(ctx context.Context, req Request, progress ProgressFunc) (string, error) {
	ref, err := ParseRepo(req.URL, req.Branch)
	if err != nil {
		return "", err
	}

	outDir, err := filepath.Abs(req.OutDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(outDir, ref.ArchiveName())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL(c.baseURL, ref), nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		httpReq.Header.Set("Authorization", "token "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("requesting %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		c.logger.Warn("archive download rejected",
			zap.String("repo", ref.String()),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return "", err
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	written, err := writeArchive(outPath, resp.Body, total, progress)
	if err != nil {
		return "", err
	}

	c.logger.Info("archive downloaded",
		zap.String("repo", ref.String()),
		zap.String("path", outPath),
		zap.String("size", humanize.Bytes(uint64(written))),
	)
	return outPath, nil
}

func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		return ErrHTMLResponse
	}
	return nil
}

// writeArchive streams body into outPath via a temporary ".part" file.
func writeArchive(outPath string, body io.Reader, total int64, progress ProgressFunc) (int64, error) {
	partPath := outPath + ".part"
	f, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", partPath, err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(partPath)
	}

	var done int64
	buf := make([]byte, ChunkSize)
	for {
		n, readErr := readChunk(body, buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				cleanup()
				return done, fmt.Errorf("writing archive: %w", err)
			}
			done += int64(n)
			if progress != nil {
				progress(done, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			cleanup()
			return done, fmt.Errorf("reading archive: %w", readErr)
		}
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(partPath)
		return done, fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(partPath, outPath); err != nil {
		_ = os.Remove(partPath)
		return done, fmt.Errorf("finalizing archive: %w", err)
	}
	return done, nil
}

// readChunk fills buf unless the stream ends first. Unlike io.ReadFull it
// reports a clean end of stream as io.EOF even after a partial chunk, so a
// truncated body (io.ErrUnexpectedEOF from the transport) stays an error.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
