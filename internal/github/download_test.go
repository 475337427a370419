package github

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func newArchiveServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("failed download left files behind: %v", names)
	}
}

func TestDownload_Success(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), ChunkSize*2+100)
	var gotPath, gotAuth string

	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	})

	dir := t.TempDir()
	var calls int
	var lastDone, lastTotal int64
	out, err := c.Download(context.Background(), Request{
		URL:    "https://github.com/acme/widgets/tree/dev",
		Branch: "main",
		OutDir: dir,
		Token:  " secret ",
	}, func(done, total int64) {
		calls++
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if gotPath != "/acme/widgets/archive/refs/heads/dev.zip" {
		t.Errorf("request path: %s", gotPath)
	}
	if gotAuth != "token secret" {
		t.Errorf("Authorization header: %q", gotAuth)
	}
	if filepath.Base(out) != "acme_widgets_dev.zip" {
		t.Errorf("output name: %s", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("output content mismatch")
	}
	if calls != 3 {
		t.Errorf("want 3 progress callbacks for 3 chunks, got %d", calls)
	}
	if lastDone != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Errorf("final progress: %d/%d", lastDone, lastTotal)
	}
	if _, err := os.Stat(out + ".part"); !os.IsNotExist(err) {
		t.Error("temporary .part file should be gone")
	}
}

func TestDownload_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("PK"))
	})
	if _, err := c.Download(context.Background(), Request{URL: "https://github.com/a/b", OutDir: t.TempDir()}, nil); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
}

func TestDownload_UnknownLength(t *testing.T) {
	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("PK"))
		flusher.Flush()
		_, _ = w.Write([]byte("data"))
	})

	var totals []int64
	_, err := c.Download(context.Background(), Request{URL: "https://github.com/a/b", OutDir: t.TempDir()},
		func(done, total int64) { totals = append(totals, total) })
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	for _, tot := range totals {
		if tot != 0 {
			t.Errorf("total should be 0 without Content-Length, got %d", tot)
		}
	}
}

func TestDownload_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ctype  string
		check  func(error) bool
	}{
		{"404", http.StatusNotFound, "text/plain", func(err error) bool { return errors.Is(err, ErrNotFound) }},
		{"401", http.StatusUnauthorized, "", func(err error) bool {
			var a *AuthError
			return errors.As(err, &a) && a.StatusCode == 401
		}},
		{"403", http.StatusForbidden, "", func(err error) bool {
			var a *AuthError
			return errors.As(err, &a) && a.StatusCode == 403
		}},
		{"500", http.StatusInternalServerError, "", func(err error) bool {
			var h *HTTPError
			return errors.As(err, &h) && h.StatusCode == 500
		}},
		{"html on 200", http.StatusOK, "text/html; charset=utf-8", func(err error) bool {
			return errors.Is(err, ErrHTMLResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.ctype != "" {
					w.Header().Set("Content-Type", tt.ctype)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("<html>nope</html>"))
			})

			dir := t.TempDir()
			_, err := c.Download(context.Background(), Request{URL: "https://github.com/acme/widgets", OutDir: dir}, nil)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestDownload_InvalidURLDoesNotRequest(t *testing.T) {
	hit := false
	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) { hit = true })

	_, err := c.Download(context.Background(), Request{URL: "https://example.com/x/y", OutDir: t.TempDir()}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if hit {
		t.Error("no request should be made for an invalid link")
	}
}

func TestDownload_TruncatedBodyCleansUp(t *testing.T) {
	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("short"))
		// Hijack and close so the client sees an unexpected EOF.
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	})

	dir := t.TempDir()
	_, err := c.Download(context.Background(), Request{URL: "https://github.com/a/b", OutDir: dir}, nil)
	if err == nil {
		t.Fatal("want error for truncated body")
	}
	assertEmptyDir(t, dir)
}

func TestDownload_ContextCancelled(t *testing.T) {
	c := newArchiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PK"))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	if _, err := c.Download(ctx, Request{URL: "https://github.com/a/b", OutDir: dir}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	assertEmptyDir(t, dir)
}
