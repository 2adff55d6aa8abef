package preview

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func nopBuild(context.Context) error { return nil }

func TestServer_Handler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "<h1>home</h1>")
	writeFile(t, filepath.Join(dir, "notes", "a.html"), "<h1>A</h1>")

	h := New(dir, nopBuild).Handler()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "home"},
		{path: "/notes/a.html", wantStatus: http.StatusOK, wantBody: "<h1>A</h1>"},
		{path: "/missing.html", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("Cache-Control = %q, want no-cache", cc)
			}
		})
	}
}

func TestServer_Status(t *testing.T) {
	t.Parallel()

	fail := errors.New("notes/a.md: boom")
	var broken atomic.Bool
	s := New(t.TempDir(), func(context.Context) error {
		if broken.Load() {
			return fail
		}
		return nil
	})

	status := func() (int, string) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))
		return rec.Code, rec.Body.String()
	}

	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if code, body := status(); code != http.StatusOK || !strings.Contains(body, "build 1 ok") {
		t.Errorf("status = %d %q, want 200 build 1 ok", code, body)
	}

	broken.Store(true)
	if err := s.Rebuild(context.Background()); !errors.Is(err, fail) {
		t.Fatalf("Rebuild() error = %v, want %v", err, fail)
	}
	if code, body := status(); code != http.StatusInternalServerError || !strings.Contains(body, "boom") {
		t.Errorf("status = %d %q, want 500 naming the failure", code, body)
	}
}

func TestServer_RebuildSerialized(t *testing.T) {
	t.Parallel()

	var running, overlaps atomic.Int32
	s := New(t.TempDir(), func(context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Rebuild(context.Background())
		}()
	}
	wg.Wait()

	if n := overlaps.Load(); n != 0 {
		t.Errorf("%d builds overlapped", n)
	}
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "served")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(dir, nopBuild).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		cancel()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "served" {
		t.Errorf("body = %q, want served", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestServer_RunFailsOnFirstBuild(t *testing.T) {
	t.Parallel()

	fail := errors.New("bad template")
	s := New(t.TempDir(), func(context.Context) error { return fail }, WithAddr("127.0.0.1:0"))

	if err := s.Run(context.Background()); !errors.Is(err, fail) {
		t.Errorf("Run() error = %v, want %v", err, fail)
	}
}
