// Package preview serves a built site locally and rebuilds it when the
// notes or the template change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alnah/go-md2site/internal/logging"
)

// Defaults for the preview server.
const (
	DefaultAddr     = "127.0.0.1:8080"
	DefaultDebounce = 300 * time.Millisecond
	StatusPath      = "/_md2site/status"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// BuildFunc builds the site into the served directory.
type BuildFunc func(ctx context.Context) error

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithWatch rebuilds when anything under paths changes. Paths may be
// directories (watched recursively) or files.
func WithWatch(paths ...string) Option {
	return func(s *Server) { s.watch = append(s.watch, paths...) }
}

// WithDebounce sets how long changes must settle before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.debounce = d }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNop(logger) }
}

// Server serves dir with caching disabled and rebuilds it on change.
type Server struct {
	dir      string
	build    BuildFunc
	addr     string
	watch    []string
	debounce time.Duration
	logger   *zap.Logger

	buildMu sync.Mutex // one build at a time

	statusMu sync.RWMutex
	lastErr  error
	builds   int
}

// New creates a Server for dir, rebuilt with build.
func New(dir string, build BuildFunc, opts ...Option) *Server {
	s := &Server{
		dir:      dir,
		build:    build,
		addr:     DefaultAddr,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler: the status endpoint and the file server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(s.logRequests)

	r.Get(StatusPath, s.handleStatus)
	r.Handle("/*", http.FileServer(http.Dir(s.dir)))
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.statusMu.RLock()
	err, builds := s.lastErr, s.builds
	s.statusMu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprintf(w, "build %d failed: %v\n", builds, err)
		return
	}
	_, _ = fmt.Fprintf(w, "build %d ok\n", builds)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			logging.Path(r.URL.Path),
			zap.Int("status", ww.Status()),
			logging.Duration(time.Since(start)))
	})
}

// Rebuild runs the build function, serialized with any other rebuild, and
// records the outcome for the status endpoint.
func (s *Server) Rebuild(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	err := s.build(ctx)

	s.statusMu.Lock()
	s.builds++
	s.lastErr = err
	s.statusMu.Unlock()

	if err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		return err
	}
	s.logger.Info("site rebuilt", logging.Duration(time.Since(start)))
	return nil
}

// Run builds once, then serves until ctx is done. A failed first build is
// returned; later failures are logged and reported by the status endpoint.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, watching for changes if configured.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving: %w", err)
		}
	}()
	s.logger.Info("serving site", zap.String("url", "http://"+ln.Addr().String()+"/"))

	if len(s.watch) > 0 {
		w, err := NewWatcher(s.watch, s.debounce, s.logger)
		if err != nil {
			_ = srv.Close()
			return err
		}
		go func() {
			if err := w.Run(ctx, func() { _ = s.Rebuild(ctx) }); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutting down: %w", err)
	}
	return runErr
}
