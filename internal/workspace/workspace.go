// Package workspace owns the directories of one build: a mirror of the notes
// to read from, and a staging directory that replaces the output only when
// the whole build succeeded.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logging"
)

// Sentinel errors for workspace operations.
var (
	ErrSourceNotFound = errors.New("notes directory not found")
	ErrNoOutput       = errors.New("output directory not set")
	ErrOverlap        = errors.New("directories overlap")
	ErrNotPrepared    = errors.New("workspace not prepared")
	ErrCommitted      = errors.New("workspace already committed")
)

// Option configures a Manager.
type Option func(*Manager)

// WithMirrorDir keeps the mirror in dir across runs instead of a temporary
// directory. dir is wiped at every Prepare.
func WithMirrorDir(dir string) Option {
	return func(m *Manager) { m.persistentMirror = dir }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logging.OrNop(logger) }
}

// Manager prepares, commits and cleans up the directories of one run.
// It is not safe for concurrent use.
type Manager struct {
	source           string
	output           string
	persistentMirror string
	logger           *zap.Logger

	mirror    string
	staging   string
	committed bool
}

// New creates a Manager for the given notes and output directories.
func New(source, output string, opts ...Option) *Manager {
	m := &Manager{source: source, output: output, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MirrorDir returns the directory holding the copy of the notes.
// Empty before Prepare.
func (m *Manager) MirrorDir() string { return m.mirror }

// StagingDir returns the directory the build writes into.
// Empty before Prepare.
func (m *Manager) StagingDir() string { return m.staging }

// OutputDir returns the final output directory.
func (m *Manager) OutputDir() string { return m.output }

// Validate checks the directories before anything is created or deleted:
// the notes directory exists, and neither the output nor the persistent
// mirror overlaps it or each other.
func (m *Manager) Validate() error {
	if m.source == "" {
		return fmt.Errorf("%w: no notes directory given", ErrSourceNotFound)
	}
	info, err := os.Stat(m.source)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, m.source)
		}
		return fmt.Errorf("checking notes directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", fileutil.ErrNotDirectory, m.source)
	}
	if m.output == "" {
		return ErrNoOutput
	}

	source, err := canonical(m.source)
	if err != nil {
		return err
	}
	output, err := canonical(m.output)
	if err != nil {
		return err
	}
	if overlaps(source, output) {
		return fmt.Errorf("%w: output %s and notes %s", ErrOverlap, m.output, m.source)
	}

	if m.persistentMirror != "" {
		mirror, err := canonical(m.persistentMirror)
		if err != nil {
			return err
		}
		if overlaps(mirror, source) || overlaps(mirror, output) {
			return fmt.Errorf("%w: workspace %s must be outside the notes and output directories", ErrOverlap, m.persistentMirror)
		}
	}
	return nil
}

// Prepare mirrors the notes (hidden entries excluded) and creates an empty
// staging directory next to the output directory.
func (m *Manager) Prepare(ctx context.Context) error {
	if m.committed {
		return ErrCommitted
	}
	if err := m.Validate(); err != nil {
		return err
	}

	if err := m.createMirror(); err != nil {
		return err
	}

	start := time.Now()
	n, err := fileutil.CopyTree(ctx, m.source, m.mirror)
	if err != nil {
		return fmt.Errorf("mirroring %s: %w", m.source, err)
	}
	m.logger.Debug("mirrored notes", logging.Path(m.mirror), logging.Count(n), logging.Duration(time.Since(start)))

	parent := filepath.Dir(filepath.Clean(m.output))
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(m.output)+".staging-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	m.staging = staging
	return nil
}

func (m *Manager) createMirror() error {
	if m.persistentMirror == "" {
		dir, err := os.MkdirTemp("", "md2site-mirror-*")
		if err != nil {
			return fmt.Errorf("creating mirror directory: %w", err)
		}
		m.mirror = dir
		return nil
	}

	if err := os.RemoveAll(m.persistentMirror); err != nil {
		return fmt.Errorf("clearing workspace %s: %w", m.persistentMirror, err)
	}
	if err := os.MkdirAll(m.persistentMirror, 0o750); err != nil {
		return fmt.Errorf("creating workspace %s: %w", m.persistentMirror, err)
	}
	m.mirror = m.persistentMirror
	return nil
}

// Commit replaces the output directory with the staging directory.
// The previous output is moved aside first and restored if the swap fails.
func (m *Manager) Commit() error {
	if m.committed {
		return ErrCommitted
	}
	if m.staging == "" {
		return ErrNotPrepared
	}

	var previous string
	if _, err := os.Lstat(m.output); err == nil {
		previous = m.staging + ".previous"
		if err := os.Rename(m.output, previous); err != nil {
			return fmt.Errorf("moving previous output aside: %w", err)
		}
	}

	if err := os.Rename(m.staging, m.output); err != nil {
		if previous != "" {
			if restoreErr := os.Rename(previous, m.output); restoreErr != nil {
				return fmt.Errorf("publishing output: %w (previous output left at %s: %v)", err, previous, restoreErr)
			}
		}
		return fmt.Errorf("publishing output: %w", err)
	}
	m.committed = true

	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			m.logger.Warn("could not remove previous output", logging.Path(previous), zap.Error(err))
		}
	}
	m.logger.Debug("output published", logging.Path(m.output))
	return nil
}

// Cleanup removes the staging directory unless it was committed, and the
// mirror unless it is persistent. Safe to call more than once.
func (m *Manager) Cleanup() error {
	var errs []error
	if !m.committed && m.staging != "" {
		if err := os.RemoveAll(m.staging); err != nil {
			errs = append(errs, fmt.Errorf("removing staging directory: %w", err))
		}
		m.staging = ""
	}
	if m.persistentMirror == "" && m.mirror != "" {
		if err := os.RemoveAll(m.mirror); err != nil {
			errs = append(errs, fmt.Errorf("removing mirror: %w", err))
		}
		m.mirror = ""
	}
	return errors.Join(errs...)
}

// canonical returns an absolute path with symlinks resolved as far as the
// path exists.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	existing, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

// overlaps reports whether a and b are the same directory or one contains the other.
func overlaps(a, b string) bool {
	return within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
