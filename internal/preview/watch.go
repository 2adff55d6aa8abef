package preview

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/alnah/go-md2site/internal/logging"
)

// Watcher reports settled changes under a set of paths. Hidden files and
// directories are ignored. Directories created later are watched too.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
	trees    map[string]bool // directories watched for every entry
	files    map[string]bool // single files, watched through their parent
}

// NewWatcher watches paths: directories recursively, files through their
// parent directory so a save that replaces the file keeps being seen.
func NewWatcher(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		logger:   logging.OrNop(logger),
		trees:    make(map[string]bool),
		files:    make(map[string]bool),
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
		if info.IsDir() {
			err = w.addTree(p)
		} else {
			err = w.addFile(p)
		}
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.trees[filepath.Clean(p)] = true
		return w.fsw.Add(p)
	})
}

func (w *Watcher) addFile(p string) error {
	p = filepath.Clean(p)
	w.files[p] = true
	return w.fsw.Add(filepath.Dir(p))
}

// wanted reports whether ev concerns a watched tree or a watched file.
func (w *Watcher) wanted(ev fsnotify.Event) bool {
	name := filepath.Clean(ev.Name)
	return w.trees[filepath.Dir(name)] || w.trees[name] || w.files[name]
}

// Run calls onChange once events have settled for the debounce period, until
// ctx is done. onChange never runs concurrently with itself.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer func() { _ = w.fsw.Close() }()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := make(chan struct{}, 1)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			onChange()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) || !w.wanted(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && w.trees[filepath.Dir(filepath.Clean(ev.Name))] {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("cannot watch new directory", logging.Path(ev.Name), zap.Error(err))
					}
				}
			}
			w.logger.Debug("change detected", logging.Path(ev.Name), zap.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
