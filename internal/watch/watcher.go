// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a model when its sources change.
//
// A Watcher registers every non-ignored directory under the project root (and
// any extra directories such as the module library) with fsnotify. Events for
// files matching the source patterns are collected until the tree has been
// quiet for the debounce period, then OnChange fires once with the changed
// paths. A callback that is still running when the next batch is due causes
// that batch to be retried later, never run concurrently.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/forgecad/forge/internal/logging"
)

// DefaultDebounce lets an editor's write-then-rename settle into one run.
const DefaultDebounce = 500 * time.Millisecond

var (
	// DefaultPatterns selects model sources: scripts and manifests.
	DefaultPatterns = []string{"**/*.lua", "**/*.cue", "**/*.json"}

	defaultIgnores = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/*.swp",
		"**/*.swo",
		"**/*~",
		"**/.#*",
		"**/.DS_Store",
	}

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Root is the project directory. Empty means the working directory.
		Root string
		// Extra are additional directories watched recursively, e.g. library_path.
		// Paths reported for them are absolute.
		Extra []string
		// Patterns are doublestar globs selecting files that trigger a run.
		// Empty means DefaultPatterns.
		Patterns []string
		// Ignore is merged with the built-in ignores.
		Ignore []string
		// Debounce is the quiet period before OnChange fires. Zero means DefaultDebounce.
		Debounce time.Duration
		// ClearScreen writes an ANSI clear to Stdout before each callback.
		ClearScreen bool
		// RunOnStart fires OnChange once, with no changed paths, when Run begins.
		RunOnStart bool
		// OnChange receives the changed paths, relative to Root where possible.
		OnChange func(ctx context.Context, changed []string) error
		// Stdout receives the clear-screen sequence. nil means os.Stdout.
		Stdout io.Writer
		Logger *log.Logger
	}

	// Watcher monitors a project tree. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		root     string
		extra    []string
		patterns []string
		ignores  []string
		debounce time.Duration
		stdout   io.Writer
		logger   *log.Logger
		started  atomic.Bool
	}
)

// Validate checks that every pattern is a valid doublestar glob.
func (c Config) Validate() error {
	var errs []error
	for _, group := range []struct {
		label    string
		patterns []string
	}{{"watch", c.Patterns}, {"ignore", c.Ignore}} {
		for _, pat := range group.patterns {
			if pat == "" || !doublestar.ValidatePattern(pat) {
				errs = append(errs, fmt.Errorf("watch: invalid %s pattern %q", group.label, pat))
			}
		}
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch: negative debounce %s", c.Debounce))
	}
	return errors.Join(errs...)
}

// New validates cfg and registers the directory trees with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	extra := make([]string, 0, len(cfg.Extra))
	for _, dir := range cfg.Extra {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", dir, err)
		}
		extra = append(extra, abs)
	}

	w := &Watcher{
		cfg:      cfg,
		root:     root,
		extra:    extra,
		patterns: cfg.Patterns,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cfg.Debounce,
		stdout:   cfg.Stdout,
		logger:   cfg.Logger,
	}
	if len(w.patterns) == 0 {
		w.patterns = DefaultPatterns
	}
	if w.debounce == 0 {
		w.debounce = DefaultDebounce
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.logger == nil {
		w.logger = logging.Nop()
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	for _, dir := range slices.Concat([]string{root}, extra) {
		if err := w.addTree(dir); err != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				w.logger.Warn("close watcher after init failure", "err", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Root returns the absolute project directory.
func (w *Watcher) Root() string {
	return w.root
}

// Run processes events until ctx is done. It returns nil on cancellation and an
// error when the watcher breaks in a way it cannot recover from.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	// dispatch runs the callback on a snapshot of pending paths. initial marks
	// the RunOnStart call, which fires even with nothing pending.
	dispatch := func(initial bool) {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Info("previous run still in progress, retrying later")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 && !initial {
			return
		}

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("watch callback failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	if w.cfg.RunOnStart {
		dispatch(true)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.addCreatedDir(evt.Name)
			}
			display, rel := w.locate(evt.Name)
			if w.ignored(rel) || !w.matches(rel) {
				continue
			}
			w.logger.Debug("source changed", "path", display, "op", evt.Op.String())

			mu.Lock()
			pending[display] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() { dispatch(false) })
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// addTree registers dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, rel := w.locate(path); path != dir && w.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

// addCreatedDir extends the watch to directories created after startup.
func (w *Watcher) addCreatedDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if _, rel := w.locate(path); w.ignoredDir(rel) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

// locate returns the path reported to OnChange and the path globs are matched
// against. Both are relative to the root; for files under an extra directory
// the display path is absolute and matching is relative to that directory.
func (w *Watcher) locate(path string) (display, match string) {
	for _, base := range slices.Concat([]string{w.root}, w.extra) {
		rel, err := filepath.Rel(base, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if base == w.root {
			return rel, rel
		}
		return filepath.ToSlash(path), rel
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	return clean, clean
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) ignoredDir(rel string) bool {
	return w.ignored(rel) || w.ignored(rel+"/")
}

func (w *Watcher) matches(rel string) bool {
	return matchAny(w.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
