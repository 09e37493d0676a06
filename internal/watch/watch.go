package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Errors are logged; watching continues.
type BuildFunc func(ctx context.Context) error

// Options configures a watch session.
type Options struct {
	// Dirs are watched recursively. Missing entries are skipped.
	Dirs []string
	// Exclude holds directories whose events never trigger a rebuild,
	// typically the destination when it lives inside the source tree.
	Exclude []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Every schedules a periodic rebuild when positive.
	Every time.Duration
}

// Run performs an initial build and then rebuilds on change until ctx is
// cancelled.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	exclude := absAll(opts.Exclude)

	runBuild(ctx, build, "initial")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range opts.Dirs {
		if dir == "" {
			continue
		}
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return fmt.Errorf("resolve watch dir: %w", absErr)
		}
		if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
			slog.Warn("Watch directory not found", logfields.Path(abs))
			continue
		}
		addDirsRecursive(watcher, abs, exclude)
		slog.Info("Watching for changes", logfields.Path(abs))
	}

	w := newWorker(build)
	go w.loop(ctx)

	deb := newDebouncer(opts.Debounce, w.request)
	defer deb.stop()

	if opts.Every > 0 {
		sched, schedErr := schedulePeriodic(opts.Every, w.request)
		if schedErr != nil {
			return schedErr
		}
		defer func() { _ = sched.Shutdown() }()
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) || isExcluded(ev.Name, exclude) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, statErr := os.Stat(ev.Name); statErr == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name, exclude)
				}
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			deb.trigger()
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

func runBuild(ctx context.Context, build BuildFunc, reason string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := build(ctx); err != nil {
		slog.Warn("Rebuild failed", slog.String("reason", reason), logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete",
		slog.String("reason", reason),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// worker runs at most one build at a time. Builds run on the loop
// goroutine, so requests that arrive mid-build wait in the one-slot channel
// and collapse into a single follow-up build.
type worker struct {
	build BuildFunc
	req   chan struct{}
}

func newWorker(build BuildFunc) *worker {
	return &worker{build: build, req: make(chan struct{}, 1)}
}

func (w *worker) request() {
	select {
	case w.req <- struct{}{}:
	default:
	}
}

func (w *worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.req:
			runBuild(ctx, w.build, "change")
		}
	}
}

// debouncer fires fn once after delay has passed without another trigger.
type debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func schedulePeriodic(every time.Duration, request func()) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			slog.Info("Scheduled rebuild", slog.Duration("every", every))
			request()
		}),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	return s, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string, exclude []string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if isExcluded(path, exclude) {
			return filepath.SkipDir
		}
		if addErr := w.Add(path); addErr != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(addErr))
		}
		return nil
	})
}

func absAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

func isExcluded(path string, exclude []string) bool {
	for _, ex := range exclude {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent returns true for editor and OS droppings.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
