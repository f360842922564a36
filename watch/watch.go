// Package watch re-runs declaration emission when oracle dumps change.
//
// Events are debounced (editors and dump tools write in bursts) and
// regenerations are rate limited so a dump rewritten in a loop cannot keep
// the emitter busy.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

// RegenerateFunc is called after a burst of changes with the changed paths,
// sorted. An error is logged and watching continues.
type RegenerateFunc func(ctx context.Context, changed []string) error

// Options tune a Watcher.
type Options struct {
	// Debounce is the quiet period after the last change before regenerating.
	Debounce time.Duration
	// MinInterval is the minimum time between regenerations. 0 means unlimited.
	MinInterval time.Duration
}

// Watcher watches input files and triggers regeneration.
type Watcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	opts     Options
	limiter  *rate.Limiter
	onChange RegenerateFunc
	log      *zap.SugaredLogger
	runs     atomic.Int64
}

// New watches paths. Their directories are watched rather than the files
// themselves so replace-by-rename writes are seen.
func New(paths []string, opts Options, onChange RegenerateFunc) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths to watch")
	}
	if onChange == nil {
		return nil, errors.New("watch: nil regenerate func")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:    make(map[string]bool),
		watcher:  fsw,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		onChange: onChange,
		log:      logger.ComponentLogger("watch"),
	}
	if opts.MinInterval > 0 {
		w.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Runs reports how many regenerations have been attempted.
func (w *Watcher) Runs() int64 { return w.runs.Load() }

// Run blocks until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("input changed", logger.FieldPath, event.Name, "op", event.Op.String())
			pending[event.Name] = true

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", logger.FieldError, err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := w.limiter.Wait(ctx); err != nil {
				// Only cancellation gets here
				return nil
			}
			w.regenerate(ctx, changed)
		}
	}
}

func (w *Watcher) regenerate(ctx context.Context, changed []string) {
	w.runs.Add(1)
	start := time.Now()
	if err := w.onChange(ctx, changed); err != nil {
		w.log.Errorw("regeneration failed",
			logger.FieldError, err,
			logger.FieldCount, len(changed))
		return
	}
	w.log.Infow("regenerated",
		logger.FieldCount, len(changed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
}

// relevant reports whether event touches a watched file with content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if isScratchFile(event.Name) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isScratchFile matches config backups and atomic-write temp files.
func isScratchFile(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range []string{".back1", ".back2", ".back3", ".tmp", "~", ".swp"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
