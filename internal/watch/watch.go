// Package watch reruns a build whenever one of its source files changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDelay is how long the watcher waits for more events before it
// reports a change. Editors usually write a file in several steps.
const DefaultDelay = 100 * time.Millisecond

// Watcher observes a fixed set of files.
type Watcher struct {
	w      *fsnotify.Watcher
	files  map[string]bool
	delay  time.Duration
	logger zerolog.Logger
}

type Option func(*Watcher)

func WithDelay(d time.Duration) Option { return func(w *Watcher) { w.delay = d } }

func WithLogger(l zerolog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// New watches the directories holding files, so that files replaced by a
// rename are still seen.
func New(files []string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{w: fw, files: map[string]bool{}, delay: DefaultDelay, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) Close() error { return w.w.Close() }

// Run calls onChange after every burst of writes to the watched files until
// ctx is done. Errors returned by onChange are logged and watching goes on.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("changed")
			timer.Reset(w.delay)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.logger.Error().Err(err).Msg("rebuild failed")
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && w.files[abs]
}
