// Package watch reports papers dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay unchanged before it is handed on.
const DefaultSettle = 500 * time.Millisecond

// Watcher calls a handler once per new or rewritten file in a directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	accept  func(path string) bool
	settle  time.Duration
	log     *slog.Logger
}

// New creates a watcher. accept filters paths (e.g. by extension); nil accepts
// everything.
func New(accept func(path string) bool, settle time.Duration, log *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{watcher: w, accept: accept, settle: settle, log: log}, nil
}

// Run watches dir until ctx is done. Writes are debounced so a file being
// copied in is handled once, after it settles. handle runs on its own
// goroutine per file; Run waits for them before returning.
func (w *Watcher) Run(ctx context.Context, dir string, handle func(path string)) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	pending := make(map[string]time.Time) // path -> last event
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if isHidden(event.Name) || !w.accept(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				wg.Add(1)
				go func() {
					defer wg.Done()
					handle(path)
				}()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "dir", dir, "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// isHidden skips dotfiles and editor temp files.
func isHidden(path string) bool {
	i := strings.LastIndexAny(path, `/\`)
	name := path[i+1:]
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
