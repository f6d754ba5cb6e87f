// Package watcher reports debounced changes to a fixed set of files.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/bastiangx/kwserve/internal/logger"
)

// DefaultDebounce is the quiet period after the last change to a file
// before its event is emitted.
const DefaultDebounce = 150 * time.Millisecond

// Op is the kind of change seen for a file.
type Op int

const (
	Write Op = iota
	Create
	Remove
	Rename
)

// String returns the string representation of Op.
func (op Op) String() string {
	switch op {
	case Write:
		return "Write"
	case Create:
		return "Create"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event is a debounced change to one watched file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher watches files through their parent directories, so editors that
// save by rename are still seen.
type Watcher struct {
	files    map[string]string // absolute path -> path as given
	dirs     []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *log.Logger
	mu       sync.Mutex
	closed   bool
}

// New creates a watcher for paths. debounce <= 0 uses DefaultDebounce.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		files:    make(map[string]string, len(paths)),
		debounce: debounce,
		log:      logger.New("watch"),
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = p
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Start begins watching and returns the event channel, closed when ctx is
// done or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	out := make(chan Event, 16)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	pending := make(map[string]Event)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(fsEvent.Name)
			if err != nil {
				continue
			}
			name, watched := w.files[abs]
			if !watched {
				continue
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}
			pending[name] = Event{Path: name, Op: op, Time: time.Now()}

		case now := <-ticker.C:
			for name, evt := range pending {
				if now.Sub(evt.Time) < w.debounce {
					continue
				}
				delete(pending, name)
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watch error", "err", err)
		}
	}
}

func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
