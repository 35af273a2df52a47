package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

var ErrEmptyPath = errors.New("watch: path is required")

// Event reports that the watched file was written or replaced, or that the
// watcher failed. Err is set only for watcher errors.
type Event struct {
	Path string
	Op   fsnotify.Op
	Err  error
	At   time.Time
}

// Bridge turns filesystem notifications for one file into a channel of
// events. It watches the parent directory so that a rename over the file
// keeps being observed. Bursts collapse into the single buffered slot.
type Bridge struct {
	path    string
	watcher *fsnotify.Watcher
	out     chan Event
	dropped uint64

	closeOnce sync.Once
	doneCh    chan struct{}
}

func New(path string) (*Bridge, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch: watch %s: %w", filepath.Dir(abs), err)
	}
	b := &Bridge{
		path:    filepath.Clean(abs),
		watcher: w,
		out:     make(chan Event, 1),
		doneCh:  make(chan struct{}),
	}
	go b.loop()
	return b, nil
}

func (b *Bridge) Path() string {
	return b.path
}

// Events is closed after Close returns.
func (b *Bridge) Events() <-chan Event {
	return b.out
}

// Dropped counts events that found the slot already full.
func (b *Bridge) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}

func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.watcher.Close()
		<-b.doneCh
	})
	return err
}

func (b *Bridge) loop() {
	defer close(b.doneCh)
	defer close(b.out)
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != b.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			b.emit(Event{Path: b.path, Op: ev.Op, At: time.Now()})
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.emit(Event{Path: b.path, Err: err, At: time.Now()})
		}
	}
}

func (b *Bridge) emit(ev Event) {
	select {
	case b.out <- ev:
	default:
		atomic.AddUint64(&b.dropped, 1)
	}
}
