package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/neptune/internal/lifecycle"
	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/storage"
	"github.com/sandeepkv93/neptune/internal/watch"
)

var (
	ErrNoPath = errors.New("session: document path is required")
	ErrClosed = errors.New("session: closed")
)

type Reason string

const (
	ReasonMutation Reason = "mutation"
	ReasonReload   Reason = "reload"
	ReasonOpen     Reason = "open"
	ReasonWrite    Reason = "write"
)

// Update is published after every state change. Doc is always the full
// current document, so a subscriber that misses updates loses nothing.
type Update struct {
	Doc    model.Document
	Path   string
	Reason Reason
	Change lifecycle.Change
	Err    error
}

type Options struct {
	Path           string
	Engine         *lifecycle.Engine
	Logger         *log.Logger
	Journal        storage.Journal
	ReloadDebounce time.Duration
	BackupCorrupt  bool
	DisableWatch   bool
}

// Session owns one open document: its store, write queue, file watcher and
// the subscribers that render it. Mutations are serialized; persistence runs
// behind them on the writer.
type Session struct {
	engine   *lifecycle.Engine
	logger   *log.Logger
	journal  storage.Journal
	debounce time.Duration
	backup   bool
	noWatch  bool

	mu     sync.Mutex
	path   string
	doc    model.Document
	store  *storage.FileStore
	writer *storage.Writer
	bridge *watch.Bridge
	closed bool

	pubMu      sync.Mutex
	latest     model.Document
	latestPath string
	subs       map[int]chan Update
	nextSub    int

	changes chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

func Open(opts Options) (*Session, error) {
	if opts.Path == "" {
		return nil, ErrNoPath
	}
	s := &Session{
		engine:   opts.Engine,
		logger:   opts.Logger,
		journal:  opts.Journal,
		debounce: opts.ReloadDebounce,
		backup:   opts.BackupCorrupt,
		noWatch:  opts.DisableWatch,
		subs:     make(map[int]chan Update),
		changes:  make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}
	if s.engine == nil {
		s.engine = lifecycle.NewEngine()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.journal == nil {
		s.journal = storage.Discard
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.mu.Lock()
	err := s.open(opts.Path)
	if err == nil {
		s.publish(Update{Doc: s.doc.Clone(), Path: s.path, Reason: ReasonOpen})
	}
	s.mu.Unlock()
	if err != nil {
		s.cancel()
		return nil, err
	}
	go s.loop()
	return s, nil
}

// open must be called with mu held.
func (s *Session) open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("session: resolve %s: %w", path, err)
	}
	s.path = abs
	s.store = storage.NewFileStore(abs,
		storage.WithLogger(s.logger),
		storage.WithBackupCorrupt(s.backup),
	)
	s.writer = storage.NewWriter(s.store,
		storage.WithWriterLogger(s.logger),
		storage.WithResultHandler(s.onWrite),
	)
	s.doc = s.store.Load()
	s.logger.Info("document opened", "path", abs, "tasks", len(s.doc.Tasks))

	s.bridge = nil
	if s.noWatch {
		return nil
	}
	bridge, err := watch.New(abs)
	if err != nil {
		s.logger.Warn("live reload unavailable", "path", abs, "err", err)
		return nil
	}
	s.bridge = bridge
	go s.forward(bridge)
	return nil
}

// Path is the absolute path of the open document.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Document returns a copy of the in-memory document.
func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Subscribe returns a channel holding at most the newest update, and a
// function that unsubscribes and closes it.
func (s *Session) Subscribe() (<-chan Update, func()) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Update, 1)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.pubMu.Lock()
			defer s.pubMu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

func (s *Session) Add(text string) model.Task {
	var task model.Task
	s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		var change lifecycle.Change
		task, change = s.engine.Add(doc, text)
		return change, true
	})
	return task
}

func (s *Session) UpdateText(id model.ID, text string) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.UpdateText(doc, id, text)
	})
}

func (s *Session) UpdateDescription(id model.ID, description string) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.UpdateDescription(doc, id, description)
	})
}

func (s *Session) SetDueDate(id model.ID, due *model.DueDate) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.SetDueDate(doc, id, due)
	})
}

func (s *Session) Complete(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.Complete(doc, id)
	})
}

func (s *Session) Skip(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.Skip(doc, id)
	})
}

func (s *Session) DeleteActive(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.DeleteActive(doc, id)
	})
}

func (s *Session) DeleteCompleted(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.DeleteCompleted(doc, id)
	})
}

func (s *Session) Reorder(from, to int) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.Reorder(doc, from, to)
	})
}

func (s *Session) MoveUp(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.MoveUp(doc, id)
	})
}

func (s *Session) MoveDown(id model.ID) bool {
	return s.mutate(func(doc *model.Document) (lifecycle.Change, bool) {
		return s.engine.MoveDown(doc, id)
	})
}

func (s *Session) mutate(apply func(doc *model.Document) (lifecycle.Change, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	change, ok := apply(&s.doc)
	if !ok {
		return false
	}
	if err := s.writer.Submit(s.doc); err != nil {
		s.logger.Error("queue save", "path", s.path, "err", err)
	}
	s.record(change)
	s.publish(Update{Doc: s.doc.Clone(), Path: s.path, Reason: ReasonMutation, Change: change})
	return true
}

func (s *Session) record(change lifecycle.Change) {
	_, err := s.journal.Append(s.ctx, storage.Entry{
		Document: s.path,
		TaskID:   change.TaskID,
		Kind:     string(change.Kind),
		Text:     change.Text,
		At:       change.At,
	})
	if err != nil {
		s.logger.Warn("journal append", "kind", change.Kind, "err", err)
	}
}

// Reload discards the in-memory document and reads the file again. Queued
// writes land first so none of them can overwrite the reloaded content.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err := s.writer.Flush(s.ctx); err != nil {
		return
	}
	s.reloadLocked()
}

// reloadLocked must be called with mu held and the writer idle.
func (s *Session) reloadLocked() {
	s.doc = s.store.Load()
	s.logger.Debug("document reloaded", "path", s.path, "tasks", len(s.doc.Tasks))
	s.publish(Update{Doc: s.doc.Clone(), Path: s.path, Reason: ReasonReload})
}

// SetFile switches the session to another document. Pending writes for the
// current document are finished first.
func (s *Session) SetFile(path string) error {
	if path == "" {
		return ErrNoPath
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.teardown()
	if err := s.open(path); err != nil {
		return err
	}
	s.publish(Update{Doc: s.doc.Clone(), Path: s.path, Reason: ReasonOpen})
	return nil
}

// Flush waits for queued writes of the current document.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	writer := s.writer
	s.mu.Unlock()
	return writer.Flush(ctx)
}

// Close flushes pending writes, stops watching and closes the journal and
// every subscription.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.doneCh

	s.mu.Lock()
	s.teardown()
	s.mu.Unlock()
	err := s.journal.Close()

	s.pubMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.pubMu.Unlock()
	return err
}

// teardown must be called with mu held.
func (s *Session) teardown() {
	s.writer.Close()
	if s.bridge != nil {
		if err := s.bridge.Close(); err != nil {
			s.logger.Warn("close watcher", "err", err)
		}
		s.bridge = nil
	}
}

func (s *Session) onWrite(result storage.WriteResult) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.send(Update{Doc: s.latest.Clone(), Path: s.latestPath, Reason: ReasonWrite, Err: result.Err})
}

func (s *Session) publish(u Update) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.latest = u.Doc.Clone()
	s.latestPath = u.Path
	s.send(u)
}

// send must be called with pubMu held. Each subscriber keeps only the
// newest update.
func (s *Session) send(u Update) {
	for _, ch := range s.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Session) forward(b *watch.Bridge) {
	for ev := range b.Events() {
		if ev.Err != nil {
			s.logger.Warn("watcher error", "path", ev.Path, "err", ev.Err)
			continue
		}
		select {
		case s.changes <- struct{}{}:
		default:
		}
	}
}

func (s *Session) loop() {
	defer close(s.doneCh)
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-s.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.changes:
			if s.debounce <= 0 {
				s.handleChange()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			s.handleChange()
		}
	}
}

// handleChange reloads unless the file still holds what this session last
// read or wrote. mu is held from the comparison through the reload so no
// mutation can queue a write built on the document being replaced.
func (s *Session) handleChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err := s.writer.Flush(s.ctx); err != nil {
		return
	}
	if s.store.Unchanged() {
		return
	}
	s.logger.Info("document changed on disk, reloading", "path", s.store.Path())
	s.reloadLocked()
}
