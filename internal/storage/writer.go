package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/neptune/internal/model"
)

var ErrClosed = errors.New("storage: writer closed")

// Sink is where the Writer sends documents. *FileStore is the usual one.
type Sink interface {
	Write(doc model.Document) error
}

type WriteResult struct {
	OK  bool
	Err error
	At  time.Time
}

type WriterOption func(*Writer)

func WithWriterLogger(logger *log.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithResultHandler registers fn to be called from the writer goroutine after
// every write attempt.
func WithResultHandler(fn func(WriteResult)) WriterOption {
	return func(w *Writer) {
		w.onResult = fn
	}
}

// Writer is a depth-one write queue. While a write is in flight, at most one
// document waits behind it and each Submit replaces the waiting one, so the
// newest document always reaches the sink and writes never overlap.
type Writer struct {
	sink     Sink
	logger   *log.Logger
	onResult func(WriteResult)

	mu       sync.Mutex
	pending  *model.Document
	inFlight bool
	idle     chan struct{}
	closed   bool

	wakeup chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	writes    uint64
	coalesced uint64
}

func NewWriter(sink Sink, opts ...WriterOption) *Writer {
	idle := make(chan struct{})
	close(idle)
	w := &Writer{
		sink:   sink,
		logger: log.New(io.Discard),
		idle:   idle,
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.loop()
	return w
}

// Submit queues doc for writing and returns immediately.
func (w *Writer) Submit(doc model.Document) error {
	snapshot := doc.Clone()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.pending != nil {
		atomic.AddUint64(&w.coalesced, 1)
	}
	if w.pending == nil && !w.inFlight {
		w.idle = make(chan struct{})
	}
	w.pending = &snapshot
	w.mu.Unlock()

	w.signalWakeup()
	return nil
}

// Flush waits until nothing is pending or in flight.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil || w.inFlight
}

// Writes returns the number of write attempts made so far.
func (w *Writer) Writes() uint64 {
	return atomic.LoadUint64(&w.writes)
}

// Coalesced returns how many queued documents were replaced before being
// written.
func (w *Writer) Coalesced() uint64 {
	return atomic.LoadUint64(&w.coalesced)
}

// Close writes whatever is still queued and stops the writer goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.doneCh
		return
	}
	w.closed = true
	close(w.stopCh)
	w.mu.Unlock()
	<-w.doneCh
}

func (w *Writer) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.wakeup:
			w.drain()
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if w.pending == nil {
			if w.inFlight {
				w.inFlight = false
				close(w.idle)
			}
			w.mu.Unlock()
			return
		}
		doc := *w.pending
		w.pending = nil
		w.inFlight = true
		w.mu.Unlock()

		w.write(doc)
	}
}

func (w *Writer) write(doc model.Document) {
	atomic.AddUint64(&w.writes, 1)
	err := w.sink.Write(doc)
	result := WriteResult{OK: err == nil, Err: err, At: time.Now()}
	if err != nil {
		w.logger.Error("write document", "err", err)
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}

func (w *Writer) signalWakeup() {
	select {
	case w.wakeup <- struct{}{}:
	default:
	}
}
