package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/neptune/internal/model"
)

var ErrInvalidSpec = errors.New("scheduler: invalid schedule")

// DefaultSpec fires once a day at local midnight, which is when overdue
// state can change without any edit.
const DefaultSpec = "@midnight"

// RolloverEvent marks the start of a new local day.
type RolloverEvent struct {
	At  time.Time
	Day time.Time
}

type Option func(*Engine)

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithSpec(spec string) Option {
	return func(e *Engine) {
		if spec != "" {
			e.spec = spec
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type Engine struct {
	mu      sync.Mutex
	cron    *cron.Cron
	loc     *time.Location
	spec    string
	now     func() time.Time
	out     chan RolloverEvent
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int, opts ...Option) (*Engine, error) {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		loc:  time.Local,
		spec: DefaultSpec,
		now:  time.Now,
		out:  make(chan RolloverEvent, bufferSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cron = cron.New(cron.WithLocation(e.loc))
	if _, err := e.cron.AddFunc(e.spec, e.fire); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSpec, e.spec, err)
	}
	return e, nil
}

func (e *Engine) C() <-chan RolloverEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.cron.Start()
}

// Stop waits for a running job to finish and then closes C.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	ctx := e.cron.Stop()
	<-ctx.Done()

	e.mu.Lock()
	close(e.out)
	e.mu.Unlock()
}

// Next reports when the next rollover is due. It is zero before Start.
func (e *Engine) Next() time.Time {
	entries := e.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) fire() {
	now := e.now().In(e.loc)
	e.emit(RolloverEvent{At: now, Day: model.StartOfDay(now)})
}

func (e *Engine) emit(ev RolloverEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	select {
	case e.out <- ev:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}
