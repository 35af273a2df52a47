package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsRolloverWithLocalDay(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	now := time.Date(2026, 2, 9, 14, 0, 5, 0, time.UTC)
	engine, err := NewEngine(4, WithLocation(loc), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	defer engine.Stop()

	engine.fire()
	ev := waitEvent(t, engine.C(), time.Second)
	wantDay := time.Date(2026, 2, 10, 0, 0, 0, 0, loc)
	if !ev.Day.Equal(wantDay) {
		t.Fatalf("expected day %s, got %s", wantDay, ev.Day)
	}
	if ev.At.Location() != loc {
		t.Fatalf("expected event time in engine location, got %s", ev.At.Location())
	}
}

func TestEngineFiresOnSchedule(t *testing.T) {
	engine, err := NewEngine(1, WithSpec("@every 1s"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	defer engine.Stop()

	if engine.Next().IsZero() {
		t.Fatal("expected next run after start")
	}
	waitEvent(t, engine.C(), 3*time.Second)
}

func TestEngineNextIsMidnight(t *testing.T) {
	engine, err := NewEngine(1, WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	defer engine.Stop()

	next := engine.Next()
	if next.Hour() != 0 || next.Minute() != 0 || !next.After(time.Now()) {
		t.Fatalf("expected next rollover at a future midnight, got %s", next)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine, err := NewEngine(1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	defer engine.Stop()

	for i := 0; i < 25; i++ {
		engine.fire()
	}
	if engine.Dropped() != 24 {
		t.Fatalf("expected 24 dropped events, got %d", engine.Dropped())
	}
}

func TestNewEngineValidatesSpec(t *testing.T) {
	if _, err := NewEngine(1, WithSpec("not a schedule")); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestStopClosesChannelAndIgnoresLateFires(t *testing.T) {
	engine, err := NewEngine(1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.Start()
	engine.Stop()
	engine.Stop()
	engine.fire()
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected closed channel after stop")
	}
}

func waitEvent(t *testing.T, ch <-chan RolloverEvent, timeout time.Duration) RolloverEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return RolloverEvent{}
	}
}
