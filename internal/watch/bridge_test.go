package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBridgeEmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.todo")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	bridge, err := New(path)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	defer bridge.Close()

	if err := os.WriteFile(path, []byte(`{"tasks":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ev := waitEvent(t, bridge.Events(), 2*time.Second)
	if ev.Err != nil || ev.Path != bridge.Path() {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestBridgeEmitsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.todo")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	bridge, err := New(path)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	defer bridge.Close()

	for i := 0; i < 2; i++ {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, []byte(`{"tasks":[]}`), 0o644); err != nil {
			t.Fatalf("write tmp: %v", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatalf("rename: %v", err)
		}
		waitEvent(t, bridge.Events(), 2*time.Second)
	}
}

func TestBridgeIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.todo")
	bridge, err := New(path)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	defer bridge.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.todo"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	select {
	case ev := <-bridge.Events():
		t.Fatalf("unexpected event for sibling: %#v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestBridgeCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.todo")
	bridge, err := New(path)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	defer bridge.Close()

	for i := 0; i < 20; i++ {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	waitEvent(t, bridge.Events(), 2*time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for bridge.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if bridge.Dropped() == 0 {
		t.Fatal("expected some events to be coalesced")
	}
}

func TestBridgeCloseClosesEvents(t *testing.T) {
	bridge, err := New(filepath.Join(t.TempDir(), "list.todo"))
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	if err := bridge.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = bridge.Close()
	select {
	case _, ok := <-bridge.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestNewRequiresExistingDirectory(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing", "list.todo")); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("events channel closed")
		}
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event after %s", timeout)
		return Event{}
	}
}
