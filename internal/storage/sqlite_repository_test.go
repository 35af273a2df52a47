package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/neptune/internal/model"
)

func setupJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "neptune-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	journal, err := NewSQLiteJournal(db)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	return journal
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestJournalAppendGetList(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")

	entries := []Entry{
		{Document: "/a.todo", TaskID: 1739100000000.5, Kind: "added", Text: "buy milk", At: base},
		{Document: "/a.todo", TaskID: 1739100000000.5, Kind: "completed", Text: "buy milk", At: base.Add(time.Minute)},
		{Document: "/b.todo", TaskID: 7, Kind: "added", Text: "other file", At: base.Add(2 * time.Minute)},
	}
	var ids []int64
	for _, entry := range entries {
		id, err := journal.Append(ctx, entry)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, id)
	}

	got, err := journal.Get(ctx, ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != "completed" || got.TaskID != 1739100000000.5 || !got.At.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected entry: %#v", got)
	}

	forA, err := journal.List(ctx, EntryFilter{Document: "/a.todo"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(forA) != 2 || forA[0].Kind != "completed" || forA[1].Kind != "added" {
		t.Fatalf("expected newest first for /a.todo, got %#v", forA)
	}

	added, err := journal.List(ctx, EntryFilter{Kind: "added", Limit: 1})
	if err != nil {
		t.Fatalf("list added: %v", err)
	}
	if len(added) != 1 || added[0].Document != "/b.todo" {
		t.Fatalf("unexpected limited list: %#v", added)
	}

	byTask, err := journal.List(ctx, EntryFilter{TaskID: 7})
	if err != nil {
		t.Fatalf("list by task: %v", err)
	}
	if len(byTask) != 1 || byTask[0].Text != "other file" {
		t.Fatalf("unexpected task filter result: %#v", byTask)
	}
}

func TestJournalGetMissingReturnsNotFound(t *testing.T) {
	journal := setupJournal(t)
	if _, err := journal.Get(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJournalRejectsUnknownKindAndZeroID(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	if _, err := journal.Append(ctx, Entry{TaskID: 1, Kind: "exploded"}); err == nil {
		t.Fatal("expected check constraint to reject unknown kind")
	}
	if _, err := journal.Append(ctx, Entry{Kind: "added"}); !errors.Is(err, model.ErrZeroID) {
		t.Fatalf("expected ErrZeroID, got %v", err)
	}
}

func TestJournalPrune(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")
	for i := 0; i < 4; i++ {
		if _, err := journal.Append(ctx, Entry{TaskID: 1, Kind: "edited", At: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	removed, err := journal.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pruned entries, got %d", removed)
	}
	rest, err := journal.List(ctx, EntryFilter{Offset: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected one entry after offset, got %#v", rest)
	}
}

func TestOpenJournalCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "journal.db")
	journal, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()

	if _, err := journal.Append(t.Context(), Entry{TaskID: 3, Kind: "skipped"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.List(t.Context(), EntryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected entry to survive reopen, got %#v", entries)
	}
}

func TestDiscardJournal(t *testing.T) {
	if _, err := Discard.Append(context.Background(), Entry{TaskID: 1, Kind: "added"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := Discard.List(context.Background(), EntryFilter{})
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list, got %#v (%v)", entries, err)
	}
}
