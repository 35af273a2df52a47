package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Journal is the activity log of lifecycle changes. It is write-mostly and is
// never used to rebuild a document.
type Journal interface {
	Append(ctx context.Context, in Entry) (int64, error)
	Get(ctx context.Context, id int64) (Entry, error)
	List(ctx context.Context, filter EntryFilter) ([]Entry, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}

// Discard is a Journal that records nothing.
var Discard Journal = discardJournal{}

type discardJournal struct{}

func (discardJournal) Append(context.Context, Entry) (int64, error) { return 0, nil }

func (discardJournal) Get(context.Context, int64) (Entry, error) { return Entry{}, ErrNotFound }

func (discardJournal) List(context.Context, EntryFilter) ([]Entry, error) { return []Entry{}, nil }

func (discardJournal) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

func (discardJournal) Close() error { return nil }
