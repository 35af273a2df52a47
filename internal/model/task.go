package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrZeroID       = errors.New("model: task id is required")
	ErrDuplicateID  = errors.New("model: task id appears more than once")
	ErrMissingStamp = errors.New("model: lifecycle timestamp is required")
)

// Task is a single to-do item. Identity is the ID field; the document is
// serialized and reloaded, so pointer identity means nothing.
type Task struct {
	ID          ID
	Text        string
	Description string
	Created     Timestamp
	DueDate     *DueDate
	Completed   *Timestamp
	Skipped     *Timestamp

	hasDescription bool
	extra          map[string]json.RawMessage
}

// SetDescription replaces the description and marks it as present on the wire.
func (t *Task) SetDescription(description string) {
	t.Description = description
	t.hasDescription = true
}

// HasDescription reports whether the description key is carried by the task,
// even when it is empty.
func (t Task) HasDescription() bool {
	return t.hasDescription || t.Description != ""
}

// IsOverdue reports whether the due date falls strictly before the calendar
// day of now, both taken at local midnight in now's location.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due, ok := t.DueDate.Day(now.Location())
	if !ok {
		return false
	}
	return due.Before(StartOfDay(now))
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.Completed != nil {
		c := *t.Completed
		out.Completed = &c
	}
	if t.Skipped != nil {
		s := *t.Skipped
		out.Skipped = &s
	}
	if t.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(t.extra))
		for k, v := range t.extra {
			out.extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func (t Task) validate(collection string) error {
	if t.ID == 0 {
		return fmt.Errorf("%w: %s entry %q", ErrZeroID, collection, t.Text)
	}
	switch collection {
	case CollectionCompleted:
		if t.Completed == nil {
			return fmt.Errorf("%w: completed task %s has no completed time", ErrMissingStamp, t.ID)
		}
	case CollectionSkipped:
		if t.Skipped == nil {
			return fmt.Errorf("%w: skipped task %s has no skipped time", ErrMissingStamp, t.ID)
		}
	}
	return nil
}
