package model

import (
	"errors"
	"fmt"
)

const (
	CollectionTasks     = "tasks"
	CollectionCompleted = "completed"
	CollectionSkipped   = "skipped"
)

// Document is the unit of persistence: three mutually exclusive task
// collections. Tasks order is display order; Completed and Skipped are in
// move order, newest last.
type Document struct {
	Tasks     []Task `json:"tasks"`
	Completed []Task `json:"completed"`
	Skipped   []Task `json:"skipped"`
}

// EmptyDocument is the document written for a missing file.
func EmptyDocument() Document {
	return Document{Tasks: []Task{}, Completed: []Task{}, Skipped: []Task{}}
}

// Clone returns a deep copy that shares nothing with d.
func (d Document) Clone() Document {
	return Document{
		Tasks:     cloneTasks(d.Tasks),
		Completed: cloneTasks(d.Completed),
		Skipped:   cloneTasks(d.Skipped),
	}
}

// Contains reports whether id is present in any collection.
func (d Document) Contains(id ID) bool {
	return IndexOf(d.Tasks, id) >= 0 || IndexOf(d.Completed, id) >= 0 || IndexOf(d.Skipped, id) >= 0
}

// Validate checks the collection invariants and returns every violation
// joined together.
func (d Document) Validate() error {
	var errs []error
	seen := make(map[ID]string)
	check := func(collection string, tasks []Task) {
		for _, t := range tasks {
			if err := t.validate(collection); err != nil {
				errs = append(errs, err)
			}
			if t.ID == 0 {
				continue
			}
			if prev, ok := seen[t.ID]; ok {
				errs = append(errs, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateID, t.ID, prev, collection))
				continue
			}
			seen[t.ID] = collection
		}
	}
	check(CollectionTasks, d.Tasks)
	check(CollectionCompleted, d.Completed)
	check(CollectionSkipped, d.Skipped)
	return errors.Join(errs...)
}

// IndexOf returns the position of id in tasks, or -1.
func IndexOf(tasks []Task, id ID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Completed == nil {
		d.Completed = []Task{}
	}
	if d.Skipped == nil {
		d.Skipped = []Task{}
	}
}

func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
