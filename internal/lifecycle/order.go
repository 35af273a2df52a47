package lifecycle

import "github.com/sandeepkv93/neptune/internal/model"

// Reorder removes the task at from and inserts it at to, where to indexes the
// already shortened slice. Out of range indices leave tasks unchanged.
// The input slice is not modified.
func Reorder(tasks []model.Task, from, to int) ([]model.Task, bool) {
	n := len(tasks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return tasks, false
	}
	moved := tasks[from]
	out := make([]model.Task, 0, n)
	out = append(out, tasks[:from]...)
	out = append(out, tasks[from+1:]...)
	out = append(out[:to], append([]model.Task{moved}, out[to:]...)...)
	return out, true
}

func (e *Engine) Reorder(doc *model.Document, from, to int) (Change, bool) {
	out, ok := Reorder(doc.Tasks, from, to)
	if !ok {
		return Change{}, false
	}
	doc.Tasks = out
	return e.change(KindReordered, out[to]), true
}

// MoveUp swaps the task one place towards the top of the list.
func (e *Engine) MoveUp(doc *model.Document, id model.ID) (Change, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return Change{}, false
	}
	return e.Reorder(doc, i, i-1)
}

func (e *Engine) MoveDown(doc *model.Document, id model.ID) (Change, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return Change{}, false
	}
	return e.Reorder(doc, i, i+1)
}
