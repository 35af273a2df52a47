package lifecycle

import (
	"math/rand/v2"
	"time"

	"github.com/sandeepkv93/neptune/internal/model"
)

type Kind string

const (
	KindAdded     Kind = "added"
	KindEdited    Kind = "edited"
	KindDescribed Kind = "described"
	KindDue       Kind = "due"
	KindCompleted Kind = "completed"
	KindSkipped   Kind = "skipped"
	KindDeleted   Kind = "deleted"
	KindReordered Kind = "reordered"
)

// Change describes one applied mutation. Text carries the task text at the
// time of the change so the journal stays readable after deletes.
type Change struct {
	Kind   Kind
	TaskID model.ID
	Text   string
	At     time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rand = r
		}
	}
}

// Engine applies task mutations to a document in place. Operations whose
// target is missing return false and leave the document untouched.
// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	now  func() time.Time
	rand *rand.Rand
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:  time.Now,
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now exposes the engine clock so callers compute overdue state against the
// same time source.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Add prepends a new task and always succeeds.
func (e *Engine) Add(doc *model.Document, text string) (model.Task, Change) {
	now := e.now()
	task := model.Task{
		ID:      model.NewID(now, e.rand, doc.Contains),
		Text:    text,
		Created: model.NewTimestamp(now),
	}
	task.SetDescription("")

	doc.Tasks = append([]model.Task{task}, doc.Tasks...)
	return task, e.change(KindAdded, task)
}

func (e *Engine) UpdateText(doc *model.Document, id model.ID, text string) (Change, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return Change{}, false
	}
	doc.Tasks[i].Text = text
	return e.change(KindEdited, doc.Tasks[i]), true
}

func (e *Engine) UpdateDescription(doc *model.Document, id model.ID, description string) (Change, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return Change{}, false
	}
	doc.Tasks[i].SetDescription(description)
	return e.change(KindDescribed, doc.Tasks[i]), true
}

// SetDueDate sets or, with a nil due, clears the due date.
func (e *Engine) SetDueDate(doc *model.Document, id model.ID, due *model.DueDate) (Change, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return Change{}, false
	}
	if due != nil {
		d := *due
		due = &d
	}
	doc.Tasks[i].DueDate = due
	return e.change(KindDue, doc.Tasks[i]), true
}

func (e *Engine) Complete(doc *model.Document, id model.ID) (Change, bool) {
	task, ok := takeActive(doc, id)
	if !ok {
		return Change{}, false
	}
	stamp := model.NewTimestamp(e.now())
	task.Completed = &stamp
	doc.Completed = append(doc.Completed, task)
	return e.change(KindCompleted, task), true
}

func (e *Engine) Skip(doc *model.Document, id model.ID) (Change, bool) {
	task, ok := takeActive(doc, id)
	if !ok {
		return Change{}, false
	}
	stamp := model.NewTimestamp(e.now())
	task.Skipped = &stamp
	doc.Skipped = append(doc.Skipped, task)
	return e.change(KindSkipped, task), true
}

func (e *Engine) DeleteActive(doc *model.Document, id model.ID) (Change, bool) {
	task, ok := takeActive(doc, id)
	if !ok {
		return Change{}, false
	}
	return e.change(KindDeleted, task), true
}

func (e *Engine) DeleteCompleted(doc *model.Document, id model.ID) (Change, bool) {
	i := model.IndexOf(doc.Completed, id)
	if i < 0 {
		return Change{}, false
	}
	task := doc.Completed[i]
	doc.Completed = append(doc.Completed[:i:i], doc.Completed[i+1:]...)
	return e.change(KindDeleted, task), true
}

func (e *Engine) change(kind Kind, task model.Task) Change {
	return Change{Kind: kind, TaskID: task.ID, Text: task.Text, At: e.now()}
}

func takeActive(doc *model.Document, id model.ID) (model.Task, bool) {
	i := model.IndexOf(doc.Tasks, id)
	if i < 0 {
		return model.Task{}, false
	}
	task := doc.Tasks[i]
	doc.Tasks = append(doc.Tasks[:i:i], doc.Tasks[i+1:]...)
	return task, true
}
