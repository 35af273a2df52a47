package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/views"
)

func (m Model) openPicker(task model.Task) Model {
	now := m.clock()
	cursor := model.StartOfDay(now)
	if task.DueDate != nil {
		if day, ok := task.DueDate.Day(now.Location()); ok {
			cursor = day
		}
	}
	m.Mode = ModeDatePicker
	m.editing = task.ID
	m.picker = PickerState{Cursor: cursor}
	return m
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.shiftPicker(-1)
	case "l", "right":
		m.shiftPicker(1)
	case "k", "up":
		m.shiftPicker(-7)
	case "j", "down":
		m.shiftPicker(7)
	case "t":
		m.picker.Cursor = model.StartOfDay(m.clock())
	case "esc":
		return m.closeEditor("due date unchanged"), nil
	case "backspace":
		id := m.editing
		m = m.closeEditor("")
		return m.mutated(m.backend.SetDueDate(id, nil), "due date cleared")
	case "enter":
		id := m.editing
		due := model.NewDueDate(m.picker.Cursor)
		m = m.closeEditor("")
		return m.mutated(m.backend.SetDueDate(id, &due), fmt.Sprintf("due %s", due))
	}
	return m, nil
}

func (m *Model) shiftPicker(days int) {
	m.picker.Cursor = m.picker.Cursor.AddDate(0, 0, days)
}

func (m Model) renderDatePicker(now time.Time) string {
	current := ""
	if i := model.IndexOf(m.Doc.Tasks, m.editing); i >= 0 && m.Doc.Tasks[i].DueDate != nil {
		current = m.Doc.Tasks[i].DueDate.String()
	}
	return views.RenderDatePicker(views.PickerData{
		Cursor:  m.picker.Cursor,
		Today:   now,
		Current: current,
	})
}
