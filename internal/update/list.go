package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/views"
)

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Paste {
		return m.addDroppedFiles(string(msg.Runes))
	}
	k := m.Keys
	switch {
	case key.Matches(msg, k.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case key.Matches(msg, k.Palette):
		return m.openPalette()
	case key.Matches(msg, k.ToggleCompleted):
		m.ShowCompleted = !m.ShowCompleted
		if m.ShowCompleted {
			m.Pane = PaneCompleted
		} else {
			m.Pane = PaneActive
		}
		return m, nil
	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, k.Add):
		return m.startAdd()
	case key.Matches(msg, k.DeleteCompleted):
		return m.deleteSelectedCompleted()
	}

	if m.Pane == PaneCompleted {
		return m, nil
	}
	task, ok := m.selectedActive()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, k.Edit):
		return m.startEditText(task)
	case key.Matches(msg, k.Describe):
		return m.startEditDescription(task)
	case key.Matches(msg, k.Due):
		return m.openPicker(task), nil
	case key.Matches(msg, k.Complete):
		return m.mutated(m.backend.Complete(task.ID), "completed: "+task.Text)
	case key.Matches(msg, k.Skip):
		return m.mutated(m.backend.Skip(task.ID), "skipped: "+task.Text)
	case key.Matches(msg, k.Delete):
		return m.mutated(m.backend.DeleteActive(task.ID), "deleted: "+task.Text)
	case key.Matches(msg, k.MoveUp):
		next, cmd := m.mutated(m.backend.MoveUp(task.ID), "")
		next.followTask(task.ID)
		return next, cmd
	case key.Matches(msg, k.MoveDown):
		next, cmd := m.mutated(m.backend.MoveDown(task.ID), "")
		next.followTask(task.ID)
		return next, cmd
	}
	return m, nil
}

func (m Model) deleteSelectedCompleted() (Model, tea.Cmd) {
	if !m.ShowCompleted {
		return m, nil
	}
	task, ok := m.selectedCompleted()
	if !ok {
		return m, nil
	}
	return m.mutated(m.backend.DeleteCompleted(task.ID), "removed from completed: "+task.Text)
}

// mutated refreshes the document after a backend call and starts the save
// spinner when the call changed something.
func (m Model) mutated(changed bool, status string) (Model, tea.Cmd) {
	if !changed {
		return m, nil
	}
	m.Doc = m.backend.Document()
	m.clampCursors()
	if status != "" {
		m.Status = StatusBar{Text: status}
	}
	if m.Saving {
		return m, nil
	}
	m.Saving = true
	return m, m.saveSpinner.Tick
}

func (m *Model) moveCursor(delta int) {
	if m.Pane == PaneCompleted {
		m.CompletedCursor += delta
	} else {
		m.Cursor += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.Cursor = clamp(m.Cursor, len(m.Doc.Tasks))
	m.CompletedCursor = clamp(m.CompletedCursor, len(m.Doc.Completed))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) followTask(id model.ID) {
	if i := model.IndexOf(m.Doc.Tasks, id); i >= 0 {
		m.Cursor = i
	}
}

func (m Model) selectedActive() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Doc.Tasks) {
		return model.Task{}, false
	}
	return m.Doc.Tasks[m.Cursor], true
}

func (m Model) selectedCompleted() (model.Task, bool) {
	if m.CompletedCursor < 0 || m.CompletedCursor >= len(m.Doc.Completed) {
		return model.Task{}, false
	}
	return m.Doc.Completed[m.CompletedCursor], true
}

func (m *Model) syncBubbleData() {
	pane := views.PaneWidth(m.width)
	m.textInput.Width = pane - 4
	m.commandInput.Width = pane
	m.descArea.SetWidth(pane)
	m.preview.Width = pane
	m.preview.Height = max(m.height/3, 6)

	rows := make([]table.Row, 0, len(m.Doc.Completed))
	for _, task := range m.Doc.Completed {
		when := ""
		if task.Completed != nil {
			when = task.Completed.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{task.Text, when})
	}
	m.completedTable.SetColumns([]table.Column{
		{Title: "Task", Width: max(pane-20, 10)},
		{Title: "Completed", Width: 16},
	})
	m.completedTable.SetRows(rows)
	if len(rows) > 0 {
		m.completedTable.SetCursor(m.CompletedCursor)
	}
	if m.Pane == PaneCompleted {
		m.completedTable.Focus()
	} else {
		m.completedTable.Blur()
	}

	if task, ok := m.selectedActive(); ok {
		m.preview.SetContent(views.RenderMarkdown(views.StripHTML(task.Description), pane))
	} else {
		m.preview.SetContent("")
	}
}

func (m Model) renderHeader() string {
	total := len(m.Doc.Tasks) + len(m.Doc.Completed) + len(m.Doc.Skipped)
	pct := 0.0
	if total > 0 {
		pct = float64(len(m.Doc.Completed)) / float64(total)
	}
	header := fmt.Sprintf("neptune | %s | %s %d%%", m.Path, m.doneProgress.ViewAs(pct), int(pct*100))
	if m.Saving {
		header += " | " + m.saveSpinner.View() + " saving"
	}
	return header
}

func (m Model) renderActiveList(now time.Time) string {
	rows := make([]views.TaskRow, 0, len(m.Doc.Tasks))
	for i, task := range m.Doc.Tasks {
		row := views.TaskRow{
			Position:       i + 1,
			Text:           task.Text,
			Overdue:        task.IsOverdue(now),
			HasDescription: task.Description != "",
			Selected:       i == m.Cursor && m.Pane == PaneActive,
		}
		if task.DueDate != nil {
			row.Due = task.DueDate.String()
		}
		rows = append(rows, row)
	}
	return views.RenderTaskList(views.TaskListData{
		Title:   fmt.Sprintf("Active (%d)", len(m.Doc.Tasks)),
		Rows:    rows,
		Width:   views.PaneWidth(m.width),
		Focused: m.Pane == PaneActive,
	})
}

func (m Model) renderCompletedPane() string {
	return views.RenderCompletedPane(views.CompletedPaneData{
		Completed: len(m.Doc.Completed),
		Skipped:   len(m.Doc.Skipped),
		TableView: m.completedTable.View(),
		Focused:   m.Pane == PaneCompleted,
	})
}

func (m Model) renderDetail(now time.Time) string {
	task, ok := m.selectedActive()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	data := views.DetailData{
		Text:        task.Text,
		Created:     task.Created.Format("2006-01-02 15:04"),
		Overdue:     task.IsOverdue(now),
		Description: m.preview.View(),
	}
	if task.Description == "" {
		data.Description = ""
	}
	if task.DueDate != nil {
		data.Due = task.DueDate.String()
	}
	return views.RenderDetail(data)
}
