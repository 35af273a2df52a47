package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/views"
)

func (m Model) startAdd() (Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	m.Mode = ModeEditText
	m.Pane = PaneActive
	m.editing = 0
	m.textInput.SetValue("")
	m.textInput.Placeholder = "new task"
	return m, m.textInput.Focus()
}

func (m Model) startEditText(task model.Task) (Model, tea.Cmd) {
	m.Mode = ModeEditText
	m.editing = task.ID
	m.textInput.SetValue(task.Text)
	m.textInput.CursorEnd()
	return m, m.textInput.Focus()
}

func (m Model) handleTextEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeEditor("edit cancelled"), nil
	case "enter":
		text := strings.TrimSpace(m.textInput.Value())
		if m.editing == 0 {
			if text == "" {
				return m.closeEditor("nothing to add"), nil
			}
			task := m.backend.Add(text)
			m = m.closeEditor("")
			m.Cursor = 0
			next, cmd := m.mutated(true, "added: "+task.Text)
			return next, cmd
		}
		id := m.editing
		m = m.closeEditor("")
		return m.mutated(m.backend.UpdateText(id, text), "updated: "+text)
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) startEditDescription(task model.Task) (Model, tea.Cmd) {
	m.Mode = ModeEditDescription
	m.editing = task.ID
	m.descArea.SetValue(task.Description)
	return m, m.descArea.Focus()
}

func (m Model) handleDescriptionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeEditor("edit cancelled"), nil
	case "ctrl+s":
		id := m.editing
		description := m.descArea.Value()
		m = m.closeEditor("")
		return m.mutated(m.backend.UpdateDescription(id, description), "description saved")
	}
	var cmd tea.Cmd
	m.descArea, cmd = m.descArea.Update(msg)
	return m, cmd
}

func (m Model) closeEditor(status string) Model {
	m.Mode = ModeList
	m.editing = 0
	m.textInput.Blur()
	m.descArea.Blur()
	if status != "" {
		m.Status = StatusBar{Text: status}
	}
	return m
}

func (m Model) renderTextEditor() string {
	label := "edit task"
	if m.editing == 0 {
		label = "new task"
	}
	return views.RenderEditor(views.EditorData{
		Label: label,
		View:  m.textInput.View(),
		Hint:  "[enter] save [esc] cancel",
	})
}

func (m Model) renderDescriptionEditor() string {
	return views.RenderEditor(views.EditorData{
		Label: "description",
		View:  m.descArea.View(),
		Hint:  "[ctrl+s] save [esc] cancel",
	})
}
