package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/neptune/internal/commands"
	"github.com/sandeepkv93/neptune/internal/model"
)

func (m Model) openPalette() (Model, tea.Cmd) {
	m.Mode = ModePalette
	m.commandInput.SetValue("")
	m.Status = StatusBar{Text: "command palette active"}
	return m, m.commandInput.Focus()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = ModeList
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		return m.executePaletteCommand(m.commandInput.Value())
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	m.Mode = ModeList
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.backend == nil {
		m.Status = StatusBar{Text: "no document open", IsError: true}
		return m, nil
	}

	changed := false
	selected := func() (model.Task, error) {
		task, ok := m.selectedActive()
		if !ok {
			return model.Task{}, &commands.CommandError{Code: commands.ErrCodeNoSelection, Message: "no active task selected"}
		}
		return task, nil
	}
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task := m.backend.Add(a.Text)
			m.Cursor = 0
			changed = true
			return commands.Result{Message: "added: " + task.Text}, nil
		},
		Due: func(d commands.DueArgs) (commands.Result, error) {
			task, err := selected()
			if err != nil {
				return commands.Result{}, err
			}
			due, err := model.ParseDueInput(d.Raw, m.clock())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			changed = m.backend.SetDueDate(task.ID, due)
			if due == nil {
				return commands.Result{Message: "due date cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("due %s", *due)}, nil
		},
		Complete: func() (commands.Result, error) {
			task, err := selected()
			if err != nil {
				return commands.Result{}, err
			}
			changed = m.backend.Complete(task.ID)
			return commands.Result{Message: "completed: " + task.Text}, nil
		},
		Skip: func() (commands.Result, error) {
			task, err := selected()
			if err != nil {
				return commands.Result{}, err
			}
			changed = m.backend.Skip(task.ID)
			return commands.Result{Message: "skipped: " + task.Text}, nil
		},
		Delete: func() (commands.Result, error) {
			task, err := selected()
			if err != nil {
				return commands.Result{}, err
			}
			changed = m.backend.DeleteActive(task.ID)
			return commands.Result{Message: "deleted: " + task.Text}, nil
		},
		Move: func(a commands.MoveArgs) (commands.Result, error) {
			task, err := selected()
			if err != nil {
				return commands.Result{}, err
			}
			if a.Position > len(m.Doc.Tasks) {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("position %d is past the end of the list (%d tasks)", a.Position, len(m.Doc.Tasks)),
				}
			}
			changed = m.backend.Reorder(m.Cursor, a.Position-1)
			m.Cursor = a.Position - 1
			return commands.Result{Message: fmt.Sprintf("moved %s to %d", task.Text, a.Position)}, nil
		},
		Open: func(a commands.OpenArgs) (commands.Result, error) {
			m = m.openFile(expandHome(a.Path))
			if m.Status.IsError {
				return commands.Result{}, m.LastError
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.logger.Warn("palette command failed", "command", strings.TrimSpace(raw), "err", err)
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m.mutated(changed, res.Message)
}
