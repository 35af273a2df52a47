package update

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/neptune/internal/scheduler"
	"github.com/sandeepkv93/neptune/internal/session"
	"github.com/sandeepkv93/neptune/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdateCmd(m.updates),
		waitForRolloverCmd(m.rollover),
		waitForOpenCmd(m.opens),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.Mode {
		case ModePalette:
			return m.handlePaletteKey(typed)
		case ModeEditText:
			return m.handleTextEditKey(typed)
		case ModeEditDescription:
			return m.handleDescriptionKey(typed)
		case ModeDatePicker:
			return m.handlePickerKey(typed)
		}
		return m.handleListKey(typed)
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case spinner.TickMsg:
		if m.Saving {
			var cmd tea.Cmd
			m.saveSpinner, cmd = m.saveSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case DocumentMsg:
		m.applyUpdate(typed.Update)
		return m, waitForUpdateCmd(m.updates)
	case RolloverMsg:
		m.Status = StatusBar{Text: fmt.Sprintf("new day: %s", typed.Event.Day.Format("2006-01-02"))}
		return m, waitForRolloverCmd(m.rollover)
	case OpenFileMsg:
		m = m.openFile(typed.Path)
		return m, waitForOpenCmd(m.opens)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) applyUpdate(u session.Update) {
	m.Doc = u.Doc
	if u.Path != "" {
		m.Path = u.Path
	}
	switch u.Reason {
	case session.ReasonWrite:
		m.Saving = false
		if u.Err != nil {
			m.LastError = u.Err
			m.Status = StatusBar{Text: "save failed: " + u.Err.Error(), IsError: true}
			m.logger.Error("save document", "path", m.Path, "err", u.Err)
		}
	case session.ReasonReload:
		m.Status = StatusBar{Text: "reloaded from disk"}
	case session.ReasonOpen:
		m.Cursor = 0
		m.CompletedCursor = 0
		m.Mode = ModeList
		m.Status = StatusBar{Text: "opened " + filepath.Base(m.Path)}
	}
	m.clampCursors()
}

func (m Model) openFile(path string) Model {
	if m.backend == nil {
		return m
	}
	if err := m.backend.SetFile(path); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Path = m.backend.Path()
	m.Doc = m.backend.Document()
	m.Cursor = 0
	m.CompletedCursor = 0
	m.Mode = ModeList
	m.Status = StatusBar{Text: "opened " + filepath.Base(m.Path)}
	return m
}

func (m Model) View() string {
	now := m.clock()
	left := m.renderActiveList(now)
	if m.ShowCompleted {
		left += "\n\n" + m.renderCompletedPane()
	}

	var right string
	switch m.Mode {
	case ModeEditText:
		right = m.renderTextEditor()
	case ModeEditDescription:
		right = m.renderDescriptionEditor()
	case ModeDatePicker:
		right = m.renderDatePicker(now)
	default:
		right = m.renderDetail(now)
	}
	if help := m.renderHelpIfVisible(); help != "" {
		right += "\n\n" + help
	}

	return views.RenderApp(views.AppData{
		Header:        m.renderHeader(),
		LeftPane:      left,
		RightPane:     right,
		StatusLine:    m.Status.Text,
		StatusIsError: m.Status.IsError,
		Overlay:       views.RenderCommandPalette(m.Mode == ModePalette, m.commandInput.View()),
		Footer:        m.renderFooter(),
		Width:         m.width,
	})
}

func (m Model) renderFooter() string {
	k := m.Keys
	parts := []key.Binding{k.Add, k.Complete, k.Skip, k.Delete, k.Due, k.ToggleCompleted, k.Palette, k.Help, k.Quit}
	out := "keys:"
	for _, b := range parts {
		out += fmt.Sprintf(" %s %s |", b.Help().Key, b.Help().Desc)
	}
	return out[:len(out)-2]
}

func waitForUpdateCmd(ch <-chan session.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return DocumentMsg{Update: u}
	}
}

func waitForRolloverCmd(ch <-chan scheduler.RolloverEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RolloverMsg{Event: ev}
	}
}

func waitForOpenCmd(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return OpenFileMsg{Path: path}
	}
}
