package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/neptune/internal/views"
)

type KeyMap struct {
	Up              key.Binding
	Down            key.Binding
	Add             key.Binding
	Edit            key.Binding
	Describe        key.Binding
	Complete        key.Binding
	Skip            key.Binding
	Delete          key.Binding
	DeleteCompleted key.Binding
	Due             key.Binding
	MoveUp          key.Binding
	MoveDown        key.Binding
	ToggleCompleted key.Binding
	Palette         key.Binding
	Help            key.Binding
	Quit            key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:              key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "previous task")),
		Down:            key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "next task")),
		Add:             key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n/a", "add task")),
		Edit:            key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit text")),
		Describe:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "edit description")),
		Complete:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Skip:            key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Delete:          key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		DeleteCompleted: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete completed task")),
		Due:             key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "set due date")),
		MoveUp:          key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:        key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		ToggleCompleted: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle completed list")),
		Palette:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		Help:            key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.modeBindings()
	plain := make([]string, 0, len(bindings))
	for _, b := range bindings {
		plain = append(plain, fmt.Sprintf("- %s: %s", b.Help().Key, b.Help().Desc))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Mode:     string(m.Mode),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: []key.Binding{m.Keys.Add, m.Keys.Complete, m.Keys.Palette, m.Keys.Help, m.Keys.Quit},
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) modeBindings() []key.Binding {
	switch m.Mode {
	case ModeEditText:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	case ModeEditDescription:
		return []key.Binding{
			key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	case ModeDatePicker:
		return []key.Binding{
			key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "previous/next day")),
			key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "next/previous week")),
			key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
			key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "clear")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "set")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	case ModePalette:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run: add, due, complete, skip, delete, move, open")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		}
	default:
		k := m.Keys
		return []key.Binding{
			k.Up, k.Down, k.Add, k.Edit, k.Describe, k.Complete, k.Skip, k.Delete,
			k.DeleteCompleted, k.Due, k.MoveUp, k.MoveDown, k.ToggleCompleted, k.Palette, k.Help, k.Quit,
		}
	}
}
