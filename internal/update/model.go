package update

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/scheduler"
	"github.com/sandeepkv93/neptune/internal/session"
)

// Backend is the document the UI edits. *session.Session implements it.
type Backend interface {
	Path() string
	Document() model.Document
	Add(text string) model.Task
	UpdateText(id model.ID, text string) bool
	UpdateDescription(id model.ID, description string) bool
	SetDueDate(id model.ID, due *model.DueDate) bool
	Complete(id model.ID) bool
	Skip(id model.ID) bool
	DeleteActive(id model.ID) bool
	DeleteCompleted(id model.ID) bool
	Reorder(from, to int) bool
	MoveUp(id model.ID) bool
	MoveDown(id model.ID) bool
	SetFile(path string) error
}

type Mode string

const (
	ModeList            Mode = "list"
	ModeEditText        Mode = "edit"
	ModeEditDescription Mode = "describe"
	ModeDatePicker      Mode = "due"
	ModePalette         Mode = "palette"
)

type Pane string

const (
	PaneActive    Pane = "active"
	PaneCompleted Pane = "completed"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type Config struct {
	Backend       Backend
	Updates       <-chan session.Update
	Rollover      <-chan scheduler.RolloverEvent
	OpenRequests  <-chan string
	Clock         func() time.Time
	Logger        *log.Logger
	ShowCompleted bool
}

type Model struct {
	Doc             model.Document
	Path            string
	Mode            Mode
	Pane            Pane
	Cursor          int
	CompletedCursor int
	ShowCompleted   bool
	HelpVisible     bool
	Saving          bool
	Status          StatusBar
	Quitting        bool
	LastError       error
	Keys            KeyMap

	backend  Backend
	updates  <-chan session.Update
	rollover <-chan scheduler.RolloverEvent
	opens    <-chan string
	clock    func() time.Time
	logger   *log.Logger

	// editing is the task under edit; zero while adding a new one.
	editing model.ID
	picker  PickerState
	width   int
	height  int

	textInput      textinput.Model
	commandInput   textinput.Model
	descArea       textarea.Model
	completedTable table.Model
	preview        viewport.Model
	saveSpinner    spinner.Model
	doneProgress   progress.Model
	helpModel      help.Model
}

type PickerState struct {
	Cursor time.Time
}

type DocumentMsg struct {
	Update session.Update
}

type RolloverMsg struct {
	Event scheduler.RolloverEvent
}

type OpenFileMsg struct {
	Path string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(cfg Config) Model {
	m := Model{
		Mode:          ModeList,
		Pane:          PaneActive,
		ShowCompleted: cfg.ShowCompleted,
		Keys:          DefaultKeyMap(),
		backend:       cfg.Backend,
		updates:       cfg.Updates,
		rollover:      cfg.Rollover,
		opens:         cfg.OpenRequests,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
		width:         100,
		height:        30,
		Doc:           model.EmptyDocument(),
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	if m.backend != nil {
		m.Doc = m.backend.Document()
		m.Path = m.backend.Path()
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.textInput = textinput.New()
	m.textInput.Prompt = "> "
	m.textInput.CharLimit = 512
	m.textInput.Width = 40

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 512
	m.commandInput.Width = 48

	m.descArea = textarea.New()
	m.descArea.SetWidth(44)
	m.descArea.SetHeight(10)
	m.descArea.ShowLineNumbers = false
	m.descArea.Placeholder = "Description (markdown)"

	cols := []table.Column{
		{Title: "Task", Width: 28},
		{Title: "Completed", Width: 16},
	}
	m.completedTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(6))

	m.preview = viewport.New(44, 10)

	m.saveSpinner = spinner.New()
	m.saveSpinner.Spinner = spinner.Dot

	m.doneProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(20))

	m.helpModel = help.New()
}
