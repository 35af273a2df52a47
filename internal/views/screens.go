package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

type TaskRow struct {
	Position       int
	Text           string
	Due            string
	Overdue        bool
	HasDescription bool
	Selected       bool
}

type TaskListData struct {
	Title   string
	Rows    []TaskRow
	Width   int
	Focused bool
}

type CompletedPaneData struct {
	Completed int
	Skipped   int
	TableView string
	Focused   bool
}

type DetailData struct {
	Text        string
	Created     string
	Due         string
	Overdue     bool
	Description string
}

type EditorData struct {
	Label string
	View  string
	Hint  string
}

type PickerData struct {
	Cursor  time.Time
	Today   time.Time
	Current string
}

type HelpPanelData struct {
	Mode     string
	Bindings []string
	HelpView string
}

const OverdueBadge = "OVERDUE"

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	title := data.Title
	if data.Focused {
		title = cursorStyle.Render(title)
	}
	b.WriteString(title + "\n")
	if len(data.Rows) == 0 {
		b.WriteString(mutedStyle.Render("  (no tasks, press n to add one)"))
		return b.String()
	}

	width := data.Width
	if width <= 0 {
		width = 40
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row, width))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTaskRow(row TaskRow, width int) string {
	cursor := "  "
	if row.Selected {
		cursor = cursorStyle.Render("> ")
	}
	prefix := fmt.Sprintf("%2d. ", row.Position)
	lead := len(prefix) + 2

	text := row.Text
	if strings.TrimSpace(text) == "" {
		text = mutedStyle.Render("(untitled)")
	}
	if row.HasDescription {
		text += " " + mutedStyle.Render("+")
	}
	wrapAt := width - lead
	if wrapAt < 10 {
		wrapAt = 10
	}
	wrapped := wordwrap.String(text, wrapAt)
	first, rest, _ := strings.Cut(wrapped, "\n")

	var b strings.Builder
	b.WriteString(cursor + prefix + first)
	if rest != "" {
		b.WriteString("\n" + indent.String(rest, uint(lead)))
	}
	if row.Due != "" {
		b.WriteString("\n" + strings.Repeat(" ", lead) + renderDue(row.Due, row.Overdue))
	}
	return b.String()
}

func renderDue(due string, overdue bool) string {
	if overdue {
		return dueStyle.Render("due "+due) + " " + overdueStyle.Render(OverdueBadge)
	}
	return dueStyle.Render("due " + due)
}

func RenderCompletedPane(data CompletedPaneData) string {
	title := fmt.Sprintf("Completed (%d)  Skipped (%d)", data.Completed, data.Skipped)
	if data.Focused {
		title = cursorStyle.Render(title)
	}
	if data.Completed == 0 {
		return title + "\n" + mutedStyle.Render("  (nothing completed yet)")
	}
	return title + "\n" + data.TableView
}

func RenderDetail(data DetailData) string {
	if data.Text == "" && data.Created == "" {
		return "details:\n" + mutedStyle.Render("(no selection)")
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(data.Text + "\n")
	b.WriteString(mutedStyle.Render("created "+data.Created) + "\n")
	if data.Due != "" {
		b.WriteString(renderDue(data.Due, data.Overdue) + "\n")
	}
	b.WriteString("\ndescription:\n")
	if strings.TrimSpace(data.Description) == "" {
		b.WriteString(mutedStyle.Render("(empty, press d to write one)"))
	} else {
		b.WriteString(data.Description)
	}
	return b.String()
}

func RenderEditor(data EditorData) string {
	out := data.Label + ":\n" + data.View
	if data.Hint != "" {
		out += "\n" + mutedStyle.Render(data.Hint)
	}
	return out
}

// RenderDatePicker draws the month containing the cursor, weeks starting on
// Monday. The cursor day is bracketed and today is starred.
func RenderDatePicker(data PickerData) string {
	cursor := data.Cursor
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, cursor.Location())
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	var b strings.Builder
	b.WriteString("due date:\n")
	b.WriteString(fmt.Sprintf("%s\n", first.Format("January 2006")))
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")
	b.WriteString(strings.Repeat("    ", offset))
	for day := 1; day <= days; day++ {
		b.WriteString(pickerCell(day, cursor, data.Today))
		if (offset+day)%7 == 0 && day != days {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	current := data.Current
	if current == "" {
		current = "none"
	}
	b.WriteString(fmt.Sprintf("selected: %s  current: %s\n", cursor.Format("2006-01-02"), current))
	b.WriteString(mutedStyle.Render("[h/l] day [j/k] week [t] today [backspace] clear [enter] set [esc] cancel"))
	return b.String()
}

func pickerCell(day int, cursor, today time.Time) string {
	mark := " "
	if sameDay(today, cursor, day) {
		mark = "*"
	}
	if day == cursor.Day() {
		return cursorStyle.Render(fmt.Sprintf("[%2d]", day))
	}
	return fmt.Sprintf("%s%2d ", mark, day)
}

func sameDay(today, month time.Time, day int) bool {
	return today.Year() == month.Year() && today.Month() == month.Month() && today.Day() == day
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n%s",
		strings.ToLower(data.Mode),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
