package update

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseDroppedPaths(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "/home/me/report.pdf", []string{"/home/me/report.pdf"}},
		{"escaped spaces", `/tmp/My\ Notes.txt /tmp/b.txt`, []string{"/tmp/My Notes.txt", "/tmp/b.txt"}},
		{"quoted", `'/tmp/a b.txt' "/tmp/c d.txt"`, []string{"/tmp/a b.txt", "/tmp/c d.txt"}},
		{"newlines and uri", "file:///tmp/x%20y.md\n~/z.md\n", []string{"/tmp/x y.md", "~/z.md"}},
		{"directory", "./photos/", []string{"./photos"}},
		{"plain text", "buy milk", nil},
		{"mixed", "/tmp/a.txt and more", nil},
		{"empty", "   ", nil},
	}
	for _, tc := range tests {
		got := parseDroppedPaths(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: parseDroppedPaths(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestPastedPathsBecomeTasks(t *testing.T) {
	m, s := newTestModel(t)
	m = addTask(t, m, "existing")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/tmp/first.txt '/tmp/second file.pdf'"), Paste: true})
	m = updated.(Model)

	if got := texts(s.Document().Tasks); got != "second file.pdf,first.txt,existing" {
		t.Fatalf("expected dropped files added in order, got %s", got)
	}
	if m.Cursor != 0 || !m.Saving {
		t.Fatalf("expected cursor on top and save started, cursor=%d saving=%v", m.Cursor, m.Saving)
	}
	if m.Status.Text != "added 2 tasks from dropped files" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("just some words"), Paste: true})
	m = updated.(Model)
	if len(s.Document().Tasks) != 3 || m.Status.Text != "paste ignored: no file paths" {
		t.Fatalf("expected plain paste ignored, status %q", m.Status.Text)
	}
}
