package update

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminals deliver dropped files as a bracketed paste of their paths.
func (m Model) addDroppedFiles(pasted string) (Model, tea.Cmd) {
	paths := parseDroppedPaths(pasted)
	if len(paths) == 0 {
		m.Status = StatusBar{Text: "paste ignored: no file paths"}
		return m, nil
	}
	if m.backend == nil {
		m.Status = StatusBar{Text: "no document open", IsError: true}
		return m, nil
	}
	for _, p := range paths {
		m.backend.Add(filepath.Base(p))
	}
	m.Cursor = 0
	status := fmt.Sprintf("added %d tasks from dropped files", len(paths))
	if len(paths) == 1 {
		status = "added: " + filepath.Base(paths[0])
	}
	return m.mutated(true, status)
}

// parseDroppedPaths splits pasted text into paths, honouring shell quoting
// and backslash escapes. Anything that does not look like a path rejects the
// whole paste.
func parseDroppedPaths(text string) []string {
	var (
		out     []string
		cur     strings.Builder
		quote   rune
		escaped bool
		inToken bool
	)
	flush := func() {
		if inToken {
			out = append(out, cur.String())
		}
		cur.Reset()
		inToken = false
	}
	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()

	paths := make([]string, 0, len(out))
	for _, tok := range out {
		p, ok := droppedPath(tok)
		if !ok {
			return nil
		}
		paths = append(paths, p)
	}
	return paths
}

func droppedPath(tok string) (string, bool) {
	if rest, ok := strings.CutPrefix(tok, "file://"); ok {
		unescaped, err := url.PathUnescape(rest)
		if err != nil {
			return "", false
		}
		tok = unescaped
	}
	tok = strings.TrimRight(tok, "/")
	switch {
	case tok == "":
		return "", false
	case filepath.IsAbs(tok), strings.HasPrefix(tok, "~/"),
		strings.HasPrefix(tok, "./"), strings.HasPrefix(tok, "../"):
		return tok, true
	}
	return "", false
}
