package lifecycle

import (
	"strings"
	"testing"

	"github.com/sandeepkv93/neptune/internal/model"
)

func letters(s string) []model.Task {
	out := make([]model.Task, 0, len(s))
	for i, r := range s {
		out = append(out, model.Task{ID: model.ID(i + 1), Text: string(r)})
	}
	return out
}

func join(tasks []model.Task) string {
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(t.Text)
	}
	return b.String()
}

func TestReorderSpliceSemantics(t *testing.T) {
	cases := []struct {
		from, to int
		want     string
		changed  bool
	}{
		{from: 0, to: 2, want: "BCAD", changed: true},
		{from: 3, to: 0, want: "DABC", changed: true},
		{from: 1, to: 3, want: "ACDB", changed: true},
		{from: 2, to: 1, want: "ACBD", changed: true},
		{from: 1, to: 1, want: "ABCD", changed: false},
		{from: -1, to: 0, want: "ABCD", changed: false},
		{from: 0, to: 4, want: "ABCD", changed: false},
		{from: 4, to: 0, want: "ABCD", changed: false},
	}
	for _, tc := range cases {
		in := letters("ABCD")
		out, changed := Reorder(in, tc.from, tc.to)
		if changed != tc.changed || join(out) != tc.want {
			t.Fatalf("reorder(%d,%d): expected %s changed=%v, got %s changed=%v", tc.from, tc.to, tc.want, tc.changed, join(out), changed)
		}
		if join(in) != "ABCD" {
			t.Fatalf("reorder(%d,%d) modified its input: %s", tc.from, tc.to, join(in))
		}
	}
}

func TestMoveUpDown(t *testing.T) {
	engine := newTestEngine()
	doc := model.Document{Tasks: letters("ABC")}

	if _, ok := engine.MoveUp(&doc, 1); ok {
		t.Fatal("expected moving the top task up to be a no-op")
	}
	change, ok := engine.MoveDown(&doc, 1)
	if !ok || change.Kind != KindReordered || change.TaskID != 1 {
		t.Fatalf("unexpected change: %+v ok=%v", change, ok)
	}
	if join(doc.Tasks) != "BAC" {
		t.Fatalf("expected BAC, got %s", join(doc.Tasks))
	}
	engine.MoveUp(&doc, 3)
	if join(doc.Tasks) != "BCA" {
		t.Fatalf("expected BCA, got %s", join(doc.Tasks))
	}
	if _, ok := engine.MoveDown(&doc, 99); ok {
		t.Fatal("expected unknown id to be a no-op")
	}
}
