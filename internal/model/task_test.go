package model

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func TestTaskIsOverdueDayGranularity(t *testing.T) {
	now := time.Date(2026, 2, 9, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  *DueDate
		want bool
	}{
		{name: "no due date", due: nil, want: false},
		{name: "due today", due: dueDate("2026-02-09"), want: false},
		{name: "due yesterday", due: dueDate("2026-02-08"), want: true},
		{name: "due tomorrow", due: dueDate("2026-02-10"), want: false},
		{name: "unparseable", due: dueDate("next week"), want: false},
		{name: "timestamp yesterday", due: dueDate("2026-02-08T23:00:00.000Z"), want: true},
	}
	for _, tc := range cases {
		task := Task{ID: 1, DueDate: tc.due}
		if got := task.IsOverdue(now); got != tc.want {
			t.Fatalf("%s: expected overdue=%v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTaskIsOverdueUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	now := time.Date(2026, 2, 9, 7, 0, 0, 0, loc)
	task := Task{ID: 1, DueDate: dueDate("2026-02-08T20:00:00.000Z")}
	if task.IsOverdue(now) {
		t.Fatal("expected a timestamp landing on the local today to not be overdue")
	}

	midnight := time.Date(2026, 2, 10, 0, 0, 0, 0, loc)
	task.DueDate = dueDate("2026-02-09")
	if !task.IsOverdue(midnight) {
		t.Fatal("expected task due yesterday to be overdue right after midnight")
	}
}

func TestDocumentValidate(t *testing.T) {
	stamp := NewTimestamp(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	doc := Document{
		Tasks:     []Task{{ID: 1, Text: "a"}},
		Completed: []Task{{ID: 2, Text: "b", Completed: &stamp}},
		Skipped:   []Task{{ID: 3, Text: "c", Skipped: &stamp}},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}

	doc.Skipped = append(doc.Skipped, Task{ID: 1, Text: "dup", Skipped: &stamp})
	doc.Completed = append(doc.Completed, Task{ID: 4, Text: "no stamp"})
	doc.Tasks = append(doc.Tasks, Task{Text: "zero"})
	err := doc.Validate()
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if !errors.Is(err, ErrMissingStamp) {
		t.Fatalf("expected ErrMissingStamp, got %v", err)
	}
	if !errors.Is(err, ErrZeroID) {
		t.Fatalf("expected ErrZeroID, got %v", err)
	}
}

func TestNewIDRedrawsOnCollision(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	r := rand.New(rand.NewPCG(1, 2))
	first := NewID(now, rand.New(rand.NewPCG(1, 2)), nil)

	second := NewID(now, r, func(id ID) bool { return id == first })
	if second == first {
		t.Fatalf("expected a fresh id, got the taken one %s", second)
	}
	if int64(second) != now.UnixMilli() {
		t.Fatalf("expected id to carry the creation millisecond, got %s", second)
	}
}

func TestParseIDRoundTrip(t *testing.T) {
	id := ID(1739100000000.5)
	parsed, err := ParseID(id.String())
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if parsed != id {
		t.Fatalf("expected %s, got %s", id, parsed)
	}
	if _, err := ParseID("abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := ParseID("0"); !errors.Is(err, ErrZeroID) {
		t.Fatalf("expected ErrZeroID, got %v", err)
	}
}

func TestParseDueInput(t *testing.T) {
	now := time.Date(2026, 2, 9, 22, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"today":      "2026-02-09",
		"Tomorrow":   "2026-02-10",
		"+3":         "2026-02-12",
		"+1d":        "2026-02-10",
		"2026-03-01": "2026-03-01",
	}
	for input, want := range cases {
		got, err := ParseDueInput(input, now)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if got == nil || string(*got) != want {
			t.Fatalf("%q: expected %s, got %v", input, want, got)
		}
	}

	for _, clear := range []string{"", "none", "clear"} {
		got, err := ParseDueInput(clear, now)
		if err != nil || got != nil {
			t.Fatalf("%q: expected nil due date, got %v (%v)", clear, got, err)
		}
	}

	if _, err := ParseDueInput("2026-13-40", now); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

func TestCloneIsDeep(t *testing.T) {
	stamp := NewTimestamp(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	doc := Document{Tasks: []Task{{ID: 1, Text: "a", DueDate: dueDate("2026-02-10"), Completed: &stamp}}}
	clone := doc.Clone()
	*clone.Tasks[0].DueDate = "2030-01-01"
	clone.Tasks[0].Text = "changed"
	if doc.Tasks[0].Text != "a" || *doc.Tasks[0].DueDate != "2026-02-10" {
		t.Fatalf("clone shares state with original: %+v", doc.Tasks[0])
	}
	if len(clone.Completed) != 0 || clone.Completed == nil {
		t.Fatalf("expected empty non-nil completed collection, got %#v", clone.Completed)
	}
}

func dueDate(s string) *DueDate {
	d := DueDate(s)
	return &d
}
