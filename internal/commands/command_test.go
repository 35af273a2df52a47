package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent", TypeAdd},
		{"due tomorrow", TypeDue},
		{"Complete", TypeComplete},
		{"/skip", TypeSkip},
		{"delete", TypeDelete},
		{"move 3", TypeMove},
		{"open ~/lists/work.todo", TypeOpen},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseKeepsArgumentText(t *testing.T) {
	cmd, err := Parse("add  buy milk   and eggs ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Add.Text != "buy milk   and eggs" {
		t.Fatalf("unexpected add text: %q", cmd.Add.Text)
	}

	cmd, err = Parse(`open "/tmp/my list.todo"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Open.Path != "/tmp/my list.todo" {
		t.Fatalf("unexpected open path: %q", cmd.Open.Path)
	}

	cmd, err = Parse("move 2")
	if err != nil || cmd.Move.Position != 2 {
		t.Fatalf("unexpected move: %+v err=%v", cmd.Move, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]ErrorCode{
		"":              ErrCodeEmptyInput,
		"/":             ErrCodeEmptyInput,
		"/unknown do x": ErrCodeUnknownCommand,
		"add":           ErrCodeInvalidArgument,
		"due":           ErrCodeInvalidArgument,
		"move zero":     ErrCodeInvalidArgument,
		"move 0":        ErrCodeInvalidArgument,
		"open":          ErrCodeInvalidArgument,
		"complete now":  ErrCodeInvalidArgument,
	}
	for in, want := range cases {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != want {
			t.Fatalf("parse %q: expected %s, got %v", in, want, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteSelectionCommands(t *testing.T) {
	var got []string
	handlers := Handlers{
		Complete: func() (Result, error) { got = append(got, "complete"); return Result{}, nil },
		Skip:     func() (Result, error) { got = append(got, "skip"); return Result{}, nil },
		Delete:   func() (Result, error) { got = append(got, "delete"); return Result{}, nil },
	}
	for _, in := range []string{"complete", "skip", "delete"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Execute(cmd, handlers); err != nil {
			t.Fatalf("execute %q: %v", in, err)
		}
	}
	if len(got) != 3 || got[0] != "complete" || got[2] != "delete" {
		t.Fatalf("unexpected dispatch order: %v", got)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("due today")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
