package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeDue      Type = "due"
	TypeComplete Type = "complete"
	TypeSkip     Type = "skip"
	TypeDelete   Type = "delete"
	TypeMove     Type = "move"
	TypeOpen     Type = "open"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeNoSelection     ErrorCode = "no_selection"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text string
}

// DueArgs carries the raw date expression; the handler resolves it against
// the current day.
type DueArgs struct {
	Raw string
}

// MoveArgs.Position is 1-based, as typed by the user.
type MoveArgs struct {
	Position int
}

type OpenArgs struct {
	Path string
}

type Command struct {
	Type Type
	Raw  string
	Add  *AddArgs
	Due  *DueArgs
	Move *MoveArgs
	Open *OpenArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeDue:
		return parseDue(input, rest)
	case TypeComplete, TypeSkip, TypeDelete:
		if rest != "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeMove:
		return parseMove(input, rest)
	case TypeOpen:
		return parseOpen(input, rest)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: rest}}, nil
}

func parseDue(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due requires today, tomorrow, none or YYYY-MM-DD"}
	}
	return Command{Type: TypeDue, Raw: raw, Due: &DueArgs{Raw: rest}}, nil
}

func parseMove(raw, rest string) (Command, error) {
	pos, err := strconv.Atoi(rest)
	if err != nil || pos < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "move requires a position starting at 1"}
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{Position: pos}}, nil
}

func parseOpen(raw, rest string) (Command, error) {
	path := strings.Trim(rest, `"'`)
	if path == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a file path"}
	}
	return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{Path: path}}, nil
}
