package commands

import "fmt"

type Result struct {
	Message string
}

// Handlers binds each command to the document it acts on. Complete, Skip,
// Delete, Due and Move target the current selection.
type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Due      func(DueArgs) (Result, error)
	Complete func() (Result, error)
	Skip     func() (Result, error)
	Delete   func() (Result, error)
	Move     func(MoveArgs) (Result, error)
	Open     func(OpenArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDue:
		if handlers.Due == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Due(*cmd.Due)
	case TypeComplete:
		if handlers.Complete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Complete()
	case TypeSkip:
		if handlers.Skip == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Skip()
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete()
	case TypeMove:
		if handlers.Move == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Move(*cmd.Move)
	case TypeOpen:
		if handlers.Open == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Open(*cmd.Open)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
