package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates malformed input: bad tokens, unbalanced
	// parentheses, a missing operand or an empty expression.
	ErrSyntax = errors.New("compiler: syntax error")

	// ErrUnknownIdentifier indicates a multi-letter name that is neither a
	// function nor a constant.
	ErrUnknownIdentifier = errors.New("compiler: unknown identifier")

	// ErrFreeVariable indicates a free variable other than x.
	ErrFreeVariable = errors.New("compiler: unexpected free variable")
)

// Error describes why an expression could not be compiled. Pos is a byte
// offset into Input, or -1 when the failure has no single location.
type Error struct {
	Input string
	Pos   int
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

func (e *Error) Unwrap() error {
	return e.Err
}
