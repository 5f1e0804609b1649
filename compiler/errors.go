package compiler

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	Kind int

	// Error is a failure that belongs to one class of the taxonomy.
	// Config, input and emit errors stop the run (input and emit only
	// without KeepGoing). Toolchain errors never do: they are counted in
	// the Report and the host's diagnostics are relayed as is.
	Error struct {
		Kind Kind
		Path string
		Err  error

		From loc.PC
	}
)

const (
	KindConfig Kind = iota
	KindInput
	KindEmit
	KindToolchain
)

func newError(k Kind, path string, err error) *Error {
	return &Error{
		Kind: k,
		Path: path,
		Err:  err,
		From: loc.Caller(1),
	}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%v: %v: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.Kind, true
}

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindInput:
		return "input"
	case KindEmit:
		return "emit"
	case KindToolchain:
		return "toolchain"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
