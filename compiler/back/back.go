// Package back holds the per-language emitters.
//
// Every Backend is an independent emission table for one Target.
// Backends are stateless: all mutable state lives in the Output they write to.
package back

import (
	"context"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/bf/compiler/ir"
	"github.com/slowlang/bf/compiler/tool"
)

type (
	Target int

	Backend interface {
		Target() Target

		// Ext is the generated source file extension, without the dot.
		Ext() string

		Prologue(o *Output)
		Epilogue(o *Output)

		MoveRight(o *Output)
		MoveLeft(o *Output)
		Inc(o *Output)
		Dec(o *Output)
		Out(o *Output)
		In(o *Output)
		LoopOpen(o *Output)
		LoopClose(o *Output)

		// Compile builds src with the host toolchain. The toolchain gets no standard input.
		// exe is where the executable is expected to be; it exists only if res succeeded.
		Compile(ctx context.Context, v *tool.Invoker, src string) (exe string, res *tool.Result, err error)

		// Run executes a compiled program.
		Run(ctx context.Context, v *tool.Invoker, exe string) (*tool.Result, error)
	}

	// Settings are fixed at construction and never change during a translation.
	Settings struct {
		// Tape is the number of cells. Zero means DefaultTape.
		Tape int

		// Command and Flags override the target's default toolchain.
		Command string
		Flags   []string
	}

	constructor func(s Settings) (Backend, error)
)

const (
	Interpret Target = iota
	C
	Java
	Python
	JavaScript
	Rust
	Go

	NumTargets
)

const DefaultTape = 30000

var (
	ErrUnsupported = errors.New("target not yet supported")
	ErrInterpret   = errors.New("interpreter mode is not supported")
	ErrUnknown     = errors.New("unknown target")
)

var backends = [...]constructor{
	Interpret:  refuse(ErrInterpret),
	C:          newC,
	Java:       refuse(ErrUnsupported),
	Python:     refuse(ErrUnsupported),
	JavaScript: refuse(ErrUnsupported),
	Rust:       newRust,
	Go:         newGo,
}

// An "invalid array index" compiler error here means a Target
// was added without an entry in backends.
func _() {
	var x [1]struct{}
	_ = x[len(backends)-int(NumTargets)]
}

var targets = [NumTargets]struct {
	name    string
	display string
	aliases []string
}{
	Interpret:  {"interpret", "Interpret", []string{"i"}},
	C:          {"c", "C", nil},
	Java:       {"java", "Java", []string{"j"}},
	Python:     {"python", "Python", []string{"py"}},
	JavaScript: {"js", "JavaScript", []string{"javascript"}},
	Rust:       {"rust", "Rust", []string{"rs"}},
	Go:         {"go", "Go", []string{"golang"}},
}

// New returns the Backend for t, or an error if t has none.
func New(t Target, s Settings) (Backend, error) {
	if t < 0 || t >= NumTargets || backends[t] == nil {
		return nil, errors.Wrap(ErrUnknown, "target %d", int(t))
	}

	if s.Tape == 0 {
		s.Tape = DefaultTape
	}

	if s.Tape < 0 {
		return nil, errors.New("bad tape size: %d", s.Tape)
	}

	return backends[t](s)
}

func refuse(reason error) constructor {
	return func(Settings) (Backend, error) {
		return nil, reason
	}
}

// ParseTarget accepts a target's name or any of its aliases, case-insensitively.
func ParseTarget(name string) (Target, bool) {
	name = strings.ToLower(name)

	for t, x := range targets {
		if x.name == name {
			return Target(t), true
		}

		for _, a := range x.aliases {
			if a == name {
				return Target(t), true
			}
		}
	}

	return 0, false
}

// Targets lists every Target in declaration order.
func Targets() []Target {
	l := make([]Target, NumTargets)

	for t := range l {
		l[t] = Target(t)
	}

	return l
}

// Name is the canonical lower case name used in config files and flags.
func (t Target) Name() string {
	if t < 0 || t >= NumTargets {
		return "unknown"
	}

	return targets[t].name
}

func (t Target) Aliases() []string {
	if t < 0 || t >= NumTargets {
		return nil
	}

	return targets[t].aliases
}

func (t Target) String() string {
	if t < 0 || t >= NumTargets {
		return "Target(" + strconv.Itoa(int(t)) + ")"
	}

	return targets[t].display
}

func (t Target) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%v", t)
}

// ExePath is where the executable built from src goes.
// It differs between targets because src does.
func ExePath(src string) string {
	return src + ".exe"
}

// Emit dispatches a single instruction.
func Emit(be Backend, o *Output, op ir.Op) {
	switch op {
	case ir.MoveRight:
		be.MoveRight(o)
	case ir.MoveLeft:
		be.MoveLeft(o)
	case ir.Inc:
		be.Inc(o)
	case ir.Dec:
		be.Dec(o)
	case ir.Out:
		be.Out(o)
	case ir.In:
		be.In(o)
	case ir.LoopOpen:
		be.LoopOpen(o)
	case ir.LoopClose:
		be.LoopClose(o)
	default:
		panic(op)
	}
}

func toolchain(s Settings, command string, flags ...string) (string, []string) {
	if s.Command != "" {
		command = s.Command
	}

	if s.Flags != nil {
		flags = s.Flags
	}

	return command, flags
}
