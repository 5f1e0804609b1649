package back

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/bf/compiler/tool"
)

// rustBackend uses wrapping arithmetic everywhere, plain overflow panics
// in debug builds and is rejected at compile time when rustc can see it.
// End of input leaves the cell unchanged.
type rustBackend struct {
	tape    int
	command string
	flags   []string
}

func newRust(s Settings) (Backend, error) {
	b := rustBackend{tape: s.Tape}
	b.command, b.flags = toolchain(s, "rustc", "-O")

	return b, nil
}

func (rustBackend) Target() Target { return Rust }
func (rustBackend) Ext() string    { return "rs" }

func (b rustBackend) Prologue(o *Output) {
	o.Line("#![allow(unused)]")
	o.Blank()
	o.Line("use std::io::{Read, Write};")
	o.Blank()
	o.Open("fn main() {")
	o.Linef("let mut tape = [0u8; %d];", b.tape)
	o.Line("let mut p: usize = 0;")
	o.Line("let mut buf = [0u8; 1];")
	o.Line("let mut input = std::io::stdin();")
	o.Line("let mut output = std::io::stdout();")
	o.Blank()
}

func (rustBackend) Epilogue(o *Output) {
	o.Blank()
	o.Line("output.flush().unwrap();")
	o.Close("}")
}

func (rustBackend) MoveRight(o *Output) { o.Line("p = p.wrapping_add(1);") }
func (rustBackend) MoveLeft(o *Output)  { o.Line("p = p.wrapping_sub(1);") }
func (rustBackend) Inc(o *Output)       { o.Line("tape[p] = tape[p].wrapping_add(1);") }
func (rustBackend) Dec(o *Output)       { o.Line("tape[p] = tape[p].wrapping_sub(1);") }
func (rustBackend) Out(o *Output)       { o.Line("output.write_all(&[tape[p]]).unwrap();") }

func (rustBackend) In(o *Output) {
	o.Line("output.flush().unwrap();")
	o.Open("if input.read(&mut buf).unwrap_or(0) == 1 {")
	o.Line("tape[p] = buf[0];")
	o.Close("}")
}

func (rustBackend) LoopOpen(o *Output)  { o.Open("while tape[p] != 0 {") }
func (rustBackend) LoopClose(o *Output) { o.Close("}") }

func (b rustBackend) Compile(ctx context.Context, v *tool.Invoker, src string) (exe string, res *tool.Result, err error) {
	exe = ExePath(src)

	args := append([]string{}, b.flags...)
	args = append(args, "-o", exe, src)

	res, err = v.NoInput().Run(ctx, b.command, args...)
	if err != nil {
		return exe, nil, errors.Wrap(err, "rust compiler")
	}

	return exe, res, nil
}

func (rustBackend) Run(ctx context.Context, v *tool.Invoker, exe string) (*tool.Result, error) {
	return v.Run(ctx, tool.Executable(exe))
}
