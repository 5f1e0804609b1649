package back

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/bf/compiler/tool"
)

// cBackend cells are unsigned char. End of input stores getchar's EOF
// truncated to a byte, that is 255.
type cBackend struct {
	tape    int
	command string
	flags   []string
}

func newC(s Settings) (Backend, error) {
	b := cBackend{tape: s.Tape}
	b.command, b.flags = toolchain(s, "cc", "-O3")

	return b, nil
}

func (cBackend) Target() Target { return C }
func (cBackend) Ext() string    { return "c" }

func (b cBackend) Prologue(o *Output) {
	o.Line("#include <stdio.h>")
	o.Blank()
	o.Linef("static unsigned char tape[%d];", b.tape)
	o.Blank()
	o.Open("int main(void) {")
	o.Line("unsigned char *p = tape;")
	o.Blank()
}

func (cBackend) Epilogue(o *Output) {
	o.Blank()
	o.Line("return 0;")
	o.Close("}")
}

func (cBackend) MoveRight(o *Output) { o.Line("++p;") }
func (cBackend) MoveLeft(o *Output)  { o.Line("--p;") }
func (cBackend) Inc(o *Output)       { o.Line("++*p;") }
func (cBackend) Dec(o *Output)       { o.Line("--*p;") }
func (cBackend) Out(o *Output)       { o.Line("putchar(*p);") }
func (cBackend) In(o *Output)        { o.Line("*p = (unsigned char)getchar();") }
func (cBackend) LoopOpen(o *Output)  { o.Open("while (*p) {") }
func (cBackend) LoopClose(o *Output) { o.Close("}") }

func (b cBackend) Compile(ctx context.Context, v *tool.Invoker, src string) (exe string, res *tool.Result, err error) {
	exe = ExePath(src)

	args := append([]string{src}, b.flags...)
	args = append(args, "-o", exe)

	res, err = v.NoInput().Run(ctx, b.command, args...)
	if err != nil {
		return exe, nil, errors.Wrap(err, "c compiler")
	}

	return exe, res, nil
}

func (cBackend) Run(ctx context.Context, v *tool.Invoker, exe string) (*tool.Result, error) {
	return v.Run(ctx, tool.Executable(exe))
}
