package back

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/bf/compiler/tool"
)

// goBackend keeps the tape and the cursor at package level,
// so a program that never touches them still compiles.
// End of input stores 0.
type goBackend struct {
	tape    int
	command string
	flags   []string
}

func newGo(s Settings) (Backend, error) {
	b := goBackend{tape: s.Tape}
	b.command, b.flags = toolchain(s, "go")

	return b, nil
}

func (goBackend) Target() Target { return Go }
func (goBackend) Ext() string    { return "go" }

func (b goBackend) Prologue(o *Output) {
	o.Line("package main")
	o.Blank()
	o.Open("import (")
	o.Line(`"bufio"`)
	o.Line(`"os"`)
	o.Close(")")
	o.Blank()
	o.Open("var (")
	o.Linef("tape [%d]uint8", b.tape)
	o.Line("p    int")
	o.Blank()
	o.Line("in  = bufio.NewReader(os.Stdin)")
	o.Line("out = bufio.NewWriter(os.Stdout)")
	o.Close(")")
	o.Blank()
	o.Open("func getchar() uint8 {")
	o.Line("out.Flush()")
	o.Blank()
	o.Line("c, err := in.ReadByte()")
	o.Open("if err != nil {")
	o.Line("return 0")
	o.Close("}")
	o.Blank()
	o.Line("return c")
	o.Close("}")
	o.Blank()
	o.Open("func main() {")
	o.Line("defer out.Flush()")
	o.Blank()
}

func (goBackend) Epilogue(o *Output) {
	o.Close("}")
}

func (goBackend) MoveRight(o *Output) { o.Line("p++") }
func (goBackend) MoveLeft(o *Output)  { o.Line("p--") }
func (goBackend) Inc(o *Output)       { o.Line("tape[p]++") }
func (goBackend) Dec(o *Output)       { o.Line("tape[p]--") }
func (goBackend) Out(o *Output)       { o.Line("out.WriteByte(tape[p])") }
func (goBackend) In(o *Output)        { o.Line("tape[p] = getchar()") }
func (goBackend) LoopOpen(o *Output)  { o.Open("for tape[p] != 0 {") }
func (goBackend) LoopClose(o *Output) { o.Close("}") }

func (b goBackend) Compile(ctx context.Context, v *tool.Invoker, src string) (exe string, res *tool.Result, err error) {
	exe = ExePath(src)

	args := append([]string{"build"}, b.flags...)
	args = append(args, "-o", exe, src)

	res, err = v.NoInput().Run(ctx, b.command, args...)
	if err != nil {
		return exe, nil, errors.Wrap(err, "go toolchain")
	}

	return exe, res, nil
}

func (goBackend) Run(ctx context.Context, v *tool.Invoker, exe string) (*tool.Result, error) {
	return v.Run(ctx, tool.Executable(exe))
}
