package back

import (
	"io"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
)

// Output is the emission target of one translation.
//
// Each fragment goes on its own line indented by the current block depth.
// Depth never goes below zero, so an unbalanced program still emits,
// and it's the host compiler that rejects it.
//
// Write errors are sticky, like bufio.Writer: after the first one
// everything is dropped and Flush reports it.
type Output struct {
	w   io.Writer
	b   []byte
	d   int
	err error
}

const flushSize = 32 << 10

func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Line appends a fragment verbatim.
func (o *Output) Line(s string) {
	o.indent()
	o.b = append(o.b, s...)
	o.end()
}

// Linef appends a formatted fragment.
func (o *Output) Linef(format string, args ...any) {
	o.indent()
	o.b = hfmt.Appendf(o.b, format, args...)
	o.end()
}

// Open appends a fragment that starts a block.
func (o *Output) Open(s string) {
	o.Line(s)
	o.d++
}

// Close appends a fragment that ends a block.
func (o *Output) Close(s string) {
	if o.d > 0 {
		o.d--
	}

	o.Line(s)
}

// Blank appends an empty line.
func (o *Output) Blank() {
	o.b = append(o.b, '\n')
}

func (o *Output) Depth() int { return o.d }

func (o *Output) Err() error { return o.err }

// Flush writes everything buffered so far.
func (o *Output) Flush() error {
	if o.err != nil {
		o.b = o.b[:0]

		return o.err
	}

	if len(o.b) == 0 {
		return nil
	}

	_, err := o.w.Write(o.b)
	o.b = o.b[:0]

	if err != nil {
		o.err = errors.Wrap(err, "write")
	}

	return o.err
}

func (o *Output) indent() {
	for i := 0; i < o.d; i++ {
		o.b = append(o.b, '\t')
	}
}

func (o *Output) end() {
	o.b = append(o.b, '\n')

	if len(o.b) >= flushSize {
		_ = o.Flush()
	}
}
