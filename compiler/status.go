package compiler

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nikandfor/hacked/hfmt"
)

// Status prints the operator facing progress lines.
// It is not the debug log, that one goes through tlog.
type Status struct {
	w     io.Writer
	color bool
}

const (
	colorInfo  = "\x1b[36m"
	colorWarn  = "\x1b[33m"
	colorReset = "\x1b[0m"
)

// NewStatus writes to f, colored if f is a terminal.
func NewStatus(f *os.File) *Status {
	fd := f.Fd()

	return &Status{
		w:     f,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// NewStatusWriter never colors. Nil w discards everything.
func NewStatusWriter(w io.Writer) *Status {
	if w == nil {
		w = io.Discard
	}

	return &Status{w: w}
}

func (s *Status) Info(indent int, format string, args ...any) {
	s.print(indent, "INFO", colorInfo, format, args...)
}

func (s *Status) Warn(indent int, format string, args ...any) {
	s.print(indent, "WARN", colorWarn, format, args...)
}

func (s *Status) print(indent int, tag, color, format string, args ...any) {
	if s == nil {
		return
	}

	var b []byte

	for i := 0; i < indent; i++ {
		b = append(b, "  "...)
	}

	if s.color {
		b = hfmt.Appendf(b, "%s[%s]%s ", color, tag, colorReset)
	} else {
		b = hfmt.Appendf(b, "[%s] ", tag)
	}

	b = hfmt.Appendf(b, format, args...)
	b = append(b, '\n')

	_, _ = s.w.Write(b)
}
