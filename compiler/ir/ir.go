package ir

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	Op byte

	// Stats is what a single scan learns about a program.
	// It is informational only: nothing is rejected based on it.
	Stats struct {
		Ops      [NumOps]int
		Skipped  int
		MaxDepth int
		Balance  int // opens minus closes

		// Stray counts closes with no open loop before them.
		Stray int
	}
)

const (
	MoveRight Op = iota
	MoveLeft
	Inc
	Dec
	Out
	In
	LoopOpen
	LoopClose

	NumOps
)

var symbols = [NumOps]byte{
	MoveRight: '>',
	MoveLeft:  '<',
	Inc:       '+',
	Dec:       '-',
	Out:       '.',
	In:        ',',
	LoopOpen:  '[',
	LoopClose: ']',
}

var decode = func() (t [256]Op) {
	for i := range t {
		t[i] = NumOps
	}

	for op, c := range symbols {
		t[c] = Op(op)
	}

	return t
}()

// Decode reports which instruction c is.
// Any other byte is not an instruction and must be skipped.
func Decode(c byte) (Op, bool) {
	op := decode[c]

	return op, op != NumOps
}

func (op Op) Symbol() byte {
	if op >= NumOps {
		return '?'
	}

	return symbols[op]
}

func (op Op) String() string {
	return string(op.Symbol())
}

func (op Op) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%c", op.Symbol())
}

func (s *Stats) Add(op Op) {
	s.Ops[op]++

	switch op {
	case LoopOpen:
		s.Balance++
		s.MaxDepth = max(s.MaxDepth, s.Balance)
	case LoopClose:
		if s.Balance <= 0 {
			s.Stray++
		}

		s.Balance--
	}
}

func (s *Stats) Total() (n int) {
	for _, c := range s.Ops {
		n += c
	}

	return n
}

func (s Stats) Balanced() bool {
	return s.Balance == 0 && s.Stray == 0
}

func (s Stats) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 5)

	b = e.AppendKeyInt(b, "ops", s.Total())
	b = e.AppendKeyInt(b, "skipped", s.Skipped)
	b = e.AppendKeyInt(b, "depth", s.MaxDepth)
	b = e.AppendKeyInt(b, "balance", s.Balance)
	b = e.AppendKeyInt(b, "stray", s.Stray)

	return b
}
