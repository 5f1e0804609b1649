package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/bf/compiler/back"
	"github.com/slowlang/bf/compiler/ir"
)

// Translate emits text through be into o in a single left to right pass.
//
// Bytes that are not instructions are skipped. Loops are not matched here:
// each bracket becomes the host language's own block, so whatever balancing
// there is to check is checked by the host compiler.
func Translate(ctx context.Context, text []byte, be back.Backend, o *back.Output) (st ir.Stats, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "translate", "target", be.Target(), "size", len(text))
	defer tr.Finish("err", &err)

	be.Prologue(o)

	for _, c := range text {
		op, ok := ir.Decode(c)
		if !ok {
			st.Skipped++
			continue
		}

		if tr.If("translate_ops") {
			tr.Printw("op", "op", op, "depth", o.Depth())
		}

		st.Add(op)

		back.Emit(be, o, op)
	}

	be.Epilogue(o)

	err = o.Flush()
	if err != nil {
		return st, errors.Wrap(err, "emit %v", be.Target())
	}

	tr.Printw("translated", "stats", st)

	if !st.Balanced() {
		tr.Printw("unbalanced loops left for the host compiler", "balance", st.Balance, "stray", st.Stray)
	}

	return st, nil
}
