// Package tool runs external toolchains and the programs they produce.
//
// A process that cannot be started is an error. A process that starts
// and exits non-zero is not: its exit code is reported in Result and its
// output is relayed like any other.
package tool

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Invoker runs one process at a time and blocks until it exits.
	// There is no timeout and no retry.
	Invoker struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// Dir is the working directory of started processes.
		// Empty means the current one.
		Dir string

		// Env is appended to the inherited environment.
		Env []string
	}

	// Result of a process that ran to completion.
	Result struct {
		Cmd      []string
		ExitCode int

		Stdout []byte
		Stderr []byte
	}
)

// New returns an Invoker wired to the process standard streams.
func New() *Invoker {
	return &Invoker{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// NoInput returns a copy of v that gives started processes no standard input.
// Toolchains are run this way so they can't consume what's meant for the program.
func (v *Invoker) NoInput() *Invoker {
	c := *v
	c.Stdin = nil

	return &c
}

// Run starts name with args, waits for it and relays what it wrote:
// the error stream first, then the output stream, both verbatim.
func (v *Invoker) Run(ctx context.Context, name string, args ...string) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "run process", "name", name, "args", args)
	defer tr.Finish("err", &err)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = v.Dir
	cmd.Stdin = v.Stdin

	if len(v.Env) != 0 {
		cmd.Env = append(os.Environ(), v.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) {
		return nil, errors.Wrap(err, "start %v", name)
	}

	res = &Result{
		Cmd:    append([]string{name}, args...),
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if exit != nil {
		res.ExitCode = exit.ExitCode()
	}

	tr.Printw("process exited", "code", res.ExitCode, "stdout", len(res.Stdout), "stderr", len(res.Stderr))

	err = v.relay(res)
	if err != nil {
		return res, errors.Wrap(err, "relay output")
	}

	return res, nil
}

func (v *Invoker) relay(res *Result) (err error) {
	if len(res.Stderr) != 0 && v.Stderr != nil {
		_, err = v.Stderr.Write(res.Stderr)
		if err != nil {
			return errors.Wrap(err, "stderr")
		}
	}

	if len(res.Stdout) != 0 && v.Stdout != nil {
		_, err = v.Stdout.Write(res.Stdout)
		if err != nil {
			return errors.Wrap(err, "stdout")
		}
	}

	return nil
}

// Failed reports whether the process exited non-zero.
// A nil Result (never started) counts as failed.
func (r *Result) Failed() bool {
	return r == nil || r.ExitCode != 0
}

func (r *Result) String() string {
	if r == nil {
		return "<not started>"
	}

	return strings.Join(r.Cmd, " ")
}

// Executable turns a path to a generated binary into something
// exec will start directly instead of looking it up in PATH.
func Executable(path string) string {
	if filepath.IsAbs(path) || strings.ContainsRune(path, filepath.Separator) {
		return path
	}

	return "." + string(filepath.Separator) + path
}
