package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/bf/compiler"
	"github.com/slowlang/bf/compiler/back"
	"github.com/slowlang/bf/compiler/config"
	"github.com/slowlang/bf/compiler/tool"
)

type (
	// options are the settings that don't describe the job itself.
	options struct {
		Config string
		Strict bool
	}
)

// Options handled by cli. Everything else is split off by splitArgs first.
var (
	boolOpts  = []string{"strict", "keep-going"}
	valueOpts = []string{"config", "log", "v"}
)

func main() {
	job, rest := splitArgs(os.Args)

	app := &cli.Command{
		Name:        "bf",
		Description: "bf translates tape-machine programs into C, Go or Rust, builds and runs them",
		Action: func(c *cli.Command) error {
			return buildAct(c, job)
		},
		Args: cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("strict", false, "exit with an error if any compile or run failed"),
			cli.NewFlag("keep-going", false, "report unreadable sources and unwritable artifacts and go on"),
			cli.NewFlag("config", "", "config file (default: bf.yaml looked up from the current dir)"),
			cli.NewFlag("log", "", "debug log destination: stderr or a file name"),
			cli.NewFlag("v", "", "debug log verbosity topics"),
		},
	}

	cli.RunAndExit(app, rest, os.Environ())
}

func buildAct(c *cli.Command, job compiler.Job) (err error) {
	err = setupLog(c.String("log"), c.String("v"))
	if err != nil {
		return errors.Wrap(err, "setup log")
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	job.KeepGoing = job.KeepGoing || c.Bool("keep-going")

	opts := options{
		Config: c.String("config"),
		Strict: c.Bool("strict"),
	}

	return build(ctx, job, opts, tool.New(), compiler.NewStatus(os.Stdout), os.Stderr)
}

// splitArgs walks the command line in order. Target tokens and -r/-run
// go to the job, known options with their values go to rest for cli,
// and every other token is a source file, even if it starts with a dash.
// A target named twice is built twice.
func splitArgs(args []string) (job compiler.Job, rest []string) {
	if len(args) == 0 {
		return job, nil
	}

	rest = append(rest, args[0])

	for i := 1; i < len(args); i++ {
		a := args[i]

		if !strings.HasPrefix(a, "-") || a == "-" {
			job.Files = append(job.Files, a)
			continue
		}

		name := strings.TrimLeft(a, "-")
		key, _, hasValue := strings.Cut(name, "=")

		switch {
		case name == "r" || name == "run":
			job.Run = true
			continue
		case contains(boolOpts, key) || key == "h" || key == "help":
			rest = append(rest, a)
			continue
		case contains(valueOpts, key):
			rest = append(rest, a)

			if !hasValue && i+1 < len(args) {
				i++
				rest = append(rest, args[i])
			}

			continue
		}

		if t, ok := back.ParseTarget(name); ok {
			job.Targets = append(job.Targets, t)
			continue
		}

		job.Files = append(job.Files, a)
	}

	return job, rest
}

// build is the whole command once the arguments are sorted out.
// Usage goes to stderr whenever the job can't be started.
func build(ctx context.Context, job compiler.Job, opts options, v *tool.Invoker, st *compiler.Status, stderr io.Writer) (err error) {
	if len(job.Files) == 0 || len(job.Targets) == 0 {
		usage(stderr)

		if len(job.Files) == 0 {
			return compiler.ErrNoSources
		}

		return compiler.ErrNoTargets
	}

	cfg, err := config.LoadOrDefault(opts.Config, ".")
	if err != nil {
		usage(stderr)
		return errors.Wrap(err, "config")
	}

	tlog.Printw("config", "path", cfg.Path, "tape", cfg.Tape, "strict", cfg.Strict, "keep_going", cfg.KeepGoing)

	comp := compiler.New(cfg, v, st)

	rep, err := comp.Build(ctx, job)
	if kind, ok := compiler.KindOf(err); ok && kind == compiler.KindConfig {
		usage(stderr)
	}
	if err != nil {
		return err
	}

	tlog.Printw("done", "translated", rep.Translated, "compile_failed", rep.CompileFailed, "run_failed", rep.RunFailed, "skipped", rep.Skipped)

	if (cfg.Strict || opts.Strict) && rep.Failed() {
		return errors.New("%d compile and %d run failures", rep.CompileFailed, rep.RunFailed)
	}

	return nil
}

func contains(l []string, s string) bool {
	for _, x := range l {
		if x == s {
			return true
		}
	}

	return false
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: bf <source...> [options...]\n")
	fmt.Fprintf(w, "Sources and options may be mixed in any order.\n")
	fmt.Fprintf(w, "Supported options:\n")
	fmt.Fprintf(w, "  -r, -run           run the program after compilation\n")

	for _, t := range back.Targets() {
		var names []string
		for _, n := range append([]string{t.Name()}, t.Aliases()...) {
			names = append(names, "-"+n)
		}

		note := ""
		if _, err := back.New(t, back.Settings{}); err != nil {
			note = " (" + err.Error() + ")"
		}

		fmt.Fprintf(w, "  %-18s %v%s\n", strings.Join(names, ", "), t, note)
	}

	fmt.Fprintf(w, "  -strict            exit with an error if any compile or run failed\n")
	fmt.Fprintf(w, "  -keep-going        skip unreadable sources instead of stopping\n")
	fmt.Fprintf(w, "  -config <file>     config file, bf.yaml is looked up by default\n")
	fmt.Fprintf(w, "  -log <dst>, -v <topics>  debug log\n")
}

func setupLog(dst, v string) error {
	var w io.Writer

	switch dst {
	case "":
		w = io.Discard
	case "stderr", "-":
		w = tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags)
	default:
		f, err := os.Create(dst)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}

		w = tlog.NewConsoleWriter(f, tlog.LstdFlags)
	}

	tlog.DefaultLogger = tlog.New(w)

	if v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}
