package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/bf/compiler/back"
	"github.com/slowlang/bf/compiler/config"
	"github.com/slowlang/bf/compiler/front"
	"github.com/slowlang/bf/compiler/tool"
)

type (
	Compiler struct {
		Config *config.Config
		Tool   *tool.Invoker
		Status *Status
	}

	// Job is everything the command line asked for.
	// Every file is translated once per target, targets outermost.
	Job struct {
		Targets []back.Target
		Files   []string

		// Run executes each program after it compiled successfully.
		Run bool

		// KeepGoing overrides Config.KeepGoing when set.
		KeepGoing bool
	}

	Report struct {
		Translated    int
		CompileFailed int
		RunFailed     int

		// Skipped counts files given up on because of KeepGoing.
		Skipped int
	}
)

var (
	ErrNoSources = errors.New("no source files")
	ErrNoTargets = errors.New("no targets selected")
)

func New(cfg *config.Config, v *tool.Invoker, st *Status) *Compiler {
	if cfg == nil {
		cfg = config.Default()
	}

	if v == nil {
		v = tool.New()
	}

	return &Compiler{
		Config: cfg,
		Tool:   v,
		Status: st,
	}
}

// Build runs the whole job. All the targets are resolved before any file
// is read, so a target without a backend fails the run with nothing done.
//
// The Report is returned even with an error and tells how far it got.
func (c *Compiler) Build(ctx context.Context, job Job) (rep *Report, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "build", "targets", job.Targets, "files", job.Files, "run", job.Run)
	defer tr.Finish("err", &err)

	rep = &Report{}

	if len(job.Files) == 0 {
		return rep, newError(KindConfig, "", ErrNoSources)
	}

	if len(job.Targets) == 0 {
		return rep, newError(KindConfig, "", ErrNoTargets)
	}

	bes := make([]back.Backend, len(job.Targets))

	for i, t := range job.Targets {
		bes[i], err = back.New(t, c.Config.Settings(t))
		if err != nil {
			return rep, newError(KindConfig, "", errors.Wrap(err, "%v", t))
		}
	}

	keepGoing := job.KeepGoing || c.Config.KeepGoing

	for _, be := range bes {
		c.Status.Info(0, "Target set to %v", be.Target())

		for _, file := range job.Files {
			err = c.buildFile(ctx, be, file, job.Run, rep)
			if err == nil {
				continue
			}

			var e *Error
			if errors.As(err, &e) {
				tr.Printw("file failed", "kind", e.Kind, "path", e.Path, "err", e.Err, "from", e.From)
			}

			if keepGoing && e != nil && (e.Kind == KindInput || e.Kind == KindEmit) {
				c.Status.Warn(1, "Skipping %q: %v", file, err)
				rep.Skipped++

				continue
			}

			return rep, err
		}
	}

	return rep, nil
}

func (c *Compiler) buildFile(ctx context.Context, be back.Backend, file string, run bool, rep *Report) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "build file", "target", be.Target(), "file", file)
	defer tr.Finish("err", &err)

	c.Status.Info(1, "Parsing %q", file)

	src, err := TranslateFile(ctx, be, file)
	if err != nil {
		return err
	}

	rep.Translated++

	c.Status.Info(1, "Compiling %q", src)

	exe, res, err := be.Compile(ctx, c.Tool, src)
	if err != nil {
		return newError(KindToolchain, src, err)
	}

	if res.Failed() {
		c.Status.Warn(1, "Compiling %q failed: exit status %d", src, res.ExitCode)
		rep.CompileFailed++

		return nil
	}

	if !run {
		return nil
	}

	c.Status.Info(1, "Running %q", exe)

	res, err = be.Run(ctx, c.Tool, exe)
	if err != nil {
		tr.Printw("program did not start", "exe", exe, "err", err)
		c.Status.Warn(1, "Running %q failed: %v", exe, err)
		rep.RunFailed++

		return nil
	}

	if res.Failed() {
		c.Status.Warn(1, "Running %q failed: exit status %d", exe, res.ExitCode)
		rep.RunFailed++
	}

	return nil
}

// TranslateFile writes the translation of file next to it
// and returns the artifact path.
func TranslateFile(ctx context.Context, be back.Backend, file string) (src string, err error) {
	text, err := os.ReadFile(file)
	if err != nil {
		return "", newError(KindInput, file, errors.Wrap(err, "read"))
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", file)

	src = ArtifactPath(file, be.Ext())

	if filepath.Clean(src) == filepath.Clean(file) {
		return "", newError(KindEmit, src, errors.New("artifact would overwrite its source"))
	}

	f, err := os.Create(src)
	if err != nil {
		return "", newError(KindEmit, src, errors.Wrap(err, "create"))
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = newError(KindEmit, src, errors.Wrap(e, "close"))
		}
	}()

	_, err = front.Translate(ctx, text, be, back.NewOutput(f))
	if err != nil {
		return "", newError(KindEmit, src, err)
	}

	return src, nil
}

// ArtifactPath replaces the extension of file with ext.
// Artifacts live in the same directory as their source and share its base name.
// A dot file like ".bf" has no extension, its whole name is the base.
func ArtifactPath(file, ext string) string {
	old := filepath.Ext(file)
	if old == filepath.Base(file) {
		old = ""
	}

	base := strings.TrimSuffix(file, old)

	return base + "." + ext
}

// Failed reports whether any compile or run failed.
func (r *Report) Failed() bool {
	return r.CompileFailed+r.RunFailed > 0
}
