package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "BF_TOOL_TEST_HELPER"

// TestMain lets the test binary stand in for an external program:
// started with helperEnv set it prints and exits as told instead of testing.
func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(helper(mode))
	}

	os.Exit(m.Run())
}

func helper(mode string) int {
	switch mode {
	case "streams":
		fmt.Fprintf(os.Stdout, "to stdout\n")
		fmt.Fprintf(os.Stderr, "to stderr\n")

		code, _ := strconv.Atoi(os.Getenv("BF_TOOL_TEST_EXIT"))

		return code
	case "echo":
		_, _ = io.Copy(os.Stdout, os.Stdin)

		return 0
	case "args":
		for _, a := range os.Args[1:] {
			fmt.Fprintf(os.Stdout, "%s\n", a)
		}

		return 0
	default:
		return 100
	}
}

func self(t *testing.T) string {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	return exe
}

func TestRunRelaysStderrFirst(t *testing.T) {
	var both bytes.Buffer

	v := &Invoker{
		Stdout: &both,
		Stderr: &both,
		Env:    []string{helperEnv + "=streams"},
	}

	res, err := v.Run(context.Background(), self(t))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.Failed())
	assert.Equal(t, "to stdout\n", string(res.Stdout))
	assert.Equal(t, "to stderr\n", string(res.Stderr))
	assert.Equal(t, "to stderr\nto stdout\n", both.String())
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	var stdout, stderr bytes.Buffer

	v := &Invoker{
		Stdout: &stdout,
		Stderr: &stderr,
		Env:    []string{helperEnv + "=streams", "BF_TOOL_TEST_EXIT=3"},
	}

	res, err := v.Run(context.Background(), self(t))
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.Failed())
	assert.Equal(t, "to stdout\n", stdout.String())
	assert.Equal(t, "to stderr\n", stderr.String())
}

func TestRunStdin(t *testing.T) {
	var stdout bytes.Buffer

	v := &Invoker{
		Stdin:  bytes.NewReader([]byte("hello")),
		Stdout: &stdout,
		Env:    []string{helperEnv + "=echo"},
	}

	res, err := v.Run(context.Background(), self(t))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello", stdout.String())
}

func TestNoInputKeepsStdinForNextRun(t *testing.T) {
	var stdout bytes.Buffer

	v := &Invoker{
		Stdin:  strings.NewReader("x"),
		Stdout: &stdout,
		Env:    []string{helperEnv + "=echo"},
	}

	res, err := v.NoInput().Run(context.Background(), self(t))
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)

	res, err = v.Run(context.Background(), self(t))
	require.NoError(t, err)
	assert.Equal(t, "x", string(res.Stdout))
	assert.Equal(t, "x", stdout.String())

	assert.NotNil(t, v.Stdin)
}

func TestRunArgs(t *testing.T) {
	v := &Invoker{Env: []string{helperEnv + "=args"}}

	res, err := v.Run(context.Background(), self(t), "-o", "a b", "x.c")
	require.NoError(t, err)

	assert.Equal(t, "-o\na b\nx.c\n", string(res.Stdout))
	assert.Equal(t, []string{self(t), "-o", "a b", "x.c"}, res.Cmd)
}

func TestRunMissingTool(t *testing.T) {
	v := &Invoker{}

	res, err := v.Run(context.Background(), "bf-test-no-such-tool-anywhere")
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, res.Failed())
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	exe := self(t)

	v := &Invoker{
		Dir: dir,
		Env: []string{helperEnv + "=streams"},
	}

	res, err := v.Run(context.Background(), exe)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecutable(t *testing.T) {
	assert.Equal(t, "."+string(filepath.Separator)+"prog.c.exe", Executable("prog.c.exe"))
	assert.Equal(t, filepath.Join("dir", "prog.c.exe"), Executable(filepath.Join("dir", "prog.c.exe")))

	abs := filepath.Join(t.TempDir(), "prog.go.exe")
	assert.Equal(t, abs, Executable(abs))
}
