package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/bf/compiler/back"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
tape: 100
strict: true
keep_going: true
toolchains:
  c:
    command: clang
    flags: [-O2, -Wall]
  golang:
    flags: [-trimpath]
`), "bf.yaml")
	require.NoError(t, err)

	assert.Equal(t, 100, c.Tape)
	assert.True(t, c.Strict)
	assert.True(t, c.KeepGoing)
	assert.Equal(t, "bf.yaml", c.Path)

	assert.Equal(t, back.Settings{Tape: 100, Command: "clang", Flags: []string{"-O2", "-Wall"}}, c.Settings(back.C))
	assert.Equal(t, back.Settings{Tape: 100, Flags: []string{"-trimpath"}}, c.Settings(back.Go))
	assert.Equal(t, back.Settings{Tape: 100}, c.Settings(back.Rust))
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(""), "empty.yaml")
	require.NoError(t, err)

	assert.Equal(t, back.DefaultTape, c.Tape)
	assert.False(t, c.Strict)
	assert.False(t, c.KeepGoing)
	assert.Equal(t, back.Settings{Tape: back.DefaultTape}, c.Settings(back.C))

	c, err = Parse([]byte("tape: 0\n"), "zero.yaml")
	require.NoError(t, err)
	assert.Equal(t, back.DefaultTape, c.Tape, "zero means default")

	d := Default()
	assert.Equal(t, back.DefaultTape, d.Tape)
	assert.Empty(t, d.Path)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
		msg  string
	}{
		{"negative_tape", "tape: -1", "tape: must not be negative"},
		{"unknown_target", "toolchains:\n  cobol:\n    command: cobc", "cobol"},
		{"same_target", "toolchains:\n  go:\n    command: go\n  golang:\n    command: go1.22", "same target"},
		{"empty_toolchain", "toolchains:\n  rust: {}", "rust"},
		{"bad_yaml", "tape: [1, 2", "bad.yaml"},
		{"bad_type", "tape: many", "bad.yaml"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), "bad.yaml")
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.msg)
			}
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	p, err := Find(deep)
	require.NoError(t, err)

	// a file somewhere above TempDir would be found too, so only
	// check that nothing inside root was.
	if p != "" {
		assert.NotContains(t, p, root)
	}

	want := filepath.Join(root, "a", "bf.yml")
	require.NoError(t, os.WriteFile(want, []byte("tape: 7\n"), 0o644))

	p, err = Find(deep)
	require.NoError(t, err)
	assert.Equal(t, want, p)

	closer := filepath.Join(root, "a", "b", ".bf.yaml")
	require.NoError(t, os.WriteFile(closer, []byte("tape: 8\n"), 0o644))

	p, err = Find(deep)
	require.NoError(t, err)
	assert.Equal(t, closer, p)

	c, err := LoadOrDefault("", deep)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Tape)
	assert.Equal(t, closer, c.Path)
}

func TestFindOrder(t *testing.T) {
	dir := t.TempDir()

	for _, n := range Names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("tape: 1\n"), 0o644))
	}

	p, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Names[0]), p)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tape: 42\n"), 0o644))

	c, err := LoadOrDefault(path, "")
	require.NoError(t, err)
	assert.Equal(t, 42, c.Tape)
	assert.Equal(t, path, c.Path)

	_, err = LoadOrDefault(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)
}

func TestSettingsByAlias(t *testing.T) {
	c, err := Parse([]byte("toolchains:\n  rs:\n    command: rustc-nightly\n"), "bf.yaml")
	require.NoError(t, err)

	assert.Equal(t, "rustc-nightly", c.Settings(back.Rust).Command)
	assert.Empty(t, c.Settings(back.C).Command)
}
