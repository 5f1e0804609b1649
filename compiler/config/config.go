// Package config reads the optional bf.yaml project file.
//
// The file tunes how programs are emitted and built; it never selects
// targets or sources, those always come from the command line.
//
//	tape: 30000
//	strict: false
//	keep_going: false
//	toolchains:
//	  c:
//	    command: clang
//	    flags: [-O2, -Wall]
//	  go:
//	    flags: [-trimpath]
package config

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/slowlang/bf/compiler/back"
)

type (
	Config struct {
		// Tape is the number of cells in generated programs.
		Tape int `yaml:"tape,omitempty"`

		// Strict makes any failed compile or run turn into a failed exit status.
		Strict bool `yaml:"strict,omitempty"`

		// KeepGoing reports unreadable sources and unwritable artifacts
		// and moves on instead of stopping the whole run.
		KeepGoing bool `yaml:"keep_going,omitempty"`

		// Toolchains is keyed by target name or alias.
		Toolchains map[string]Toolchain `yaml:"toolchains,omitempty"`

		// Path is where the config was read from. Empty for defaults.
		Path string `yaml:"-"`
	}

	Toolchain struct {
		Command string   `yaml:"command,omitempty"`
		Flags   []string `yaml:"flags,omitempty"`
	}
)

// Names searched for by Find, in order.
var Names = []string{"bf.yaml", "bf.yml", ".bf.yaml"}

// Default is used when no file is found.
func Default() *Config {
	c := &Config{}
	c.setDefaults()

	return c
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	return Parse(data, path)
}

// Parse parses config content. path is used in error messages only.
func Parse(data []byte, path string) (*Config, error) {
	var c Config

	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", path)
	}

	err = c.validate(path)
	if err != nil {
		return nil, err
	}

	c.setDefaults()
	c.Path = path

	return &c, nil
}

// Find looks for a config file in dir and then in each of its parents.
// It returns an empty path and no error if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve dir")
	}

	for {
		for _, n := range Names {
			p := filepath.Join(dir, n)

			inf, err := os.Stat(p)
			if err == nil && !inf.IsDir() {
				return p, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// LoadOrDefault loads path if set, otherwise the first file Find sees from dir,
// otherwise the defaults.
func LoadOrDefault(path, dir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	path, err := Find(dir)
	if err != nil {
		return nil, errors.Wrap(err, "find config")
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// Settings returns the immutable backend settings for t.
func (c *Config) Settings(t back.Target) back.Settings {
	s := back.Settings{Tape: c.Tape}

	if tc, ok := c.toolchain(t); ok {
		s.Command = tc.Command
		s.Flags = tc.Flags
	}

	return s
}

func (c *Config) toolchain(t back.Target) (Toolchain, bool) {
	if tc, ok := c.Toolchains[t.Name()]; ok {
		return tc, true
	}

	for _, a := range t.Aliases() {
		if tc, ok := c.Toolchains[a]; ok {
			return tc, true
		}
	}

	return Toolchain{}, false
}

func (c *Config) validate(path string) error {
	if c.Tape < 0 {
		return errors.New("%s: tape: must not be negative, got %d", path, c.Tape)
	}

	names := make([]string, 0, len(c.Toolchains))
	for n := range c.Toolchains {
		names = append(names, n)
	}

	sort.Strings(names)

	seen := map[back.Target]string{}

	for _, n := range names {
		t, ok := back.ParseTarget(n)
		if !ok {
			return errors.New("%s: toolchains: unknown target %q", path, n)
		}

		if prev, ok := seen[t]; ok {
			return errors.New("%s: toolchains: %q and %q are the same target", path, prev, n)
		}

		seen[t] = n

		tc := c.Toolchains[n]

		if tc.Command == "" && tc.Flags == nil {
			return errors.New("%s: toolchains.%s: command or flags is required", path, n)
		}
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Tape == 0 {
		c.Tape = back.DefaultTape
	}
}
