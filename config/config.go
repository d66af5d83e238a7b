// Package config holds the toolchain and logging settings of the compiler.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tungsten/core"
)

// Config selects the external programs used to build native executables and
// how the compiler logs.
type Config struct {
	Assembler        string   `yaml:"assembler"`
	AssemblerFlags   []string `yaml:"assembler_flags"`
	Linker           string   `yaml:"linker"`
	LinkerFlags      []string `yaml:"linker_flags"`
	Output           string   `yaml:"output"`
	CompatDuplAsDump bool     `yaml:"compat_dupl_as_dump"`
	LogLevel         string   `yaml:"log_level"`
	LogFormat        string   `yaml:"log_format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Assembler:      "nasm",
		AssemblerFlags: []string{"-felf64"},
		Linker:         "ld",
		Output:         "output",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.Assembler == "" {
		return fmt.Errorf("assembler must not be empty")
	}
	if c.Linker == "" {
		return fmt.Errorf("linker must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ParseLevel understands the slog level names plus "trace".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return core.LevelTrace, nil
	case "", "info":
		return slog.LevelInfo, nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger builds the logger described by c, writing to w.
func NewLogger(c Config, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch c.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return slog.New(handler), nil
}
