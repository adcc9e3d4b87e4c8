// Package config holds the settings of the kaleido command, read from an
// optional TOML file and then overridden by flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the full set of settings.
type Config struct {
	Prompt       string `toml:"prompt"`
	HistoryFile  string `toml:"history_file"`
	Color        bool   `toml:"color"`
	Trace        bool   `toml:"trace"`
	MaxErrors    int    `toml:"max_errors"`
	MaxCallDepth int    `toml:"max_call_depth"`
	Redefinition string `toml:"redefinition"` // "reject" or "replace"
	EmitIR       bool   `toml:"emit_ir"`      // print each definition's LLVM IR
	Optimize     bool   `toml:"optimize"`     // run mem2reg and dead code removal
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Prompt:       "ready> ",
		HistoryFile:  "~/.kaleido_history",
		Color:        true,
		MaxErrors:    0,
		MaxCallDepth: 10000,
		Redefinition: "reject",
		Optimize:     true,
	}
}

// DefaultPath returns the per-user config file location,
// $XDG_CONFIG_HOME/kaleido/config.toml or the platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kaleido", "config.toml")
}

// Load reads path on top of the defaults. A missing file is not an error
// when optional is set. Unknown keys are rejected.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch strings.ToLower(c.Redefinition) {
	case "reject", "replace":
	default:
		return fmt.Errorf("redefinition = %q, want \"reject\" or \"replace\"", c.Redefinition)
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors = %d, must not be negative", c.MaxErrors)
	}
	if c.MaxCallDepth < 1 {
		return fmt.Errorf("max_call_depth = %d, must be positive", c.MaxCallDepth)
	}
	return nil
}

// ExpandHome replaces a leading "~/" in path with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Encode writes c as TOML, for "kaleido -print-config".
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
