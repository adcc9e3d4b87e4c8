package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ready> ", cfg.Prompt)
	assert.Equal(t, "reject", cfg.Redefinition)
	assert.True(t, cfg.Optimize)
	assert.Equal(t, 10000, cfg.MaxCallDepth)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
prompt = "kal> "
trace = true
max_errors = 5
redefinition = "replace"
optimize = false
`)
	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "kal> ", cfg.Prompt)
	assert.True(t, cfg.Trace)
	assert.Equal(t, 5, cfg.MaxErrors)
	assert.Equal(t, "replace", cfg.Redefinition)
	assert.False(t, cfg.Optimize)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.Color)
	assert.Equal(t, 10000, cfg.MaxCallDepth)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(missing, false)
	assert.Error(t, err)

	cfg, err = Load("", false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":  `colour = true`,
		"bad policy":   `redefinition = "sometimes"`,
		"negative":     `max_errors = -1`,
		"zero depth":   `max_call_depth = 0`,
		"syntax error": `prompt = `,
		"wrong type":   `trace = "yes"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), false)
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))
	assert.Contains(t, buf.String(), `redefinition = "reject"`)

	cfg, err := Load(writeConfig(t, buf.String()), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, ".hist"), ExpandHome("~/.hist"))
	assert.Equal(t, "/tmp/x", ExpandHome("/tmp/x"))
}
