package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.Layout)
	require.Empty(t, cfg.Top)
	require.Empty(t, cfg.PortMaps)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
top: alu
layout: false
portmaps:
  $buf:
    A: in
    Y: out
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "alu", cfg.Top)
	require.False(t, cfg.Layout)
	require.Equal(t, map[string]string{"A": "in", "Y": "out"}, cfg.PortMaps["$buf"])
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "top: cpu\n"))
	require.NoError(t, err)
	require.Equal(t, "cpu", cfg.Top)
	require.True(t, cfg.Layout)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.True(t, cfg.Layout)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "topmodule: cpu\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
