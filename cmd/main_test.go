package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range RootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, name := range []string{"schema", "load", "report", "chart", "run"} {
		assert.Contains(t, names, name)
	}
}

func TestInvalidConfigStopsBeforeConnecting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("load:\n  mode: ftp\n"), 0o600))

	RootCmd.SetArgs([]string{"--config", path, "schema"})
	t.Cleanup(func() { RootCmd.SetArgs(nil) })

	err := RootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown load mode "ftp"`)
}

func TestConfigDefaultsToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("report:\n  limit: -1\n"), 0o600))
	t.Chdir(dir)

	cfgFile = ""
	RootCmd.SetArgs([]string{"report"})
	t.Cleanup(func() { RootCmd.SetArgs(nil) })

	err := RootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report limit must be positive, got -1")
}
