// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/msgboard", got)
}

func TestConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/testuser/.config/msgboard", got)
}

func TestDefaultConfigFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		got, err := DefaultConfigFile()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("existing file", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		dir := filepath.Join(base, appName)
		require.NoError(t, os.MkdirAll(dir, 0o700))
		want := filepath.Join(dir, configFileName)
		require.NoError(t, os.WriteFile(want, []byte("env: development\n"), 0o600))

		got, err := DefaultConfigFile()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("directory in place of file", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		require.NoError(t, os.MkdirAll(filepath.Join(base, appName, configFileName), 0o700))

		got, err := DefaultConfigFile()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
