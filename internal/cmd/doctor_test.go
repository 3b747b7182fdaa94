package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorCmd(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	cmd := NewDoctorCmd(cfg, &logger)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	// Missing env vars and an unavailable registry are warnings, not
	// failures; with writable directories the check passes.
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestCheckDirectory(t *testing.T) {
	t.Run("existing writable directory", func(t *testing.T) {
		assert.True(t, checkDirectory(t.TempDir()))
	})

	t.Run("creates missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data")
		assert.True(t, checkDirectory(path))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("file is not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		assert.False(t, checkDirectory(file))
	})
}
