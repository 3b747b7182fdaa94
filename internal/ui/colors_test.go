package ui

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestInitColors(t *testing.T) {
	t.Run("with NO_COLOR", func(t *testing.T) {
		os.Setenv("NO_COLOR", "1")
		defer os.Unsetenv("NO_COLOR")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("with TERM=dumb", func(t *testing.T) {
		os.Setenv("TERM", "dumb")
		defer os.Unsetenv("TERM")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})
}

func TestColorizeChannel(t *testing.T) {
	DisableColors()

	tests := []struct {
		channel string
	}{
		{"stable"},
		{"release"},
		{"beta"},
		{"rc"},
		{"dev"},
		{"developer"},
		{"aurora"},
		{"canary"},
		{"nightly"},
		{"unmapped"},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			// With colors disabled the text passes through unchanged
			assert.Equal(t, tt.channel, ColorizeChannel(tt.channel))
		})
	}
}

func TestDisableColors(t *testing.T) {
	color.NoColor = false
	DisableColors()
	assert.True(t, color.NoColor)
}
