package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color scheme for browserscout
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
	Bullet    = color.HiBlackString("•")

	// Release channel colors
	ChannelStable  = color.New(color.FgGreen)
	ChannelBeta    = color.New(color.FgYellow)
	ChannelDev     = color.New(color.FgMagenta)
	ChannelCanary  = color.New(color.FgHiYellow)
	ChannelNightly = color.New(color.FgBlue)
)

// InitColors initializes color settings based on environment
func InitColors() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(key, value string) {
	Bold.Fprintf(os.Stdout, "%s: ", key)
	fmt.Fprintln(os.Stdout, value)
}

// PrintSeparator prints a separator line
func PrintSeparator() {
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintHeader prints a section header
func PrintHeader(text string) {
	fmt.Fprintln(os.Stdout)
	Bold.Fprintln(os.Stdout, text)
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintSubheader prints a subsection header
func PrintSubheader(text string) {
	fmt.Fprintln(os.Stdout)
	Highlight.Fprintln(os.Stdout, text)
}

// ColorizeChannel returns a colored release-channel string
func ColorizeChannel(channel string) string {
	switch channel {
	case "stable", "release":
		return ChannelStable.Sprint(channel)
	case "beta", "rc":
		return ChannelBeta.Sprint(channel)
	case "dev", "developer", "aurora":
		return ChannelDev.Sprint(channel)
	case "canary":
		return ChannelCanary.Sprint(channel)
	case "nightly":
		return ChannelNightly.Sprint(channel)
	default:
		return channel
	}
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(os.Stdout, "  %s %s\n", Bullet, item)
	}
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}
