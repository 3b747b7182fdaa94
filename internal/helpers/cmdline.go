package helpers

import "strings"

// ExtractExecutable pulls the executable path out of a Windows command
// line as stored in registry launch values, e.g.
// `"C:\Program Files\Google\Chrome\Application\chrome.exe" --flag`.
// Returns "" when the line is empty.
func ExtractExecutable(cmdline string) string {
	s := strings.TrimSpace(cmdline)
	if s == "" {
		return ""
	}

	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1]
		}
		return strings.TrimPrefix(s, `"`)
	}

	// Unquoted: the path runs until the first argument separator, but a
	// bare path with spaces and no arguments is taken whole.
	if idx := strings.Index(s, " -"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	if idx := strings.Index(s, " /"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// HasExeExt reports whether path carries the Windows executable extension
func HasExeExt(path string) bool {
	return strings.EqualFold(PathExt(path), ".exe")
}

// HasAnyExt reports whether path carries any file extension
func HasAnyExt(path string) bool {
	return PathExt(path) != ""
}
