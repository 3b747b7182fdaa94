package helpers

import "strings"

// Engine paths are Windows paths regardless of the host the tests run
// on, so path/filepath (which follows the host separator) is avoided
// here.

// ToBackslash converts forward slashes to backslashes
func ToBackslash(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

// CleanPath converts to backslashes and collapses repeated separators,
// preserving a leading UNC prefix.
func CleanPath(p string) string {
	p = ToBackslash(p)
	unc := strings.HasPrefix(p, `\\`)
	for strings.Contains(p, `\\`) {
		p = strings.ReplaceAll(p, `\\`, `\`)
	}
	if unc {
		p = `\` + p
	}
	return strings.TrimRight(p, `\`)
}

// JoinPath joins path elements with backslashes
func JoinPath(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e == "" {
			continue
		}
		parts = append(parts, strings.Trim(ToBackslash(e), `\`))
	}
	joined := strings.Join(parts, `\`)
	if len(elem) > 0 && strings.HasPrefix(ToBackslash(elem[0]), `\\`) {
		return `\\` + joined
	}
	if len(elem) > 0 && strings.HasPrefix(ToBackslash(elem[0]), `\`) {
		return `\` + joined
	}
	return joined
}

// BaseName returns the last element of a Windows path
func BaseName(p string) string {
	p = strings.TrimRight(ToBackslash(p), `\`)
	if idx := strings.LastIndexByte(p, '\\'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// DirName returns everything before the last element
func DirName(p string) string {
	p = strings.TrimRight(ToBackslash(p), `\`)
	if idx := strings.LastIndexByte(p, '\\'); idx >= 0 {
		return strings.TrimRight(p[:idx], `\`)
	}
	return ""
}

// PathExt returns the extension of the last path element, with the dot
func PathExt(p string) string {
	base := BaseName(p)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		return base[idx:]
	}
	return ""
}

// NormalizeKey produces the case-folded dedup key for a path
func NormalizeKey(p string) string {
	return strings.ToLower(CleanPath(p))
}
