// Package mailtext cleans message body text and attachment filenames before
// they are displayed or written to disk.
package mailtext

import "strings"

// NormalizeBody rewrites literal `\r\n` and `\r` escape sequences (bodies
// captured with escaping already applied) into real line breaks, trims every
// line, and drops empty lines entirely. Paragraph spacing is not preserved;
// the result is a compact body for display. Never fails.
func NormalizeBody(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, `\r\n`, "\n")
	text = strings.ReplaceAll(text, `\r`, "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// illegalFilenameChars are the characters illegal in common filesystem paths.
const illegalFilenameChars = `\/*?:"<>|`

// SanitizeFilename removes characters illegal in filesystem paths. All other
// characters, including non-ASCII text, pass through unchanged. Sanitization
// alone does not make a name unique; callers add a disambiguating prefix
// before using the result as a path segment.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
}
