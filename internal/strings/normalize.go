package strings

import "strings"

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// NormalizeLowerTrimSpace trims surrounding whitespace and lowercases the input.
func NormalizeLowerTrimSpace(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsBlank reports whether value is empty after trimming whitespace.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// NormalizeNewlines replaces CRLF and CR with LF.
func NormalizeNewlines(value string) string {
	if value == "" {
		return value
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}

// TrimTrailingNewlines removes trailing CR/LF characters.
func TrimTrailingNewlines(value string) string {
	return strings.TrimRight(value, "\r\n")
}

// NonBlankLines splits value on line breaks and drops lines that are blank.
// Kept lines are returned untrimmed.
func NonBlankLines(value string) []string {
	var lines []string
	for _, line := range strings.Split(NormalizeNewlines(value), "\n") {
		if IsBlank(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
