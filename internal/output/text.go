package output

import "strings"

// Plural picks the fitting noun for a count.
func Plural(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Indent prefixes every line of a multiline text with the given number of
// spaces, leaving a trailing newline untouched.
func Indent(spaces int, multilineText string) string {
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(multilineText, "\n")
	var indented strings.Builder
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			break //trailing newline already written
		}
		indented.WriteString(indent)
		indented.WriteString(line)
		if i < len(lines)-1 {
			indented.WriteRune('\n')
		}
	}
	return indented.String()
}
