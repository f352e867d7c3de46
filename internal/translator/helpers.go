package translator

import (
	"regexp"
	"strings"
	"unicode"
)

// indentUnit is the indentation MkDocs Material expects for admonition and tab bodies.
const indentUnit = "    "

// replaceSubmatches replaces every non-overlapping match of re, left to right,
// with the result of fn applied to the match's groups (group 0 is the whole match).
// Groups that did not participate are passed as "".
func replaceSubmatches(re *regexp.Regexp, src string, fn func(groups []string) string) (string, int) {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, 0
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = src[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(src[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(src[last:])
	return b.String(), len(matches)
}

// indentBlock prefixes the first line and every line following a line break with indentUnit.
func indentBlock(s string) string {
	if s == "" {
		return ""
	}
	return indentUnit + strings.ReplaceAll(s, "\n", "\n"+indentUnit)
}

// trimRightSpace drops trailing whitespace, including line breaks.
func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// trimBlankLines drops leading whitespace-only lines and all trailing whitespace,
// keeping the indentation of the first non-blank line.
func trimBlankLines(s string) string {
	s = trimRightSpace(s)
	lead := len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
	if i := strings.LastIndexByte(s[:lead], '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// linePrefix returns the text between the last line break in s and its end.
func linePrefix(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// isBlank reports whether s contains only spaces and tabs.
func isBlank(s string) bool {
	return strings.Trim(s, " \t") == ""
}

// lineEnding returns the line break used by the first line of s, "\n" when s
// has none.
func lineEnding(s string) string {
	if i := strings.IndexByte(s, '\n'); i > 0 && s[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
