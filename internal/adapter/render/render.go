// Package render writes file headers, import blocks and inert comments in
// the syntax of each destination language.
package render

import (
	"strings"
	"unicode"
)

// PackageName turns a directory name into an identifier usable as a
// package or module name.
func PackageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(dir)) {
		switch {
		case r == '-' || r == '.' || r == ' ':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "main"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}

func lines(names []string, format func(string) string) string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, format(name))
		}
	}
	return strings.Join(out, "\n")
}

// blockComment wraps text in /* */, breaking any terminator inside it.
func blockComment(text string) string {
	return "/*\n" + strings.ReplaceAll(strings.TrimRight(text, "\n"), "*/", "* /") + "\n*/"
}
