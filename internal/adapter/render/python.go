package render

import "strings"

// Python renders Python syntax.
type Python struct{}

func (Python) Header(pkg string) string {
	return "# module " + PackageName(pkg)
}

// Imports renders dotted names as from-imports of their last segment;
// relative prefixes (".", "..") are kept.
func (Python) Imports(names []string) string {
	return lines(names, func(name string) string {
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			return "import " + name
		}
		prefix := name[:idx]
		if strings.Trim(prefix, ".") == "" {
			prefix = name[:idx+1]
		}
		return "from " + prefix + " import " + name[idx+1:]
	})
}

func (Python) Comment(text string) string {
	src := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, len(src))
	for i, line := range src {
		if strings.TrimSpace(line) == "" {
			out[i] = "#"
			continue
		}
		out[i] = "# " + line
	}
	return strings.Join(out, "\n")
}
