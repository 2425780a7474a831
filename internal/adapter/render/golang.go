package render

import "fmt"

// Go renders Go syntax.
type Go struct{}

func (Go) Header(pkg string) string {
	return "package " + PackageName(pkg)
}

// Imports renders a parenthesised import block of quoted paths.
func (Go) Imports(names []string) string {
	body := lines(names, func(name string) string {
		return fmt.Sprintf("\t%q", name)
	})
	if body == "" {
		return ""
	}
	return "import (\n" + body + "\n)"
}

func (Go) Comment(text string) string {
	return blockComment(text)
}
