package render

import "fmt"

// TypeScript renders TypeScript syntax.
type TypeScript struct{}

func (TypeScript) Header(pkg string) string {
	return "// module " + PackageName(pkg)
}

func (TypeScript) Imports(names []string) string {
	return lines(names, func(name string) string {
		return fmt.Sprintf("import * as %s from %q;", name, name)
	})
}

func (TypeScript) Comment(text string) string {
	return blockComment(text)
}
