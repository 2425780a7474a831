package render

// Rust renders Rust syntax.
type Rust struct{}

func (Rust) Header(pkg string) string {
	return "//! module " + PackageName(pkg)
}

func (Rust) Imports(names []string) string {
	return lines(names, func(name string) string {
		return "use " + name + ";"
	})
}

func (Rust) Comment(text string) string {
	return blockComment(text)
}
