package port

import "codeport/internal/domain"

// DeclParser splits source text into declarations.
type DeclParser interface {
	// Parse returns the file's declarations in source order, or a
	// *domain.ParseError when the text cannot be decomposed.
	Parse(source string) (domain.ParseResult, error)

	Language() domain.Language
}

// Splitter separates production code from an embedded test region.
type Splitter interface {
	Split(source string) (production, tests string, err error)
}

// Renderer produces destination-language boilerplate for assembled files.
type Renderer interface {
	// Header returns the package or module line.
	Header(packageName string) string

	// Imports renders an import block for the given sorted names.
	Imports(names []string) string

	// Comment wraps text so it is inert in the destination language.
	Comment(text string) string
}
