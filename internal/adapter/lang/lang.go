// Package lang is the registry of supported languages.
package lang

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeport/internal/adapter/parser"
	"codeport/internal/adapter/render"
	"codeport/internal/domain"
	"codeport/internal/port"
)

// Dialect bundles everything the converter needs to read or write one language.
type Dialect struct {
	Language   domain.Language
	Extensions []string
	FenceTags  []string
	Parser     port.DeclParser
	Splitter   port.Splitter
	Renderer   port.Renderer
}

// Extension returns the canonical file extension.
func (d Dialect) Extension() string {
	return d.Extensions[0]
}

// FenceTag returns the canonical markdown fence tag.
func (d Dialect) FenceTag() string {
	return d.FenceTags[0]
}

// Matches reports whether path carries one of the dialect's extensions.
func (d Dialect) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range d.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// For returns the dialect for lang.
func For(lang domain.Language) (Dialect, error) {
	switch lang {
	case domain.LanguageGo:
		return Dialect{
			Language:   lang,
			Extensions: []string{".go"},
			FenceTags:  []string{"go", "golang"},
			Parser:     parser.NewGoParser(),
			Splitter:   parser.NoopSplitter{},
			Renderer:   render.Go{},
		}, nil
	case domain.LanguageRust:
		return Dialect{
			Language:   lang,
			Extensions: []string{".rs"},
			FenceTags:  []string{"rust", "rs"},
			Parser:     parser.NewRustParser(),
			Splitter:   parser.RustSplitter{},
			Renderer:   render.Rust{},
		}, nil
	case domain.LanguagePython:
		return Dialect{
			Language:   lang,
			Extensions: []string{".py"},
			FenceTags:  []string{"python", "py"},
			Parser:     parser.NewPythonParser(),
			Splitter:   parser.NoopSplitter{},
			Renderer:   render.Python{},
		}, nil
	case domain.LanguageTypeScript:
		return Dialect{
			Language:   lang,
			Extensions: []string{".ts", ".tsx"},
			FenceTags:  []string{"typescript", "ts"},
			Parser:     parser.NewTypeScriptParser(),
			Splitter:   parser.NoopSplitter{},
			Renderer:   render.TypeScript{},
		}, nil
	}
	return Dialect{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
}
