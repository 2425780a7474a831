package domain

import (
	"fmt"
	"strings"
)

// Language is a supported programming language.
type Language string

const (
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
)

// Languages lists every supported language.
var Languages = []Language{LanguageGo, LanguageRust, LanguagePython, LanguageTypeScript}

// ParseLanguage resolves a language name or common alias.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "go", "golang":
		return LanguageGo, nil
	case "rust", "rs":
		return LanguageRust, nil
	case "python", "py":
		return LanguagePython, nil
	case "typescript", "ts":
		return LanguageTypeScript, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}

// Title returns the display name used in prompts.
func (l Language) Title() string {
	switch l {
	case LanguageGo:
		return "Golang"
	case LanguageRust:
		return "Rust"
	case LanguagePython:
		return "Python"
	case LanguageTypeScript:
		return "Typescript"
	}
	return string(l)
}
