package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMultipleTestRegions is returned when a file holds more than one test
	// region; only a single trailing region is supported.
	ErrMultipleTestRegions = errors.New("multiple test regions are not supported")

	// ErrUnsupportedLanguage is returned for languages outside the registry.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrValidation marks a request the model provider rejected outright.
	// It is never retried.
	ErrValidation = errors.New("request rejected by provider")
)

// ParseError reports a file whose syntax could not be decomposed.
type ParseError struct {
	Path     string
	Language Language
	Err      error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse %s source: %v", e.Language, e.Err)
	}
	return fmt.Sprintf("parse %s source %s: %v", e.Language, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError reports a translation call that failed permanently.
type TransportError struct {
	Symbol   string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("translate %s: failed after %d attempt(s): %v", e.Symbol, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MatchFailure records a reply that could not be mapped back to its symbol.
type MatchFailure struct {
	Unit       TranslationUnit
	Candidates int
}

func (f MatchFailure) String() string {
	return fmt.Sprintf("%s: no matching code in %d candidate block(s)", f.Unit.SymbolName, f.Candidates)
}

// GroupingGap records methods whose owning type is not declared in the file.
type GroupingGap struct {
	Owner   string
	Members []string
}

func (g GroupingGap) String() string {
	return fmt.Sprintf("type %s not found for %s", g.Owner, strings.Join(g.Members, ", "))
}
