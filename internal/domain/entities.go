package domain

import (
	"strings"
)

// Kind classifies a declaration item.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindConst     Kind = "const"
	KindVar       Kind = "var"
	KindTrait     Kind = "trait"
	KindImpl      Kind = "impl"
	KindModule    Kind = "module"
	KindMacro     Kind = "macro"
	KindImports   Kind = "imports"
	KindStatement Kind = "statement" // top-level code outside any declaration
)

// ImportsName is the name of the synthetic item aggregating a file's imports.
const ImportsName = "imports"

// IsCallable reports whether items of this kind are functions or methods.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindMethod
}

// IsType reports whether items of this kind can own methods.
func (k Kind) IsType() bool {
	return k == KindStruct || k == KindEnum
}

// Item is a single named declaration taken from a source file.
type Item struct {
	Name     string `json:"name" yaml:"name"`
	Kind     Kind   `json:"type" yaml:"kind"`
	Source   string `json:"source" yaml:"source"`
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty"`

	// Header is the text of an impl block before its body, leading doc
	// comments and attributes included.
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
}

// Key identifies an item by name, kind and receiver. Keys are not unique
// within a parse result: trait impls can repeat a method name on one type.
func (i Item) Key() string {
	return i.Name + "||" + string(i.Kind) + "||" + i.Receiver
}

// ParseResult is the ordered list of declarations found in one file.
type ParseResult struct {
	Items []Item
}

// Imports flattens every imports item into a deduplicated list of names,
// preserving first-seen order.
func (r ParseResult) Imports() []string {
	var names []string
	seen := make(map[string]bool)
	for _, item := range r.Items {
		if item.Kind != KindImports {
			continue
		}
		for _, name := range strings.Split(item.Source, ",") {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Declarations returns every item except the synthetic imports item.
func (r ParseResult) Declarations() []Item {
	items := make([]Item, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Kind != KindImports {
			items = append(items, item)
		}
	}
	return items
}

// TranslationUnit is one request sent to the model.
type TranslationUnit struct {
	Seq          int      `yaml:"seq"`
	SymbolName   string   `yaml:"symbol"`
	Kind         Kind     `yaml:"kind"`
	Source       string   `yaml:"source"`
	Members      []string `yaml:"members,omitempty"`
	SourcePath   string   `yaml:"source_path,omitempty"`
	DestFilename string   `yaml:"dest_filename,omitempty"`
}

// Fused reports whether the unit merges a type with its methods.
func (u TranslationUnit) Fused() bool {
	return len(u.Members) > 0
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatResult pairs a model reply with the unit that produced it.
type ChatResult struct {
	Text   string
	Unit   TranslationUnit
	Model  string
	Cached bool
}

// AssembledFile is the reassembled destination file.
type AssembledFile struct {
	Header   string
	Imports  string
	Blocks   []string
	Failures []MatchFailure
}

// String renders the file: header, import block and blocks separated by a
// blank line, with a single trailing newline.
func (f *AssembledFile) String() string {
	parts := make([]string, 0, len(f.Blocks)+2)
	for _, part := range append([]string{f.Header, f.Imports}, f.Blocks...) {
		part = strings.TrimRight(part, "\n")
		if strings.TrimSpace(part) == "" {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// CachedResponse is a stored model reply.
type CachedResponse struct {
	Model     string `json:"model"`
	Symbol    string `json:"symbol"`
	Text      string `json:"text"`
	RunID     string `json:"run_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// CacheStats summarises the response cache.
type CacheStats struct {
	Entries       int
	SchemaVersion int
}
