package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"codeport/internal/domain"
)

var rustItemKinds = map[string]domain.Kind{
	"struct_item":      domain.KindStruct,
	"union_item":       domain.KindStruct,
	"type_item":        domain.KindStruct,
	"enum_item":        domain.KindEnum,
	"const_item":       domain.KindConst,
	"static_item":      domain.KindConst,
	"trait_item":       domain.KindTrait,
	"function_item":    domain.KindFunction,
	"mod_item":         domain.KindModule,
	"macro_definition": domain.KindMacro,
}

// RustParser parses Rust source code using tree-sitter.
type RustParser struct{}

// NewRustParser creates a new Rust parser.
func NewRustParser() *RustParser {
	return &RustParser{}
}

// Language returns the language this parser handles.
func (p *RustParser) Language() domain.Language {
	return domain.LanguageRust
}

// Parse extracts top-level items, impl blocks and their methods.
func (p *RustParser) Parse(content string) (domain.ParseResult, error) {
	src := []byte(content)
	tree, err := parseTree(domain.LanguageRust, rust.GetLanguage(), src)
	if err != nil {
		return domain.ParseResult{}, err
	}
	defer tree.Close()

	lines := strings.Split(content, "\n")
	root := tree.RootNode()

	var items []domain.Item
	var imports []string
	var lead span

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		nodeType := node.Type()

		switch nodeType {
		case "attribute_item", "line_comment", "block_comment":
			lead.mark(node)
			continue

		case "use_declaration":
			imports = append(imports, useNames(node.ChildByFieldName("argument"), "", src)...)

		case "extern_crate_declaration":
			name := fieldText(node, "alias", src)
			if name == "" {
				name = fieldText(node, "name", src)
			}
			imports = append(imports, name)

		case "impl_item":
			items = append(items, p.parseImpl(node, &lead, lines, src)...)

		case "macro_invocation", "expression_statement":
			macro := node
			if nodeType == "expression_statement" {
				macro = node.NamedChild(0)
			}
			if macro != nil && macro.Type() == "macro_invocation" {
				items = append(items, domain.Item{
					Name:   fieldText(macro, "macro", src),
					Kind:   domain.KindMacro,
					Source: lead.lines(node, lines),
				})
			}

		default:
			kind, ok := rustItemKinds[nodeType]
			if !ok {
				break
			}
			items = append(items, domain.Item{
				Name:   fieldText(node, "name", src),
				Kind:   kind,
				Source: lead.lines(node, lines),
			})
		}

		lead.reset()
	}

	items = append(items, importsItem(imports))
	return domain.ParseResult{Items: items}, nil
}

// parseImpl returns the impl block followed by its methods. The block is
// named `Type` or `Trait for Type`; every item carries Type as receiver.
func (p *RustParser) parseImpl(node *sitter.Node, lead *span, lines []string, src []byte) []domain.Item {
	target := baseTypeName(fieldText(node, "type", src))
	name := target
	if trait := fieldText(node, "trait", src); trait != "" {
		name = baseTypeName(trait) + " for " + target
	}

	impl := domain.Item{
		Name:     name,
		Kind:     domain.KindImpl,
		Source:   lead.lines(node, lines),
		Receiver: target,
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return []domain.Item{impl}
	}

	impl.Header = strings.TrimSpace(string(src[node.StartByte():body.StartByte()]))
	if doc := lead.leading(node, lines); doc != "" {
		impl.Header = doc + "\n" + impl.Header
	}
	items := []domain.Item{impl}

	var inner span
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "attribute_item", "line_comment", "block_comment":
			inner.mark(child)
			continue
		case "function_item":
			items = append(items, domain.Item{
				Name:     fieldText(child, "name", src),
				Kind:     domain.KindMethod,
				Source:   inner.lines(child, lines),
				Receiver: target,
			})
		}
		inner.reset()
	}

	return items
}

// useNames flattens a use tree into the names it brings into scope.
// Globs contribute nothing; `self` inside a list names the parent module.
func useNames(n *sitter.Node, parent string, src []byte) []string {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "identifier", "crate", "super", "metavariable":
		return []string{text(n, src)}
	case "self":
		if parent != "" {
			return []string{baseTypeName(parent)}
		}
		return nil
	case "scoped_identifier":
		return []string{fieldText(n, "name", src)}
	case "use_as_clause":
		return []string{fieldText(n, "alias", src)}
	case "scoped_use_list":
		return useNames(n.ChildByFieldName("list"), fieldText(n, "path", src), src)
	case "use_list":
		var names []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			names = append(names, useNames(n.NamedChild(i), parent, src)...)
		}
		return names
	}
	return nil
}
