package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"codeport/internal/domain"
)

var tsDeclKinds = map[string]domain.Kind{
	"function_declaration":           domain.KindFunction,
	"generator_function_declaration": domain.KindFunction,
	"class_declaration":              domain.KindStruct,
	"abstract_class_declaration":     domain.KindStruct,
	"interface_declaration":          domain.KindTrait,
	"type_alias_declaration":         domain.KindStruct,
	"enum_declaration":               domain.KindEnum,
	"internal_module":                domain.KindModule,
	"module":                         domain.KindModule,
}

// TypeScriptParser parses TypeScript source code using tree-sitter.
type TypeScriptParser struct{}

// NewTypeScriptParser creates a new TypeScript parser.
func NewTypeScriptParser() *TypeScriptParser {
	return &TypeScriptParser{}
}

// Language returns the language this parser handles.
func (p *TypeScriptParser) Language() domain.Language {
	return domain.LanguageTypeScript
}

// Parse extracts top-level declarations, exported or not, plus class methods.
// Other top-level code becomes a statement item; `export default <expr>` is
// named default.
func (p *TypeScriptParser) Parse(content string) (domain.ParseResult, error) {
	src := []byte(content)
	tree, err := parseTree(domain.LanguageTypeScript, typescript.GetLanguage(), src)
	if err != nil {
		return domain.ParseResult{}, err
	}
	defer tree.Close()

	lines := strings.Split(content, "\n")
	root := tree.RootNode()

	var items []domain.Item
	var imports []string
	var lead span
	var run statementRun

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		switch node.Type() {
		case "comment":
			lead.mark(node)
			continue

		case "import_statement":
			imports = append(imports, tsImportNames(node, src)...)

		case "empty_statement":

		case "export_statement":
			if decl := node.ChildByFieldName("declaration"); decl != nil {
				items = append(items, p.parseDeclaration(node, decl, &lead, lines, src)...)
				break
			}
			if node.ChildByFieldName("value") != nil {
				run.close()
				items = run.add(items, "default", node, &lead, lines)
				run.close()
				lead.reset()
				continue
			}
			items = run.add(items, "init", node, &lead, lines)
			lead.reset()
			continue

		default:
			decls := p.parseDeclaration(node, node, &lead, lines, src)
			if decls == nil {
				items = run.add(items, "init", node, &lead, lines)
				lead.reset()
				continue
			}
			items = append(items, decls...)
		}

		run.close()
		lead.reset()
	}

	items = append(items, importsItem(imports))
	return domain.ParseResult{Items: items}, nil
}

// parseDeclaration converts decl into items whose source spans outer, so an
// export keyword stays attached.
func (p *TypeScriptParser) parseDeclaration(outer, decl *sitter.Node, lead *span, lines []string, src []byte) []domain.Item {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		var items []domain.Item
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			kind := domain.KindConst
			if value := declarator.ChildByFieldName("value"); value != nil {
				switch value.Type() {
				case "arrow_function", "function", "function_expression":
					kind = domain.KindFunction
				}
			}
			items = append(items, domain.Item{
				Name:   fieldText(declarator, "name", src),
				Kind:   kind,
				Source: lead.lines(outer, lines),
			})
		}
		return items

	case "ambient_declaration":
		if decl.NamedChildCount() > 0 {
			return p.parseDeclaration(outer, decl.NamedChild(0), lead, lines, src)
		}
		return nil
	}

	kind, ok := tsDeclKinds[decl.Type()]
	if !ok {
		return nil
	}

	name := fieldText(decl, "name", src)
	items := []domain.Item{{Name: name, Kind: kind, Source: lead.lines(outer, lines)}}

	if kind != domain.KindStruct || decl.Type() == "type_alias_declaration" {
		return items
	}

	body := decl.ChildByFieldName("body")
	if body == nil {
		return items
	}

	var inner span
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "comment", "decorator":
			inner.mark(member)
			continue
		case "method_definition", "abstract_method_signature":
			items = append(items, domain.Item{
				Name:     fieldText(member, "name", src),
				Kind:     domain.KindMethod,
				Source:   inner.lines(member, lines),
				Receiver: name,
			})
		}
		inner.reset()
	}

	return items
}

// tsImportNames lists the local names an import statement binds.
func tsImportNames(node *sitter.Node, src []byte) []string {
	var names []string

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_specifier":
			name := fieldText(n, "alias", src)
			if name == "" {
				name = fieldText(n, "name", src)
			}
			names = append(names, name)
			return
		case "identifier":
			names = append(names, text(n, src))
			return
		case "string":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "import_clause" {
			walk(child)
		}
	}

	return names
}
