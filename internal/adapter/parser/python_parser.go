package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codeport/internal/domain"
)

// PythonParser parses Python source code using tree-sitter.
type PythonParser struct{}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

// Language returns the language this parser handles.
func (p *PythonParser) Language() domain.Language {
	return domain.LanguagePython
}

// Parse extracts module-level functions, classes with their methods,
// assignments and imports. Any other top-level code becomes a statement item;
// the `if __name__ == "__main__":` guard is named main.
func (p *PythonParser) Parse(content string) (domain.ParseResult, error) {
	src := []byte(content)
	tree, err := parseTree(domain.LanguagePython, python.GetLanguage(), src)
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
			imports = append(imports, pythonImportNames(node, "", src)...)

		case "import_from_statement":
			module := fieldText(node, "module_name", src)
			imports = append(imports, pythonImportNames(node, module, src)...)

		case "future_import_statement", "pass_statement":

		case "function_definition", "class_definition", "decorated_definition":
			items = append(items, p.parseDefinition(node, "", &lead, lines, src)...)

		case "if_statement":
			if isMainGuard(node, src) {
				run.close()
				items = run.add(items, "main", node, &lead, lines)
				run.close()
				lead.reset()
				continue
			}
			items = run.add(items, "init", node, &lead, lines)
			lead.reset()
			continue

		case "expression_statement":
			if name, ok := assignedName(node, src); ok {
				items = append(items, domain.Item{
					Name:   name,
					Kind:   domain.KindConst,
					Source: lead.lines(node, lines),
				})
				break
			}
			if expr := node.NamedChild(0); expr != nil && expr.Type() == "string" && node.NamedChildCount() == 1 {
				lead.mark(node)
				continue
			}
			items = run.add(items, "init", node, &lead, lines)
			lead.reset()
			continue

		default:
			items = run.add(items, "init", node, &lead, lines)
			lead.reset()
			continue
		}

		run.close()
		lead.reset()
	}

	items = append(items, importsItem(imports))
	return domain.ParseResult{Items: items}, nil
}

// assignedName returns the target of a plain `NAME = value` statement.
func assignedName(node *sitter.Node, src []byte) (string, bool) {
	assign := node.NamedChild(0)
	if assign == nil || assign.Type() != "assignment" {
		return "", false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return "", false
	}
	return text(left, src), true
}

// isMainGuard reports whether node is `if __name__ == "__main__":`.
func isMainGuard(node *sitter.Node, src []byte) bool {
	cond := fieldText(node, "condition", src)
	return strings.Contains(cond, "__name__") && strings.Contains(cond, "__main__")
}

// parseDefinition handles a function or class, unwrapping decorators. Class
// bodies contribute their methods with the class as receiver.
func (p *PythonParser) parseDefinition(node *sitter.Node, owner string, lead *span, lines []string, src []byte) []domain.Item {
	def := node
	if node.Type() == "decorated_definition" {
		def = node.ChildByFieldName("definition")
		if def == nil {
			return nil
		}
	}

	name := fieldText(def, "name", src)

	if def.Type() == "function_definition" {
		item := domain.Item{Name: name, Kind: domain.KindFunction, Source: lead.lines(node, lines)}
		if owner != "" {
			item.Kind = domain.KindMethod
			item.Receiver = owner
		}
		return []domain.Item{item}
	}

	if def.Type() != "class_definition" {
		return nil
	}

	items := []domain.Item{{Name: name, Kind: domain.KindStruct, Source: lead.lines(node, lines)}}

	body := def.ChildByFieldName("body")
	if body == nil {
		return items
	}

	var inner span
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "comment":
			inner.mark(child)
			continue
		case "function_definition", "decorated_definition":
			items = append(items, p.parseDefinition(child, name, &inner, lines, src)...)
		}
		inner.reset()
	}

	return items
}

// pythonImportNames lists imported names. Plain imports keep the dotted
// module; from-imports are qualified with their module (`typing.List`).
func pythonImportNames(node *sitter.Node, module string, src []byte) []string {
	var names []string

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if module != "" && child.StartByte() < node.ChildByFieldName("module_name").EndByte() {
			continue
		}

		var name string
		switch child.Type() {
		case "dotted_name":
			name = text(child, src)
		case "aliased_import":
			name = fieldText(child, "name", src)
		case "wildcard_import":
			continue
		default:
			continue
		}

		if module != "" {
			if strings.HasSuffix(module, ".") {
				name = module + name
			} else {
				name = module + "." + name
			}
		}
		names = append(names, name)
	}

	return names
}
