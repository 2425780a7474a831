package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codeport/internal/domain"
)

var errSyntax = errors.New("syntax error")

// parseTree parses content with a fresh tree-sitter parser. Parsers are not
// safe for concurrent use, so one is created per call.
func parseTree(lang domain.Language, grammar *sitter.Language, content []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar)

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &domain.ParseError{Language: lang, Err: err}
	}

	root := tree.RootNode()
	if root.HasError() {
		where := firstError(root)
		tree.Close()
		return nil, &domain.ParseError{Language: lang, Err: fmt.Errorf("%w at line %d", errSyntax, where)}
	}

	return tree, nil
}

// firstError returns the 1-based line of the first error or missing node.
func firstError(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstError(child)
		}
	}
	return int(n.StartPoint().Row) + 1
}

// span tracks the first row of an item's leading attributes or comments.
type span struct {
	row  int
	open bool
}

func (s *span) mark(n *sitter.Node) {
	if !s.open {
		s.row = int(n.StartPoint().Row)
		s.open = true
	}
}

func (s *span) reset() { s.open = false }

// lines returns the full source lines covered by n, widened upwards to any
// pending attributes or comments.
func (s *span) lines(n *sitter.Node, lines []string) string {
	start := int(n.StartPoint().Row)
	if s.open && s.row < start {
		start = s.row
	}
	return extractLines(lines, start+1, int(n.EndPoint().Row)+1)
}

// leading returns the pending attribute and comment lines above n.
func (s *span) leading(n *sitter.Node, lines []string) string {
	start := int(n.StartPoint().Row)
	if !s.open || s.row >= start {
		return ""
	}
	return extractLines(lines, s.row+1, start)
}

// statementRun merges consecutive top-level statements into one item. Runs
// after the first with the same name get a numeric suffix so their keys stay
// distinct.
type statementRun struct {
	row   int
	open  bool
	names map[string]int
}

// add appends n as a statement, or extends the open run to cover it.
func (r *statementRun) add(items []domain.Item, name string, n *sitter.Node, lead *span, lines []string) []domain.Item {
	end := int(n.EndPoint().Row) + 1
	if r.open && len(items) > 0 && items[len(items)-1].Kind == domain.KindStatement {
		items[len(items)-1].Source = extractLines(lines, r.row+1, end)
		return items
	}

	start := int(n.StartPoint().Row)
	if lead.open && lead.row < start {
		start = lead.row
	}
	r.row, r.open = start, true

	if r.names == nil {
		r.names = make(map[string]int)
	}
	r.names[name]++
	if seen := r.names[name]; seen > 1 {
		name = fmt.Sprintf("%s%d", name, seen)
	}

	return append(items, domain.Item{
		Name:   name,
		Kind:   domain.KindStatement,
		Source: extractLines(lines, start+1, end),
	})
}

// close ends the open run.
func (r *statementRun) close() { r.open = false }

// extractLines extracts lines from a slice (1-indexed, inclusive).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) || startLine > endLine {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	return text(n.ChildByFieldName(field), src)
}

// baseTypeName reduces a type expression to its bare name:
// `&'a mut path::Foo<T>` becomes `Foo`.
func baseTypeName(expr string) string {
	expr = strings.TrimSpace(expr)
	if idx := strings.Index(expr, "<"); idx >= 0 {
		expr = expr[:idx]
	}
	expr = strings.TrimLeft(expr, "&*")
	fields := strings.Fields(expr)
	if len(fields) > 0 {
		expr = fields[len(fields)-1]
	}
	if idx := strings.LastIndex(expr, "::"); idx >= 0 {
		expr = expr[idx+2:]
	}
	if idx := strings.LastIndex(expr, "."); idx >= 0 {
		expr = expr[idx+1:]
	}
	return strings.TrimSpace(expr)
}

func importsItem(names []string) domain.Item {
	return domain.Item{
		Name:   domain.ImportsName,
		Kind:   domain.KindImports,
		Source: strings.Join(names, ","),
	}
}
