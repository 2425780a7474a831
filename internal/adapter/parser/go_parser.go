package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"codeport/internal/domain"
)

var goPackageClause = regexp.MustCompile(`(?m)^\s*package\s+\w+`)

// GoParser parses Go source code into declaration items.
type GoParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

// Language returns the language this parser handles.
func (p *GoParser) Language() domain.Language {
	return domain.LanguageGo
}

// Parse parses Go source code and returns its declarations. Snippets
// without a package clause are accepted as if they belonged to package main.
func (p *GoParser) Parse(content string) (domain.ParseResult, error) {
	if !goPackageClause.MatchString(content) {
		content = "package main\n\n" + content
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", content, parser.ParseComments)
	if err != nil {
		return domain.ParseResult{}, &domain.ParseError{Language: domain.LanguageGo, Err: err}
	}

	src := []byte(content)
	var items []domain.Item
	var imports []string

	types := make(map[string]bool)
	for _, decl := range f.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.TYPE {
			for _, spec := range d.Specs {
				types[spec.(*ast.TypeSpec).Name.Name] = true
			}
		}
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			items = append(items, p.extractFunction(fset, d, src))

		case *ast.GenDecl:
			if d.Tok == token.IMPORT {
				for _, spec := range d.Specs {
					imports = append(imports, strings.Trim(spec.(*ast.ImportSpec).Path.Value, "\"`"))
				}
				continue
			}
			items = append(items, p.extractGenDecl(fset, d, src, types)...)
		}
	}

	items = append(items, importsItem(imports))
	return domain.ParseResult{Items: items}, nil
}

// extractFunction extracts a function or method declaration, doc comment included.
func (p *GoParser) extractFunction(fset *token.FileSet, fn *ast.FuncDecl, src []byte) domain.Item {
	start := fn.Pos()
	if fn.Doc != nil {
		start = fn.Doc.Pos()
	}

	item := domain.Item{
		Name:   fn.Name.Name,
		Kind:   domain.KindFunction,
		Source: slice(fset, src, start, fn.End()),
	}

	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		item.Kind = domain.KindMethod
		item.Receiver = receiverName(fn.Recv.List[0].Type)
	}

	return item
}

// extractGenDecl extracts type, const and var declarations. A const typed
// with a type declared in the file carries that type as receiver, so an
// enum-like type and its values travel together.
func (p *GoParser) extractGenDecl(fset *token.FileSet, decl *ast.GenDecl, src []byte, types map[string]bool) []domain.Item {
	var items []domain.Item
	grouped := decl.Lparen.IsValid()

	if grouped && repeatsValues(decl) {
		return p.extractConstBlock(fset, decl, src, types)
	}

	for _, spec := range decl.Specs {
		var item domain.Item

		switch s := spec.(type) {
		case *ast.TypeSpec:
			item.Name = s.Name.Name
			item.Kind = domain.KindStruct
			if _, ok := s.Type.(*ast.InterfaceType); ok {
				item.Kind = domain.KindTrait
			}
		case *ast.ValueSpec:
			if len(s.Names) == 0 || s.Names[0].Name == "_" {
				continue
			}
			item.Name = s.Names[0].Name
			item.Kind = domain.KindConst
			if decl.Tok == token.VAR {
				item.Kind = domain.KindVar
			} else {
				item.Receiver = declaredType(s.Type, types)
			}
		default:
			continue
		}

		if !grouped {
			start := decl.Pos()
			if decl.Doc != nil {
				start = decl.Doc.Pos()
			}
			item.Source = slice(fset, src, start, decl.End())
		} else {
			start := spec.Pos()
			if doc := specDoc(spec); doc != nil {
				start = doc.Pos()
			}
			item.Source = decl.Tok.String() + " " + slice(fset, src, start, spec.End())
		}

		items = append(items, item)
	}

	return items
}

// extractConstBlock keeps a const block with implicitly repeated values, such
// as an iota sequence, as a single item named after its first constant.
func (p *GoParser) extractConstBlock(fset *token.FileSet, decl *ast.GenDecl, src []byte, types map[string]bool) []domain.Item {
	var item domain.Item
	for _, spec := range decl.Specs {
		for _, name := range spec.(*ast.ValueSpec).Names {
			if name.Name != "_" {
				item.Name = name.Name
				break
			}
		}
		if item.Name != "" {
			break
		}
	}
	if item.Name == "" {
		return nil
	}

	start := decl.Pos()
	if decl.Doc != nil {
		start = decl.Doc.Pos()
	}
	item.Kind = domain.KindConst
	item.Source = slice(fset, src, start, decl.End())
	item.Receiver = declaredType(decl.Specs[0].(*ast.ValueSpec).Type, types)
	return []domain.Item{item}
}

// repeatsValues reports whether a grouped const declaration has specs that
// inherit the expression of the one above.
func repeatsValues(decl *ast.GenDecl) bool {
	if decl.Tok != token.CONST {
		return false
	}
	for _, spec := range decl.Specs {
		if len(spec.(*ast.ValueSpec).Values) == 0 {
			return true
		}
	}
	return false
}

// declaredType returns the name of typ when it is a type declared in the file.
func declaredType(typ ast.Expr, types map[string]bool) string {
	if id, ok := typ.(*ast.Ident); ok && types[id.Name] {
		return id.Name
	}
	return ""
}

func specDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	}
	return nil
}

// receiverName returns the base type name of a method receiver.
func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.Ident:
		return e.Name
	}
	return ""
}

func slice(fset *token.FileSet, src []byte, start, end token.Pos) string {
	from := fset.Position(start).Offset
	to := fset.Position(end).Offset
	if from < 0 || to > len(src) || from > to {
		return ""
	}
	return string(src[from:to])
}
