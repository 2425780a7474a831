// Package markdown extracts fenced code blocks from model replies.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// ExtractCodeBlocks returns the contents of every fenced code block whose info
// string names one of tags, in order of appearance. Tags compare
// case-insensitively; an unterminated fence runs to the end of the reply.
func ExtractCodeBlocks(reply string, tags ...string) []string {
	src := []byte(reply)
	doc := md.Parser().Parse(text.NewReader(src))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !matchesTag(string(fence.Language(src)), tags) {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		blocks = append(blocks, buf.String())
		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// Fence wraps code in a fenced block tagged with tag.
func Fence(tag, code string) string {
	return "```" + tag + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

func matchesTag(lang string, tags []string) bool {
	for _, tag := range tags {
		if strings.EqualFold(lang, tag) {
			return true
		}
	}
	return false
}
