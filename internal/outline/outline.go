// Package outline extracts the section structure of an entry body.
package outline

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is one section title in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is an inline link or autolink target.
type Link struct {
	Text        string `json:"text"`
	Destination string `json:"destination"`
}

// Outline is the structural summary of a body.
type Outline struct {
	Headings []Heading `json:"headings"`
	Links    []Link    `json:"links"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse walks the Markdown AST of body. HTML comments and code blocks are
// skipped, so template placeholders never show up as content.
func Parse(body string) Outline {
	src := []byte(body)
	doc := md.Parser().Parse(text.NewReader(src))

	out := Outline{Headings: []Heading{}, Links: []Link{}}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.Headings = append(out.Headings, Heading{Level: node.Level, Text: inlineText(node, src)})
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			out.Links = append(out.Links, Link{Text: inlineText(node, src), Destination: string(node.Destination)})
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			url := string(node.URL(src))
			out.Links = append(out.Links, Link{Text: url, Destination: url})
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
