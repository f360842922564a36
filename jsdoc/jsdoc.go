// Package jsdoc associates source comments with declarations and filters
// them down to what is worth keeping in a .d.ts file.
//
// The raw text preceding a declaration is tokenized with tree-sitter's
// JavaScript grammar. Comments separated by a blank line form groups; only
// the last group, and only when it touches the declaration, is attached,
// line comments included. Earlier groups are floating and dropped.
package jsdoc

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/teranos/clutz/errors"
)

// Comment is one comment token from the raw text.
type Comment struct {
	Text     string
	StartRow int
	EndRow   int
	// JSDoc is set for /** ... */ blocks.
	JSDoc bool
	// Detached is set when a blank line separates the comment from what follows it.
	Detached bool
}

// Comments tokenizes raw text and returns its comments in source order.
func Comments(ctx context.Context, raw string) ([]Comment, error) {
	src := []byte(raw)
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize comments")
	}

	root := tree.RootNode()
	var out []Comment
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() != "comment" {
				collect(child)
				continue
			}
			text := child.Content(src)
			out = append(out, Comment{
				Text:     text,
				StartRow: int(child.StartPoint().Row),
				EndRow:   int(child.EndPoint().Row),
				JSDoc:    strings.HasPrefix(text, "/**") && text != "/**/",
				Detached: strings.Count(tail(src, int(child.EndByte())), "\n") > 1,
			})
		}
	}
	collect(root)
	return out, nil
}

// tail returns the whitespace following offset, up to the next token.
func tail(src []byte, offset int) string {
	end := offset
	for end < len(src) && (src[end] == ' ' || src[end] == '\t' || src[end] == '\n' || src[end] == '\r') {
		end++
	}
	return string(src[offset:end])
}

// Attached returns the comments attached to the declaration that follows
// raw, in source order and joined by newlines, or "" when there are none.
// The attached group is every comment up to the declaration with no blank
// line in between. Text without any comment syntax is taken as a bare
// description.
func Attached(ctx context.Context, raw string) (string, error) {
	group, err := attachedGroup(ctx, raw)
	if err != nil || len(group) == 0 {
		return "", err
	}
	texts := make([]string, len(group))
	for i, c := range group {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n"), nil
}

func attachedGroup(ctx context.Context, raw string) ([]Comment, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if !strings.Contains(trimmed, "/*") && !strings.HasPrefix(trimmed, "//") {
		return []Comment{{Text: "/** " + trimmed + " */", JSDoc: true}}, nil
	}

	comments, err := Comments(ctx, raw)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 || comments[len(comments)-1].Detached {
		return nil, nil
	}
	start := len(comments) - 1
	for start > 0 && !comments[start-1].Detached {
		start--
	}
	return comments[start:], nil
}

// Block is one comment of an attached group, ready for Format.
type Block struct {
	// JSDoc blocks hold cleaned lines; other comments hold their source
	// lines verbatim, delimiters included.
	JSDoc bool
	Lines []string
}

// Doc returns the attached comments after raw, with JSDoc blocks cleaned.
// A JSDoc block that cleans to nothing is dropped. params is the emitted
// parameter order of the declaration, if any.
func Doc(ctx context.Context, raw string, params []string) ([]Block, error) {
	group, err := attachedGroup(ctx, raw)
	if err != nil {
		return nil, err
	}
	var out []Block
	for _, c := range group {
		if c.JSDoc {
			if lines := Clean(c.Text, params); len(lines) > 0 {
				out = append(out, Block{JSDoc: true, Lines: lines})
			}
			continue
		}
		out = append(out, Block{Lines: verbatim(c.Text)})
	}
	return out, nil
}

// verbatim splits a plain comment into lines without their source indentation.
func verbatim(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
