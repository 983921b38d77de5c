package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Thematic breaks
// ("---", "***") separate pages.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]paper.Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var texts []string
	var current []string
	flush := func() {
		texts = append(texts, strings.Join(current, "\n\n"))
		current = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindThematicBreak {
			flush()
			continue
		}
		if t := blockText(n, src); t != "" {
			current = append(current, t)
		}
	}
	flush()

	// A document that is only breaks has no pages.
	if strings.TrimSpace(strings.Join(texts, "")) == "" {
		return nil, nil
	}
	return numberPages(texts), nil
}

// blockText returns the source text of a block. Leaf blocks keep their raw
// lines so bracketed marks like "[4]" survive; containers are walked, and
// list items get their marker back.
func blockText(n ast.Node, src []byte) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	if lines := n.Lines(); lines.Len() > 0 {
		parts := make([]string, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			parts = append(parts, strings.TrimRight(string(seg.Value(src)), "\r\n"))
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}

	var parts []string
	list, isList := n.(*ast.List)
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t := blockText(c, src)
		if t == "" {
			continue
		}
		if isList {
			if list.IsOrdered() {
				t = fmt.Sprintf("%d%c %s", list.Start+i, list.Marker, t)
			} else {
				t = "- " + t
			}
			i++
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n")
}
