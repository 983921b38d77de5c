package parser

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Elements with class "page" become pages, in
// document order; without any, the body is a single page.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]paper.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var texts []string
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "page") {
			texts = append(texts, textContent(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(texts) == 0 {
		root := findBody(doc)
		if root == nil {
			root = doc
		}
		texts = []string{textContent(root)}
	}
	return numberPages(texts), nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
			return true
		}
	}
	return false
}

// textContent flattens a subtree to text, starting a new line at block
// elements and <br>.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "nav", "header", "footer":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
		}
		block := n.Type == html.ElementNode && isBlock(n.Data)
		if block {
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
		if block {
			buf.WriteString("\n")
		}
	}
	extract(n)
	return collapseLines(buf.String())
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "section", "article":
		return true
	}
	return false
}

// collapseLines trims each line and drops empty ones.
func collapseLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
