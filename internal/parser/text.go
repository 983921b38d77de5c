package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// TextParser handles plain text files. Form feeds separate pages, as written
// by pdftotext; a file without one is a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]paper.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return numberPages(splitPages(string(data))), nil
}

func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	// pdftotext ends its output with a form feed.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
