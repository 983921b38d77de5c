package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Explicit page breaks separate pages.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]paper.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var texts []string
	var page []string
	var line strings.Builder
	endPage := func() {
		texts = append(texts, strings.Join(page, "\n"))
		page = nil
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		line.Reset()
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				switch v := rc.(type) {
				case *docx.Text:
					line.WriteString(v.Text)
				case *docx.Tab:
					line.WriteString("\t")
				case *docx.BarterRabbet:
					if v.Type == "page" {
						page = append(page, line.String())
						line.Reset()
						endPage()
					} else {
						line.WriteString("\n")
					}
				}
			}
		}
		page = append(page, line.String())
	}
	endPage()

	return numberPages(texts), nil
}
