package workbook

import (
	"fmt"
	"io"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/fumiama/go-docx"
)

// Font sizes in half-points.
const (
	docxTitleSize   = "32"
	docxChapterSize = "28"
	docxHeaderSize  = "24"
	docxBodySize    = "20"
)

func renderDOCX(w io.Writer, groups []chapter.Group, opts Options) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Justification("center").
		AddText(opts.title()).Bold().Size(docxTitleSize)

	if len(groups) == 0 {
		doc.AddParagraph().AddText(EmptyNotice).Size(docxHeaderSize)
	}

	for i, g := range groups {
		if i > 0 {
			doc.AddParagraph().AddPageBreaks()
		}
		doc.AddParagraph().AddText(g.Label).Bold().Size(docxChapterSize)
		for _, q := range g.Questions {
			doc.AddParagraph().AddText(Header(q)).Bold().Size(docxHeaderSize)
			for _, l := range Lines(q.Content) {
				p := doc.AddParagraph()
				switch l.Kind {
				case Blank:
				case Option:
					p.AddTab()
					p.AddText(l.Text).Size(docxBodySize)
				case SubQuestion:
					p.AddText(l.Text).Bold().Size(docxBodySize)
				default:
					p.AddText(l.Text).Size(docxBodySize)
				}
			}
			doc.AddParagraph()
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx workbook: %w", err)
	}
	return nil
}
