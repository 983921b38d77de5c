package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/dgallion1/pyqbook/internal/paper"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]paper.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	texts, err := extractPDFPages(data)
	if (err != nil || blank(texts)) && p.FallbackPdftotext {
		if alt, altErr := extractPdftotext(data); altErr == nil {
			texts, err = alt, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return numberPages(texts), nil
}

// extractPDFPages returns one entry per page. Pages that fail to extract are
// kept as empty strings so page numbers stay aligned with the document.
func extractPDFPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	texts := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts[i-1] = text
	}
	return texts, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext wants a path, so write to a temp file.
	tmp, err := os.CreateTemp("", "pyqbook-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

func blank(texts []string) bool {
	for _, t := range texts {
		if SanitizeText(t) != "" {
			return false
		}
	}
	return true
}
