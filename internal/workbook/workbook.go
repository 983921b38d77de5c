// Package workbook renders assigned questions as a chapter-wise workbook.
//
// Every format shares the same layout: a title, then one section per chapter
// in natural order, then one block per question headed by its number, year
// and marks. Content lines keep their order; option lines are indented and
// sub-question lines are emphasised.
package workbook

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/paper"
)

const (
	DefaultTitle = "Chapter-wise Question Workbook"
	EmptyNotice  = "No questions have been assigned to chapters yet."
)

// Format selects the output document type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
	FormatText     Format = "txt"
)

// ParseFormat accepts a format name or file extension. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "docx":
		return FormatDOCX, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown workbook format %q", s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatText:
		return "text/plain; charset=iso-8859-1"
	}
	return "text/markdown; charset=utf-8"
}

// Options tweaks rendering.
type Options struct {
	Title string // DefaultTitle when empty
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

// Render writes the workbook for questions in the given format. Unassigned
// questions are left out; with none assigned the workbook holds only the
// title and EmptyNotice.
func Render(w io.Writer, f Format, questions []paper.Question, opts Options) error {
	groups := chapter.Groups(questions)
	switch f {
	case FormatMarkdown:
		return renderMarkdown(w, groups, opts)
	case FormatHTML:
		return renderHTML(w, groups, opts)
	case FormatDOCX:
		return renderDOCX(w, groups, opts)
	case FormatText:
		return renderText(w, groups, opts)
	}
	return fmt.Errorf("unknown workbook format %q", f)
}

// Header is the heading line of one question.
func Header(q paper.Question) string {
	return fmt.Sprintf("Question %d (Year: %s) - [%s marks]", q.Number, q.Year, q.Marks)
}

// LineKind classifies one content line for layout.
type LineKind int

const (
	Blank LineKind = iota
	Plain
	Option      // A. / IV. / c.
	SubQuestion // i) ii) iii)
)

// Line is one trimmed content line and its kind.
type Line struct {
	Kind LineKind
	Text string
}

var (
	optionPattern      = regexp.MustCompile(`^(?:[ABCD]\.|[IVX]+\.|[a-d]\.)`)
	subQuestionPattern = regexp.MustCompile(`^i+\)`)
)

// Classify reports the kind of an already trimmed line.
func Classify(line string) LineKind {
	switch {
	case line == "":
		return Blank
	case optionPattern.MatchString(line):
		return Option
	case subQuestionPattern.MatchString(line):
		return SubQuestion
	}
	return Plain
}

// Lines splits question content into trimmed, classified lines.
func Lines(content string) []Line {
	raw := strings.Split(content, "\n")
	out := make([]Line, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		out = append(out, Line{Kind: Classify(l), Text: l})
	}
	return out
}
