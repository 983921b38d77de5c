// Package segment cuts concatenated exam-paper text into question records.
package segment

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// ErrNoText is returned when no page carries any text.
var ErrNoText = errors.New("segment: no page text")

const (
	minContentRunes = 20  // spans this short or shorter are noise
	minPreviewRunes = 10  // a preview line must be longer than this
	maxPreviewRunes = 150 // previews are cut here and suffixed with "..."
)

var (
	blankRunPattern     = regexp.MustCompile(`\n\s*\n\s*\n`)
	marksPattern        = regexp.MustCompile(`\[(\d+)\]\s*$`)
	leadingMarkerPrefix = regexp.MustCompile(`^\s*Q\.\s*\d+\)`)
)

// ExtractQuestions runs the full segmentation pipeline over one document's
// pages. The result is sorted by question number. A document without markers
// yields an empty result and no error.
func ExtractQuestions(pages []paper.Page) ([]paper.Question, error) {
	text, index := Concatenate(pages)
	if index.Len() == 0 {
		return nil, ErrNoText
	}
	return Segment(text, index), nil
}

// Segment slices already-concatenated text into questions.
func Segment(text string, index PageOffsetIndex) []paper.Question {
	year := InferYear(text)

	markers := FindMarkers(text, index)
	SortMarkers(markers)

	questions := make([]paper.Question, 0, len(markers))
	for _, m := range markers {
		content := CleanSpan(text[m.Start:m.End])
		if utf8.RuneCountInString(content) <= minContentRunes {
			continue
		}
		questions = append(questions, paper.Question{
			Number:  m.Number,
			Preview: Preview(content),
			Content: content,
			Marks:   Marks(content),
			Year:    year,
			Page:    m.Page,
		})
	}
	return questions
}

// CleanSpan trims a raw span, drops page sentinels and collapses runs of
// blank lines to a single blank line.
func CleanSpan(raw string) string {
	s := strings.TrimSpace(raw)
	s = StripSentinels(s)
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Marks returns the digits of a trailing "[N]", or paper.Unknown.
func Marks(content string) string {
	if m := marksPattern.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return paper.Unknown
}

// Preview picks the first line that still says something once its leading
// "Q. <n>)" is removed.
func Preview(content string) string {
	lines := strings.Split(content, "\n")
	preview := ""
	for _, line := range lines {
		clean := strings.TrimSpace(leadingMarkerPrefix.ReplaceAllString(line, ""))
		if utf8.RuneCountInString(clean) > minPreviewRunes {
			preview = clean
			break
		}
	}
	if preview == "" {
		preview = lines[0]
	}
	return truncate(preview, maxPreviewRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
