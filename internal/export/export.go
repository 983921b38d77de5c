// Package export writes question records as tables and reads them back.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// Columns is the header row, one column per Question field.
var Columns = []string{
	"question_number",
	"question_preview",
	"complete_content",
	"marks",
	"chapter",
	"year",
	"page",
}

var (
	// ErrBadHeader is returned when an imported table lacks a required column.
	ErrBadHeader = errors.New("export: missing column")
	// ErrBadRow is returned when a number or page cell is not an integer.
	ErrBadRow = errors.New("export: bad row")
)

func row(q paper.Question) []string {
	return []string{
		strconv.Itoa(q.Number),
		q.Preview,
		q.Content,
		q.Marks,
		q.Chapter,
		q.Year,
		strconv.Itoa(q.Page),
	}
}

// decode maps table rows back to questions. The first row is the header;
// columns may appear in any order and extra columns are ignored.
func decode(rows [][]string) ([]paper.Question, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	pos := make(map[string]int)
	for i, h := range rows[0] {
		pos[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range Columns {
		if _, ok := pos[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadHeader, c)
		}
	}

	cell := func(r []string, col string) string {
		if i := pos[col]; i < len(r) {
			return r[i]
		}
		return ""
	}

	questions := make([]paper.Question, 0, len(rows)-1)
	for n, r := range rows[1:] {
		num, err := strconv.Atoi(strings.TrimSpace(cell(r, "question_number")))
		if err != nil {
			return nil, fmt.Errorf("%w %d: question_number: %w", ErrBadRow, n+2, err)
		}
		page, err := strconv.Atoi(strings.TrimSpace(cell(r, "page")))
		if err != nil {
			return nil, fmt.Errorf("%w %d: page: %w", ErrBadRow, n+2, err)
		}
		questions = append(questions, paper.Question{
			Number:  num,
			Preview: cell(r, "question_preview"),
			Content: cell(r, "complete_content"),
			Marks:   orUnknown(cell(r, "marks")),
			Chapter: cell(r, "chapter"),
			Year:    orUnknown(cell(r, "year")),
			Page:    page,
		})
	}
	return questions, nil
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return paper.Unknown
	}
	return s
}
