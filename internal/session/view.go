package session

import (
	"slices"
	"sort"

	"github.com/dgallion1/pyqbook/internal/paper"
)

const (
	All        = "All"
	Unassigned = "Unassigned"

	DefaultPerPage = 10
)

// PageSizes are the page sizes a view accepts.
var PageSizes = []int{5, 10, 20}

// Filter narrows and pages the question list. Empty fields mean All.
type Filter struct {
	Chapter string
	Year    string
	Page    int // 1-based
	PerPage int
}

// Item is a question with its position in the session, the handle used for
// manual tagging.
type Item struct {
	Index int `json:"index"`
	paper.Question
}

// View is one page of filtered questions.
type View struct {
	Items    []Item   `json:"items"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
	Pages    int      `json:"pages"`
	Years    []string `json:"years"`
	Chapters []string `json:"chapters"`
}

func (f Filter) match(q paper.Question) bool {
	switch f.Chapter {
	case "", All:
	case Unassigned:
		if q.Assigned() {
			return false
		}
	default:
		if q.Chapter != f.Chapter {
			return false
		}
	}
	return f.Year == "" || f.Year == All || q.Year == f.Year
}

// View filters the questions and returns the requested page. Out-of-range
// pages are clamped; an unsupported page size falls back to DefaultPerPage.
func (s *Session) View(f Filter) View {
	qs := s.Questions()

	perPage := f.PerPage
	if !slices.Contains(PageSizes, perPage) {
		perPage = DefaultPerPage
	}

	v := View{PerPage: perPage, Items: []Item{}}
	years := make(map[string]bool)
	chapters := make(map[string]bool)
	var matched []Item
	for i, q := range qs {
		years[q.Year] = true
		if q.Assigned() {
			chapters[q.Chapter] = true
		}
		if f.match(q) {
			matched = append(matched, Item{Index: i, Question: q})
		}
	}
	v.Years = sortedKeys(years)
	v.Chapters = sortedKeys(chapters)

	v.Total = len(matched)
	if v.Total == 0 {
		return v
	}
	v.Pages = (v.Total-1)/perPage + 1
	v.Page = min(max(f.Page, 1), v.Pages)

	start := (v.Page - 1) * perPage
	end := min(start+perPage, v.Total)
	v.Items = matched[start:end]
	return v
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
