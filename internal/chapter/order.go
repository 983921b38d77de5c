package chapter

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/dgallion1/pyqbook/internal/paper"
)

var firstNumber = regexp.MustCompile(`\d+`)

// SortKey is the first integer found in a label. Labels without one sort last.
func SortKey(label string) int {
	m := firstNumber.FindString(label)
	if m == "" {
		return math.MaxInt
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// Group is one chapter with its questions, in question-slice order.
type Group struct {
	Label     string
	Questions []paper.Question
}

// Groups collects assigned questions by chapter, ordered naturally by SortKey.
// Chapters with equal keys keep first-seen order.
func Groups(questions []paper.Question) []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, q := range questions {
		if !q.Assigned() {
			continue
		}
		i, ok := pos[q.Chapter]
		if !ok {
			i = len(groups)
			pos[q.Chapter] = i
			groups = append(groups, Group{Label: q.Chapter})
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return SortKey(groups[i].Label) < SortKey(groups[j].Label)
	})
	return groups
}

// Progress counts how far assignment has got.
type Progress struct {
	Total     int     `json:"total"`
	Assigned  int     `json:"assigned"`
	Remaining int     `json:"remaining"`
	Ratio     float64 `json:"ratio"`
}

func ProgressOf(questions []paper.Question) Progress {
	p := Progress{Total: len(questions)}
	for _, q := range questions {
		if q.Assigned() {
			p.Assigned++
		}
	}
	p.Remaining = p.Total - p.Assigned
	if p.Total > 0 {
		p.Ratio = float64(p.Assigned) / float64(p.Total)
	}
	return p
}

// YearCount is the number of questions from one year within a chapter.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// Summary is the per-chapter breakdown shown after assignment.
type Summary struct {
	Chapter string      `json:"chapter"`
	Total   int         `json:"total"`
	Years   []YearCount `json:"years"`
}

// Summarize breaks assigned questions down by chapter and year. Chapters are
// in natural order, years ascending.
func Summarize(questions []paper.Question) []Summary {
	groups := Groups(questions)
	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		counts := make(map[string]int)
		for _, q := range g.Questions {
			counts[q.Year]++
		}
		s := Summary{Chapter: g.Label, Total: len(g.Questions)}
		for year, n := range counts {
			s.Years = append(s.Years, YearCount{Year: year, Count: n})
		}
		sort.Slice(s.Years, func(i, j int) bool { return s.Years[i].Year < s.Years[j].Year })
		out = append(out, s)
	}
	return out
}
