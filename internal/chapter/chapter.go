// Package chapter assigns chapter labels to questions and orders chapters
// for display.
package chapter

import (
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// Rule maps a chapter label to the keywords that select it.
type Rule struct {
	Label    string   `json:"label" yaml:"label"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Match returns the label of the first rule with a keyword contained in text,
// compared case-insensitively. Empty keywords never match.
func Match(text string, rules []Rule) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			kw = strings.ToLower(kw)
			if kw != "" && strings.Contains(lower, kw) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// Assign labels each question whose preview matches a rule. Rules are tried
// in order and the first match wins. Questions with no match keep whatever
// chapter they already had. The slice is modified in place and returned.
func Assign(questions []paper.Question, rules []Rule) []paper.Question {
	for i := range questions {
		if label, ok := Match(questions[i].Preview, rules); ok {
			questions[i].Chapter = label
		}
	}
	return questions
}

// Reset clears every chapter assignment.
func Reset(questions []paper.Question) {
	for i := range questions {
		questions[i].Chapter = ""
	}
}
