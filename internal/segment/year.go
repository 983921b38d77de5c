package segment

import (
	"regexp"

	"github.com/dgallion1/pyqbook/internal/paper"
)

type yearPattern struct {
	re    *regexp.Regexp
	group int // capture group holding the year; 0 means the last group
}

// Checked in order against the whole document; the first pattern that matches
// anywhere wins, regardless of where other forms appear in the text.
var yearPatterns = []yearPattern{
	{re: regexp.MustCompile(`(?i)(\d{1,2})\s*(?:st|nd|rd|th)\s+[\p{L}\p{N}_]+\s+(20\d{2})`), group: 2}, // 28th May 2024
	{re: regexp.MustCompile(`(?i)(20\d{2})`)},
	{re: regexp.MustCompile(`(?i)Year\s*:?\s*(20\d{2})`)},
	{re: regexp.MustCompile(`(?i)Session\s*:?\s*(20\d{2})`)},
}

// InferYear detects the exam year of a document, or returns paper.Unknown.
func InferYear(text string) string {
	for _, p := range yearPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.group > 0 {
			return m[p.group]
		}
		return m[len(m)-1]
	}
	return paper.Unknown
}
