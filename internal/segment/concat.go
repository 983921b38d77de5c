package segment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// The form feed keeps the sentinel out of reach of page text: page sources
// split on form feed and sanitize it away.
const sentinelFormat = "\n\f--- PAGE %d ---\n"

var sentinelLine = regexp.MustCompile(`\n?\f--- PAGE \d+ ---\n?`)

// PageOffsetIndex maps byte offsets in concatenated text back to source pages.
// Offsets are strictly increasing.
type PageOffsetIndex struct {
	offsets []int
	pages   []int
}

// PageAt returns the page owning pos: the page of the greatest offset <= pos.
// Positions before the first offset belong to page 1.
func (ix PageOffsetIndex) PageAt(pos int) int {
	i := sort.Search(len(ix.offsets), func(i int) bool { return ix.offsets[i] > pos })
	if i == 0 {
		return 1
	}
	return ix.pages[i-1]
}

// Len returns the number of pages that contributed text.
func (ix PageOffsetIndex) Len() int {
	return len(ix.offsets)
}

// Concatenate joins page text into one document, prefixing each page with a
// sentinel line. Pages without text contribute nothing.
func Concatenate(pages []paper.Page) (string, PageOffsetIndex) {
	var buf strings.Builder
	var ix PageOffsetIndex
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		ix.offsets = append(ix.offsets, buf.Len())
		ix.pages = append(ix.pages, p.Index)
		fmt.Fprintf(&buf, sentinelFormat, p.Index)
		buf.WriteString(p.Text)
	}
	return buf.String(), ix
}

// StripSentinels removes page sentinel lines, leaving a single newline where
// one sat between two lines of text.
func StripSentinels(s string) string {
	return sentinelLine.ReplaceAllString(s, "\n")
}
