package segment

import (
	"regexp"
	"sort"
	"strconv"
)

var (
	markerPattern     = regexp.MustCompile(`Q\.\s*(\d+)\)`)
	terminatorPattern = regexp.MustCompile(`\*{10,}`)
)

// Marker is one "Q. <n>)" occurrence in the concatenated text.
type Marker struct {
	Number int // Printed question number
	Start  int // Byte offset of the match
	End    int // Byte offset where this question's span stops
	Seq    int // Position in scan order, used as the sort tie-break
	Page   int // Page owning Start
}

// FindMarkers scans text once, left to right, and returns markers in scan
// order with their spans resolved. A span runs to the next marker in the text;
// the last one runs to the first run of ten or more '*' after it, or to the end
// of the text. Numbers too large for an int are skipped.
func FindMarkers(text string, index PageOffsetIndex) []Marker {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	markers := make([]Marker, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		markers = append(markers, Marker{
			Number: n,
			Start:  m[0],
			Seq:    len(markers),
			Page:   index.PageAt(m[0]),
		})
	}

	for i := range markers {
		if i+1 < len(markers) {
			markers[i].End = markers[i+1].Start
			continue
		}
		markers[i].End = len(text)
		if loc := terminatorPattern.FindStringIndex(text[markers[i].Start:]); loc != nil {
			markers[i].End = markers[i].Start + loc[0]
		}
	}
	return markers
}

// SortMarkers orders markers by question number. Equal numbers keep their
// scan order.
func SortMarkers(markers []Marker) {
	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Number != markers[j].Number {
			return markers[i].Number < markers[j].Number
		}
		return markers[i].Seq < markers[j].Seq
	})
}
