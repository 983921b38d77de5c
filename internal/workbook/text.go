package workbook

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"golang.org/x/text/encoding/charmap"
)

const textIndent = "    "

// Latin1 encodes s as ISO-8859-1. Runes outside the charset become '?'.
func Latin1(s string) []byte {
	if out, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil {
		return []byte(out)
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r == utf8.RuneError {
			out = append(out, '?')
			continue
		}
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// renderText writes a plain Latin-1 workbook. Sub-questions are emphasised
// by an underline row since plain text has no bold.
func renderText(w io.Writer, groups []chapter.Group, opts Options) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.Write(Latin1(s))
		bw.WriteByte('\n')
	}
	rule := func(s string, c string) {
		line(strings.Repeat(c, utf8.RuneCountInString(s)))
	}

	line(opts.title())
	rule(opts.title(), "=")
	line("")

	if len(groups) == 0 {
		line(EmptyNotice)
	}

	for _, g := range groups {
		line(g.Label)
		rule(g.Label, "-")
		line("")
		for _, q := range g.Questions {
			line(Header(q))
			line("")
			for _, l := range Lines(q.Content) {
				switch l.Kind {
				case Option:
					line(textIndent + l.Text)
				case SubQuestion:
					line(l.Text)
					rule(l.Text, "~")
				default:
					line(l.Text)
				}
			}
			line("")
		}
		line("")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write text workbook: %w", err)
	}
	return nil
}
