package workbook

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/yuin/goldmark"
)

var (
	mdInline      = strings.NewReplacer(`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`)
	mdOrderedLike = regexp.MustCompile(`^(\d+)([.)])`)
)

// escapeMarkdown keeps a content line literal when parsed as Markdown.
func escapeMarkdown(s string) string {
	s = mdInline.Replace(s)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "=") {
		s = `\` + s
	}
	return mdOrderedLike.ReplaceAllString(s, `$1\$2`)
}

func markdownBytes(groups []chapter.Group, opts Options) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(opts.title()))
	if len(groups) == 0 {
		b.WriteString(escapeMarkdown(EmptyNotice) + "\n")
		return b.Bytes()
	}

	for _, g := range groups {
		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(g.Label))
		for _, q := range g.Questions {
			fmt.Fprintf(&b, "### %s\n\n", escapeMarkdown(Header(q)))
			inList := false
			for _, l := range Lines(q.Content) {
				if l.Kind != Option && inList {
					b.WriteString("\n")
					inList = false
				}
				switch l.Kind {
				case Blank:
				case Option:
					fmt.Fprintf(&b, "- %s\n", escapeMarkdown(l.Text))
					inList = true
				case SubQuestion:
					fmt.Fprintf(&b, "**%s**\n\n", escapeMarkdown(l.Text))
				default:
					fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(l.Text))
				}
			}
			if inList {
				b.WriteString("\n")
			}
		}
	}
	return b.Bytes()
}

func renderMarkdown(w io.Writer, groups []chapter.Group, opts Options) error {
	if _, err := w.Write(markdownBytes(groups, opts)); err != nil {
		return fmt.Errorf("write markdown workbook: %w", err)
	}
	return nil
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; max-width: 50em; margin: 2em auto; }
h1 { text-align: center; }
ul { list-style: none; }
</style>
</head>
<body>
`

func renderHTML(w io.Writer, groups []chapter.Group, opts Options) error {
	var body bytes.Buffer
	if err := goldmark.Convert(markdownBytes(groups, opts), &body); err != nil {
		return fmt.Errorf("convert workbook to html: %w", err)
	}
	title := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(opts.title())
	if _, err := fmt.Fprintf(w, htmlHead, title); err != nil {
		return fmt.Errorf("write html workbook: %w", err)
	}
	if _, err := body.WriteTo(w); err != nil {
		return fmt.Errorf("write html workbook: %w", err)
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
