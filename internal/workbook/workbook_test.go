package workbook

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/fumiama/go-docx"
)

func assigned() []paper.Question {
	return []paper.Question{
		{Number: 1, Content: "Q. 1) Define beta.\nA. risk\nB. return\n\ni) State CAPM.\nii) Explain. [4]", Marks: "4", Year: "2024", Chapter: "Chapter 10"},
		{Number: 2, Content: "Q. 2) Unassigned question text.", Marks: paper.Unknown, Year: "2024"},
		{Number: 3, Content: "Q. 3) Probability of ruin in finite time. [6]", Marks: "6", Year: "2024", Chapter: "Chapter 2"},
		{Number: 4, Content: "Q. 4) Café owner's surplus → ruin. [3]", Marks: "3", Year: "2024", Chapter: "Misc"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{".html", FormatHTML, false},
		{"DOCX", FormatDOCX, false},
		{"txt", FormatText, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q): expected error=%v, got %v", tt.in, tt.err, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"", Blank},
		{"A. Expected return", Option},
		{"D. None", Option},
		{"IV. Fourth", Option},
		{"c. lower option", Option},
		{"i) first part", SubQuestion},
		{"iii) third part", SubQuestion},
		{"E. not an option", Plain},
		{"Q. 1) Stem", Plain},
		{"iv) not matched as sub-question", Plain},
	}
	for _, tt := range tests {
		if got := Classify(tt.line); got != tt.want {
			t.Errorf("Classify(%q): expected %d, got %d", tt.line, tt.want, got)
		}
	}
}

func TestLines_Trims(t *testing.T) {
	lines := Lines("  Q. 1) Stem  \n   A. one\n\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0].Text != "Q. 1) Stem" || lines[1].Kind != Option || lines[2].Kind != Blank {
		t.Errorf("unexpected lines %+v", lines)
	}
}

func TestHeader(t *testing.T) {
	q := paper.Question{Number: 7, Year: "2023", Marks: paper.Unknown}
	want := "Question 7 (Year: 2023) - [Unknown marks]"
	if got := Header(q); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatMarkdown, assigned(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "# Chapter-wise Question Workbook\n") {
		t.Errorf("expected title first, got %q", out)
	}
	ch2 := strings.Index(out, "## Chapter 2")
	ch10 := strings.Index(out, "## Chapter 10")
	misc := strings.Index(out, "## Misc")
	if ch2 < 0 || ch10 < 0 || misc < 0 || !(ch2 < ch10 && ch10 < misc) {
		t.Errorf("expected chapters in natural order, got %q", out)
	}
	if strings.Contains(out, "Unassigned question text") {
		t.Error("expected unassigned question to be left out")
	}
	if !strings.Contains(out, `### Question 1 (Year: 2024) - \[4 marks\]`) {
		t.Errorf("expected escaped question header, got %q", out)
	}
	if !strings.Contains(out, "- A. risk\n- B. return\n") {
		t.Errorf("expected options as list items, got %q", out)
	}
	if !strings.Contains(out, "**i) State CAPM.**") {
		t.Errorf("expected bold sub-question, got %q", out)
	}
}

func TestRender_Empty(t *testing.T) {
	qs := []paper.Question{{Number: 1, Content: "Q. 1) text", Chapter: paper.SelectPlaceholder}}
	for _, f := range []Format{FormatMarkdown, FormatHTML, FormatText} {
		var buf bytes.Buffer
		if err := Render(&buf, f, qs, Options{}); err != nil {
			t.Fatalf("%s: unexpected error: %v", f, err)
		}
		if !strings.Contains(buf.String(), EmptyNotice) {
			t.Errorf("%s: expected empty notice, got %q", f, buf.String())
		}
		if strings.Contains(buf.String(), "Q. 1) text") {
			t.Errorf("%s: expected no question content", f)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatHTML, assigned(), Options{Title: "CS1 <Workbook>"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<title>CS1 &lt;Workbook&gt;</title>") {
		t.Errorf("expected escaped title, got %q", out)
	}
	if !strings.Contains(out, "<h2>Chapter 2</h2>") {
		t.Errorf("expected chapter heading, got %q", out)
	}
	if !strings.Contains(out, "<strong>i) State CAPM.</strong>") {
		t.Errorf("expected bold sub-question, got %q", out)
	}
	if !strings.Contains(out, "<li>A. risk</li>") {
		t.Errorf("expected option list item, got %q", out)
	}
	if !strings.Contains(out, "[4 marks]") {
		t.Errorf("expected literal marks header, got %q", out)
	}
}

func TestRenderText_Latin1(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatText, assigned(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.Bytes()
	// é is representable in Latin-1 (0xE9); the arrow is not.
	if !bytes.Contains(out, []byte("Caf\xe9 owner's surplus ? ruin. [3]")) {
		t.Errorf("expected latin-1 substitution, got %q", out)
	}
	if !bytes.Contains(out, []byte("\n    A. risk\n")) {
		t.Errorf("expected indented option, got %q", out)
	}
}

func TestLatin1(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"naïve", "na\xefve"},
		{"σ² → ∞", "?\xb2 ? ?"},
		{"bad\xffbyte", "bad?byte"},
	}
	for _, tt := range tests {
		if got := string(Latin1(tt.in)); got != tt.want {
			t.Errorf("Latin1(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRenderDOCX(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatDOCX, assigned(), Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("parse rendered docx: %v", err)
	}

	var paras []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paras = append(paras, p.String())
		}
	}
	text := strings.Join(paras, "\n")
	for _, want := range []string{
		DefaultTitle,
		"Chapter 2",
		"Question 3 (Year: 2024) - [6 marks]",
		"\tA. risk",
		"i) State CAPM.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected docx to contain %q, got %q", want, text)
		}
	}
}
