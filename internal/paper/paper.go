package paper

// Unknown is recorded when marks or year cannot be resolved.
const Unknown = "Unknown"

// Page is one page of source text, in reading order.
type Page struct {
	Index int    // 1-based page number
	Text  string // Extracted text (empty if the page yielded none)
}

// Question is a single exam question cut out of a paper.
type Question struct {
	Number  int    `json:"question_number"`
	Preview string `json:"question_preview"` // First meaningful line, max 150 runes + "..."
	Content string `json:"complete_content"` // Cleaned span text
	Marks   string `json:"marks"`            // Digits from a trailing [N], or Unknown
	Chapter string `json:"chapter"`          // Empty until assigned
	Year    string `json:"year"`             // Document-wide year, or Unknown
	Page    int    `json:"page"`             // Page owning the question marker
}

// Assigned reports whether the question carries a chapter label.
func (q Question) Assigned() bool {
	return q.Chapter != "" && q.Chapter != SelectPlaceholder
}

// SelectPlaceholder is the label shown by pickers before a chapter is chosen.
// It counts as unassigned everywhere.
const SelectPlaceholder = "-- Select Chapter --"
