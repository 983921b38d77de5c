// Package session holds uploaded papers and their questions while chapters
// are assigned.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrIndex    = errors.New("question index out of range")
	// ErrReserved is returned for chapter labels that name a view filter.
	ErrReserved = errors.New("chapter label is reserved")
)

// CheckLabel rejects the labels All and Unassigned, which the question view
// uses as filters.
func CheckLabel(label string) error {
	switch strings.TrimSpace(label) {
	case All, Unassigned:
		return fmt.Errorf("%w: %q", ErrReserved, strings.TrimSpace(label))
	}
	return nil
}

// CheckRules applies CheckLabel to every rule.
func CheckRules(rules []chapter.Rule) error {
	for _, r := range rules {
		if err := CheckLabel(r.Label); err != nil {
			return err
		}
	}
	return nil
}

// Session is one paper's question list. All edits go through its methods so
// a session has a single writer at a time.
type Session struct {
	mu sync.Mutex
	// saveMu orders writes to the persister.
	saveMu sync.Mutex

	ID          string
	Filename    string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	questions []paper.Question
}

// New starts a session with a fresh ID. The session owns questions from now on.
func New(filename, contentHash string, questions []paper.Question) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
		questions:   questions,
	}
}

// Snapshot is a JSON-safe copy of a session.
type Snapshot struct {
	ID          string           `json:"paper_id"`
	Filename    string           `json:"filename"`
	ContentHash string           `json:"content_hash,omitempty"`
	Questions   []paper.Question `json:"questions"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FromSnapshot rebuilds a session, e.g. after loading it from disk.
func FromSnapshot(snap Snapshot) *Session {
	return &Session{
		ID:          snap.ID,
		Filename:    snap.Filename,
		ContentHash: snap.ContentHash,
		CreatedAt:   snap.CreatedAt,
		UpdatedAt:   snap.UpdatedAt,
		questions:   append([]paper.Question(nil), snap.Questions...),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		Filename:    s.Filename,
		ContentHash: s.ContentHash,
		Questions:   s.copyQuestions(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Questions returns a copy of the question list in session order.
func (s *Session) Questions() []paper.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyQuestions()
}

func (s *Session) copyQuestions() []paper.Question {
	out := make([]paper.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// SetChapter tags the question at idx. An empty label or the picker
// placeholder clears the tag.
func (s *Session) SetChapter(idx int, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.questions) {
		return fmt.Errorf("%w: %d", ErrIndex, idx)
	}
	label = strings.TrimSpace(label)
	if label == paper.SelectPlaceholder {
		label = ""
	}
	if err := CheckLabel(label); err != nil {
		return err
	}
	s.questions[idx].Chapter = label
	s.touch()
	return nil
}

// Assign applies keyword rules and returns how many questions gained a
// chapter they did not have before. Rules with a reserved label are rejected
// before any question changes.
func (s *Session) Assign(rules []chapter.Rule) (int, error) {
	if err := CheckRules(rules); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := chapter.ProgressOf(s.questions).Assigned
	chapter.Assign(s.questions, rules)
	s.touch()
	return chapter.ProgressOf(s.questions).Assigned - before, nil
}

// Reset clears every chapter assignment.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	chapter.Reset(s.questions)
	s.touch()
}

// Info is a paper listing entry without its questions.
type Info struct {
	ID        string    `json:"paper_id"`
	Filename  string    `json:"filename"`
	Questions int       `json:"questions"`
	Assigned  int       `json:"assigned"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.ID,
		Filename:  s.Filename,
		Questions: len(s.questions),
		Assigned:  chapter.ProgressOf(s.questions).Assigned,
		UpdatedAt: s.UpdatedAt,
	}
}

func (s *Session) Progress() chapter.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chapter.ProgressOf(s.questions)
}

func (s *Session) Summary() []chapter.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return chapter.Summarize(s.questions)
}
