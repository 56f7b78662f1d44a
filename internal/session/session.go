// Package session keeps uploaded papers and the mutable tutoring state that
// goes with them.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/learnaloud/internal/document"
	"github.com/dgallion1/learnaloud/internal/outline"
)

// MaxTranscriptSummary is the longest transcript summary kept, in characters.
const MaxTranscriptSummary = 500

var (
	// ErrNotFound is returned by stores for unknown session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrPageOutOfRange is returned when moving to a page the paper lacks.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Session is one uploaded paper. Document and Outline are fixed once the
// session is created; only State changes afterwards.
type Session struct {
	ID         string             `json:"session_id"`
	Filename   string             `json:"filename"`
	FilePath   string             `json:"-"`
	TotalPages int                `json:"total_pages"`
	Document   *document.Document `json:"-"`
	Outline    outline.Outline    `json:"outline"`
	State      State              `json:"state"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// New returns a session positioned on the first page.
func New(id, filename, path string, doc *document.Document, out outline.Outline) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		Filename:   filename,
		FilePath:   path,
		TotalPages: doc.TotalPages(),
		Document:   doc,
		Outline:    out,
		State:      State{CurrentPage: 1, DiscussedConcepts: []string{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a copy whose State can be changed without affecting s.
func (s *Session) Clone() *Session {
	c := *s
	c.State = s.State.Clone()
	return &c
}

// State is what the tutor tracks while a paper is being discussed.
type State struct {
	CurrentPage       int      `json:"current_page"`
	DiscussedConcepts []string `json:"discussed_concepts"`
	TranscriptSummary string   `json:"transcript_summary"`
	QuizActive        bool     `json:"quiz_active"`
}

func (st State) Clone() State {
	st.DiscussedConcepts = slices.Clone(st.DiscussedConcepts)
	if st.DiscussedConcepts == nil {
		st.DiscussedConcepts = []string{}
	}
	return st
}

// SetPage moves to page, which must lie within 1..totalPages.
func (st *State) SetPage(page, totalPages int) error {
	if page < 1 || page > totalPages {
		return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, page, totalPages)
	}
	st.CurrentPage = page
	return nil
}

// AddConcept records a discussed concept. Duplicates are matched without
// regard to case and the first spelling wins. It reports whether the
// concept was new.
func (st *State) AddConcept(concept string) bool {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return false
	}
	for _, c := range st.DiscussedConcepts {
		if strings.EqualFold(c, concept) {
			return false
		}
	}
	st.DiscussedConcepts = append(st.DiscussedConcepts, concept)
	return true
}

// SetTranscriptSummary stores text, cut to MaxTranscriptSummary characters.
func (st *State) SetTranscriptSummary(text string) {
	if utf8.RuneCountInString(text) > MaxTranscriptSummary {
		text = string([]rune(text)[:MaxTranscriptSummary])
	}
	st.TranscriptSummary = text
}

func (st *State) StartQuiz() { st.QuizActive = true }
func (st *State) EndQuiz()   { st.QuizActive = false }
