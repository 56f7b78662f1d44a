// Package search locates literal text on a page for highlighting.
package search

import (
	"fmt"
	"strings"

	"github.com/dgallion1/learnaloud/internal/document"
)

// Position is where a needle was found. Misses keep Text set to the needle
// and carry no BBox.
type Position struct {
	Found bool           `json:"found"`
	Text  string         `json:"text"`
	BBox  *document.BBox `json:"bbox,omitempty"`
	Page  int            `json:"page"`
}

// FindTextPosition returns the first span on page whose text contains needle,
// ignoring case. An empty needle matches the first span. Only a structurally
// invalid document is an error.
func FindTextPosition(doc *document.Document, needle string, page int) (Position, error) {
	if err := doc.Validate(); err != nil {
		return Position{}, fmt.Errorf("find text position: %w", err)
	}
	miss := Position{Text: needle, Page: page}
	p, ok := doc.Page(page)
	if !ok {
		return miss, nil
	}
	lower := strings.ToLower(needle)
	for _, s := range p.Spans {
		if strings.Contains(strings.ToLower(s.Text), lower) {
			bbox := s.BBox
			return Position{Found: true, Text: s.Text, BBox: &bbox, Page: page}, nil
		}
	}
	return miss, nil
}
