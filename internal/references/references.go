// Package references segments the bibliography of a document into numbered,
// page-anchored entries and resolves citations against them.
package references

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/learnaloud/internal/document"
)

// Reference is one bibliography entry. Page and BBox belong to the span that
// opened the entry even when its text continues onto later spans.
type Reference struct {
	Number int           `json:"number"`
	Text   string        `json:"text"`
	Page   int           `json:"page"`
	BBox   document.BBox `json:"bbox"`
}

// Citation is the result of FindCitation. When Found is false only Query is set.
type Citation struct {
	Found bool `json:"found"`
	*Reference
	Query string `json:"reference"`
}

// MarshalJSON writes the reference fields on a hit and the query on a miss.
func (c Citation) MarshalJSON() ([]byte, error) {
	if c.Found && c.Reference != nil {
		return json.Marshal(struct {
			Found bool `json:"found"`
			Reference
		}{true, *c.Reference})
	}
	return json.Marshal(struct {
		Found bool   `json:"found"`
		Query string `json:"reference"`
	}{false, c.Query})
}

var (
	entryRe   = regexp.MustCompile(`^\[(\d+)\]`)
	headerSet = map[string]bool{"references": true, "bibliography": true, "works cited": true}
)

// FallbackPages is how many trailing pages are scanned when no header exists.
const FallbackPages = 2

type located struct {
	page int
	span document.Span
}

// List returns the document's bibliography entries in encounter order.
func List(doc *document.Document) ([]Reference, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	refs := []Reference{}
	var open *Reference
	for _, c := range candidates(doc) {
		if m := entryRe.FindStringSubmatch(c.span.Text); m != nil {
			if open != nil {
				refs = append(refs, *open)
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				n = math.MaxInt
			}
			open = &Reference{Number: n, Text: c.span.Text, Page: c.page, BBox: c.span.BBox}
			continue
		}
		if open != nil {
			open.Text += " " + c.span.Text
		}
	}
	if open != nil {
		refs = append(refs, *open)
	}
	return refs, nil
}

// candidates returns the spans following the first references header, or the
// spans of the last FallbackPages pages when the document has no header.
func candidates(doc *document.Document) []located {
	if doc == nil {
		return nil
	}
	for pi, p := range doc.Pages {
		for si, s := range p.Spans {
			if headerSet[strings.ToLower(strings.TrimSpace(s.Text))] {
				return collect(doc.Pages[pi:], si+1)
			}
		}
	}
	start := len(doc.Pages) - FallbackPages
	if start < 0 {
		start = 0
	}
	return collect(doc.Pages[start:], 0)
}

// collect flattens pages starting at span index first of the first page.
func collect(pages []document.Page, first int) []located {
	var out []located
	for i, p := range pages {
		spans := p.Spans
		if i == 0 {
			spans = spans[first:]
		}
		for _, s := range spans {
			out = append(out, located{page: p.PageNum, span: s})
		}
	}
	return out
}

// FindCitation resolves query against the document's references. A query
// that is a number, optionally bracketed and padded, matches by entry number.
// Anything else is a case-insensitive substring match of the query as given,
// so an empty query matches the first entry.
func FindCitation(doc *document.Document, query string) (Citation, error) {
	refs, err := List(doc)
	if err != nil {
		return Citation{}, err
	}
	notFound := Citation{Query: query}

	key := strings.Trim(strings.TrimSpace(query), "[]")
	if isDigits(key) {
		n, err := strconv.Atoi(key)
		if err != nil {
			return notFound, nil
		}
		for i := range refs {
			if refs[i].Number == n {
				return Citation{Found: true, Reference: &refs[i]}, nil
			}
		}
		return notFound, nil
	}

	needle := strings.ToLower(query)
	for i := range refs {
		if strings.Contains(strings.ToLower(refs[i].Text), needle) {
			return Citation{Found: true, Reference: &refs[i]}, nil
		}
	}
	return notFound, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
