package outline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/learnaloud/internal/document"
)

// Section is a heading found in the document.
type Section struct {
	Heading string `json:"heading"`
	Page    int    `json:"page"`
	Level   int    `json:"level"`
}

// Outline is the structural summary of one document. It is derived once and
// never mutated afterwards.
type Outline struct {
	Sections []Section `json:"sections"`
	Figures  []Figure  `json:"figures"`
	KeyTerms []string  `json:"key_terms"`
	Abstract string    `json:"abstract"`
}

func emptyOutline() Outline {
	return Outline{
		Sections: []Section{},
		Figures:  []Figure{},
		KeyTerms: []string{},
	}
}

// Matches Unicode spacing too, so a no-break space after the marker is dropped.
var abstractRe = regexp.MustCompile(`(?i)abstract[\s\p{Z}]*`)

// Build derives the outline of doc. Headings are spans set noticeably larger
// than the document's median font size; key terms are bold spans at body size.
func Build(doc *document.Document, cfg Config) (Outline, error) {
	if err := doc.Validate(); err != nil {
		return Outline{}, fmt.Errorf("build outline: %w", err)
	}
	out := emptyOutline()
	if doc.SpanCount() == 0 {
		return out, nil
	}

	median := MedianFontSize(doc)
	headingMin := median * cfg.HeadingRatio
	level1Min := median * cfg.Level1Ratio

	terms := newTermCounter()
	headingKeys := make(map[string]bool)

	var body strings.Builder
	bodyLen := 0
	bodyStarted := false

	for _, page := range doc.Pages {
		for _, span := range page.Spans {
			text := span.Text
			n := utf8.RuneCountInString(text)
			lower := strings.ToLower(text)
			larger := span.FontSize > headingMin

			if larger && n > cfg.MinTextLen && n < cfg.MaxHeadingLen && !containsAny(lower, headingStopwords) {
				level := 2
				if span.FontSize > level1Min {
					level = 1
				}
				out.Sections = append(out.Sections, Section{Heading: text, Page: page.PageNum, Level: level})
				headingKeys[lower] = true
			}

			if isBold(span.FontName) && !larger && n > cfg.MinTextLen && n < cfg.MaxKeyTermLen {
				if term := cleanTerm(text); term != "" {
					terms.add(term)
				}
			}

			if !bodyStarted && strings.HasPrefix(lower, "abstract") {
				bodyStarted = true
			}
			if bodyStarted && bodyLen < cfg.AbstractBufferLen {
				if body.Len() > 0 {
					body.WriteByte(' ')
					bodyLen++
				}
				body.WriteString(text)
				bodyLen += n
			}
		}
	}

	for _, term := range terms.ranked() {
		if len(out.KeyTerms) >= cfg.MaxKeyTerms {
			break
		}
		if headingKeys[strings.ToLower(term)] {
			continue
		}
		out.KeyTerms = append(out.KeyTerms, term)
	}

	out.Abstract = extractAbstract(body.String(), cfg.AbstractMaxLen)

	for _, page := range doc.Pages {
		out.Figures = append(out.Figures, LabelFigures(page, cfg)...)
	}
	return out, nil
}

// MedianFontSize returns the lower median of every span's font size, or 0
// for a document without spans.
func MedianFontSize(doc *document.Document) float64 {
	var sizes []float64
	if doc != nil {
		for _, p := range doc.Pages {
			for _, s := range p.Spans {
				sizes = append(sizes, s.FontSize)
			}
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}

func isBold(fontName string) bool {
	f := strings.ToLower(fontName)
	return strings.Contains(f, "bold") || strings.Contains(f, "black")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// cleanTerm strips surrounding punctuation and rejects empty or numeric terms.
func cleanTerm(text string) string {
	term := strings.Trim(text, ".,;:()[]")
	if term == "" {
		return ""
	}
	for _, r := range term {
		if !unicode.IsDigit(r) {
			return term
		}
	}
	return ""
}

func extractAbstract(body string, maxLen int) string {
	if loc := abstractRe.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
	}
	return truncateRunes(body, maxLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// termCounter counts occurrences while remembering first-seen order, so that
// ranking does not depend on map iteration or sort stability.
type termCounter struct {
	counts map[string]int
	first  map[string]int
	order  []string
}

func newTermCounter() *termCounter {
	return &termCounter{counts: make(map[string]int), first: make(map[string]int)}
}

func (c *termCounter) add(term string) {
	if _, ok := c.counts[term]; !ok {
		c.first[term] = len(c.order)
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

// ranked orders terms by count descending, then first appearance.
func (c *termCounter) ranked() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	sort.Slice(out, func(i, j int) bool {
		ci, cj := c.counts[out[i]], c.counts[out[j]]
		if ci != cj {
			return ci > cj
		}
		return c.first[out[i]] < c.first[out[j]]
	})
	return out
}
