package arxiv

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	maxSummary = 300
	maxAuthors = 3
)

// Paper is one search result.
type Paper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"`
	PDFURL    string   `json:"pdf_url"`
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// parseFeed decodes an arXiv Atom response. Entries without an ID are
// skipped; arXiv returns one such entry to report query errors.
func parseFeed(data []byte) ([]Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse arxiv feed: %w", err)
	}
	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		id := entryID(e.ID)
		if id == "" {
			continue
		}
		p := Paper{
			ID:        id,
			Title:     clean(e.Title),
			Summary:   clean(e.Summary),
			Published: e.Published,
			Authors:   []string{},
		}
		if r := []rune(p.Summary); len(r) > maxSummary {
			p.Summary = string(r[:maxSummary]) + "..."
		}
		if len(p.Published) > 10 {
			p.Published = p.Published[:10]
		}
		for _, a := range e.Authors {
			if len(p.Authors) == maxAuthors {
				break
			}
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		for _, l := range e.Links {
			if l.Title == "pdf" && l.Href != "" {
				p.PDFURL = l.Href
				break
			}
		}
		if p.PDFURL == "" {
			p.PDFURL = DefaultPDFURL + "/" + id + ".pdf"
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// entryID takes the part of an entry URL after "/abs/".
func entryID(raw string) string {
	raw = strings.TrimSpace(raw)
	i := strings.LastIndex(raw, "/abs/")
	if i < 0 {
		return ""
	}
	return raw[i+len("/abs/"):]
}

func clean(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
