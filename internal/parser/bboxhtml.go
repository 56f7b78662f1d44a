package parser

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/learnaloud/internal/document"
	"golang.org/x/net/html"
)

// bboxWord is one <word> of `pdftotext -bbox` output, already in top-left
// page coordinates.
type bboxWord struct {
	text                   string
	xMin, yMin, xMax, yMax float64
}

func (w bboxWord) height() float64 { return w.yMax - w.yMin }

// parseBBoxHTML reads the XHTML produced by `pdftotext -bbox`. Font names are
// not available there, so spans carry an empty FontName and the word height
// as FontSize.
func parseBBoxHTML(r io.Reader, layout Layout) (*document.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bbox html: %w", err)
	}

	doc := &document.Document{Pages: []document.Page{}}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "page" {
			page := document.Page{
				PageNum:     len(doc.Pages) + 1,
				Width:       attrFloat(n, "width"),
				Height:      attrFloat(n, "height"),
				ImageBlocks: []document.ImageBlock{},
			}
			page.Spans = wordsToSpans(collectWords(n), layout)
			doc.Pages = append(doc.Pages, page)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages in pdftotext output", ErrInvalidPDF)
	}
	return doc, nil
}

func collectWords(page *html.Node) []bboxWord {
	var words []bboxWord
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "word" {
			w := bboxWord{
				text: strings.TrimSpace(textContent(n)),
				xMin: attrFloat(n, "xmin"),
				yMin: attrFloat(n, "ymin"),
				xMax: attrFloat(n, "xmax"),
				yMax: attrFloat(n, "ymax"),
			}
			if w.text != "" && w.xMax > w.xMin && w.yMax > w.yMin {
				words = append(words, w)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(page)
	return words
}

// wordsToSpans joins consecutive words on the same line into one span.
func wordsToSpans(words []bboxWord, l Layout) []document.Span {
	spans := []document.Span{}
	var cur *bboxWord
	flush := func() {
		if cur != nil {
			spans = append(spans, document.Span{
				Text:     cur.text,
				BBox:     document.BBox{cur.xMin, cur.yMin, cur.xMax, cur.yMax},
				FontSize: cur.height(),
			})
			cur = nil
		}
	}
	for _, w := range words {
		if cur != nil &&
			math.Abs(w.yMax-cur.yMax) <= l.RowTolerance &&
			math.Abs(w.height()-cur.height()) <= l.RowTolerance &&
			w.xMin-cur.xMax <= l.MaxGapMultiplier*cur.height() &&
			w.xMin >= cur.xMin {
			cur.text += " " + w.text
			cur.xMax = math.Max(cur.xMax, w.xMax)
			cur.yMin = math.Min(cur.yMin, w.yMin)
			cur.yMax = math.Max(cur.yMax, w.yMax)
			continue
		}
		flush()
		w := w
		cur = &w
	}
	flush()
	return spans
}

func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if a.Key == key {
			f, err := strconv.ParseFloat(a.Val, 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
