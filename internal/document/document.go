package document

import (
	"errors"
	"fmt"
)

// MinImageSide is the smallest width and height an image block may have
// to survive extraction. Anything at or below it is treated as decoration.
const MinImageSide = 30.0

// ErrInvalidDocument is matched by every error returned from Validate.
var ErrInvalidDocument = errors.New("invalid document")

// BBox is (x0, y0, x1, y1) with a top-left origin and y growing downward.
type BBox [4]float64

func (b BBox) X0() float64     { return b[0] }
func (b BBox) Y0() float64     { return b[1] }
func (b BBox) X1() float64     { return b[2] }
func (b BBox) Y1() float64     { return b[3] }
func (b BBox) Width() float64  { return b[2] - b[0] }
func (b BBox) Height() float64 { return b[3] - b[1] }

// Document is an extracted PDF. Pages are in physical order and numbered from 1.
type Document struct {
	Pages []Page `json:"pages"`
}

// Page holds the spans and image blocks extracted from one PDF page.
type Page struct {
	PageNum     int          `json:"page_num"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Spans       []Span       `json:"spans"`
	ImageBlocks []ImageBlock `json:"image_blocks"`
}

// Span is a run of text sharing one font, size and bounding box.
type Span struct {
	Text     string  `json:"text"`
	BBox     BBox    `json:"bbox"`
	FontName string  `json:"font"`
	FontSize float64 `json:"size"`
}

// ImageBlock is the placement of an image on a page.
type ImageBlock struct {
	BBox BBox `json:"bbox"`
}

// TotalPages returns the page count, tolerating a nil document.
func (d *Document) TotalPages() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(num int) (Page, bool) {
	if d == nil {
		return Page{}, false
	}
	for _, p := range d.Pages {
		if p.PageNum == num {
			return p, true
		}
	}
	return Page{}, false
}

// SpanCount returns the number of spans across all pages.
func (d *Document) SpanCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Spans)
	}
	return n
}

// ValidationError identifies the field that makes a document unusable.
type ValidationError struct {
	Page   int    // 1-based physical position of the page, 0 if document level
	Span   int    // 0-based span index, -1 if not span level
	Field  string // e.g. "page_num", "spans[].text"
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Span >= 0:
		return fmt.Sprintf("invalid document: page %d span %d: %s: %s", e.Page, e.Span, e.Field, e.Reason)
	case e.Page > 0:
		return fmt.Sprintf("invalid document: page %d: %s: %s", e.Page, e.Field, e.Reason)
	default:
		return fmt.Sprintf("invalid document: %s: %s", e.Field, e.Reason)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDocument
}

// Validate checks the structural invariants every consumer relies on.
// A nil or empty document is valid.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}
	for i, p := range d.Pages {
		pos := i + 1
		if p.PageNum != pos {
			return &ValidationError{Page: pos, Span: -1, Field: "page_num",
				Reason: fmt.Sprintf("expected %d, got %d", pos, p.PageNum)}
		}
		if p.Width <= 0 {
			return &ValidationError{Page: pos, Span: -1, Field: "width", Reason: "must be positive"}
		}
		if p.Height <= 0 {
			return &ValidationError{Page: pos, Span: -1, Field: "height", Reason: "must be positive"}
		}
		for j, s := range p.Spans {
			if s.Text == "" {
				return &ValidationError{Page: pos, Span: j, Field: "spans[].text", Reason: "missing"}
			}
			if s.FontSize <= 0 {
				return &ValidationError{Page: pos, Span: j, Field: "spans[].size", Reason: "must be positive"}
			}
			if err := checkBBox(s.BBox); err != "" {
				return &ValidationError{Page: pos, Span: j, Field: "spans[].bbox", Reason: err}
			}
		}
		for j, img := range p.ImageBlocks {
			if err := checkBBox(img.BBox); err != "" {
				return &ValidationError{Page: pos, Span: -1, Field: fmt.Sprintf("image_blocks[%d].bbox", j), Reason: err}
			}
		}
	}
	return nil
}

func checkBBox(b BBox) string {
	if b.X0() >= b.X1() {
		return "x0 must be less than x1"
	}
	if b.Y0() >= b.Y1() {
		return "y0 must be less than y1"
	}
	return ""
}
