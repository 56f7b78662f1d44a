package parser

import (
	"math"
	"strings"
	"unicode"

	"github.com/dgallion1/learnaloud/internal/document"
	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Layout controls how glyphs are merged into spans.
type Layout struct {
	RowTolerance        float64 // max baseline drift (pt) within one span
	MaxGapMultiplier    float64 // gaps wider than this × font size end the span
	WordSpaceMultiplier float64 // gaps wider than this × font size insert a space
}

// DefaultLayout returns the grouping thresholds used for text PDFs.
func DefaultLayout() Layout {
	return Layout{
		RowTolerance:        2.0,
		MaxGapMultiplier:    3.0,
		WordSpaceMultiplier: 0.25,
	}
}

// pageBox is a MediaBox in PDF user space (bottom-left origin).
type pageBox struct {
	llx, lly, urx, ury float64
}

var letterBox = pageBox{0, 0, 612, 792}

func (b pageBox) width() float64  { return b.urx - b.llx }
func (b pageBox) height() float64 { return b.ury - b.lly }

// toPage converts a user-space rectangle into top-left page coordinates.
func (b pageBox) toPage(minX, minY, maxX, maxY float64) document.BBox {
	return document.BBox{minX - b.llx, b.ury - maxY, maxX - b.llx, b.ury - minY}
}

const maxParentDepth = 32

// mediaBox returns the page's MediaBox, following /Parent for inherited
// values and defaulting to US Letter.
func mediaBox(pg pdflib.Page) pageBox {
	v := pg.V
	for depth := 0; depth < maxParentDepth && !v.IsNull(); depth++ {
		if b, ok := parseBox(v.Key("MediaBox")); ok {
			return b
		}
		v = v.Key("Parent")
	}
	return letterBox
}

func parseBox(v pdflib.Value) (pageBox, bool) {
	if v.Kind() != pdflib.Array || v.Len() != 4 {
		return pageBox{}, false
	}
	b := pageBox{v.Index(0).Float64(), v.Index(1).Float64(), v.Index(2).Float64(), v.Index(3).Float64()}
	if b.llx > b.urx {
		b.llx, b.urx = b.urx, b.llx
	}
	if b.lly > b.ury {
		b.lly, b.ury = b.ury, b.lly
	}
	if b.width() <= 0 || b.height() <= 0 {
		return pageBox{}, false
	}
	return b, true
}

// run is a span under construction, in user space.
type run struct {
	font     string
	size     float64
	baseline float64
	x0, x1   float64
	text     strings.Builder
	space    bool // whitespace seen since the last glyph
}

func (r *run) accepts(t pdflib.Text, size float64, l Layout) bool {
	if t.Font != r.font || math.Abs(size-r.size) > 0.01 {
		return false
	}
	if math.Abs(t.Y-r.baseline) > l.RowTolerance {
		return false
	}
	gap := t.X - r.x1
	return gap <= l.MaxGapMultiplier*r.size && gap >= -r.size
}

// span finishes the run. NFKC folds ligature glyphs such as "ﬁ" into plain
// letters.
func (r *run) span(box pageBox) (document.Span, bool) {
	text := strings.TrimSpace(norm.NFKC.String(r.text.String()))
	if text == "" {
		return document.Span{}, false
	}
	x1 := r.x1
	if x1 <= r.x0 {
		x1 = r.x0 + r.size/2
	}
	bbox := box.toPage(r.x0, r.baseline-0.2*r.size, x1, r.baseline+0.8*r.size)
	return document.Span{Text: text, BBox: bbox, FontName: r.font, FontSize: r.size}, true
}

// groupSpans merges glyphs, in content-stream order, into spans that share a
// font, size and baseline.
func groupSpans(texts []pdflib.Text, box pageBox, l Layout) []document.Span {
	spans := []document.Span{}
	var cur *run
	flush := func() {
		if cur == nil {
			return
		}
		if s, ok := cur.span(box); ok {
			spans = append(spans, s)
		}
		cur = nil
	}

	for _, t := range texts {
		size := math.Abs(t.FontSize)
		if size == 0 {
			continue
		}
		if isBlank(t.S) {
			if cur != nil {
				cur.space = true
			}
			continue
		}
		if cur != nil && cur.accepts(t, size, l) {
			if cur.space || t.X-cur.x1 > l.WordSpaceMultiplier*cur.size {
				cur.text.WriteByte(' ')
			}
			cur.text.WriteString(t.S)
			cur.x1 = math.Max(cur.x1, t.X+t.W)
			cur.space = false
			continue
		}
		flush()
		cur = &run{font: t.Font, size: size, baseline: t.Y, x0: t.X, x1: t.X + t.W}
		cur.text.WriteString(t.S)
	}
	flush()
	return spans
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
