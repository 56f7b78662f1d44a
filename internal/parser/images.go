package parser

import (
	"math"

	"github.com/dgallion1/learnaloud/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n (m applied first).
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// unitSquare maps the image space unit square through m and returns its
// bounding rectangle in user space.
func (m matrix) unitSquare() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return
}

// imageTracker follows the graphics state through a content stream and
// records where Image XObjects are painted.
type imageTracker struct {
	box    pageBox
	ctm    matrix
	stack  []matrix
	images []document.ImageBlock
}

func newImageTracker(box pageBox) *imageTracker {
	return &imageTracker{box: box, ctm: identity, images: []document.ImageBlock{}}
}

func (t *imageTracker) save() { t.stack = append(t.stack, t.ctm) }

func (t *imageTracker) restore() {
	if n := len(t.stack); n > 0 {
		t.ctm = t.stack[n-1]
		t.stack = t.stack[:n-1]
	}
}

func (t *imageTracker) concat(m matrix) { t.ctm = m.mul(t.ctm) }

// paint records an image drawn with the current CTM unless it is too small
// to be anything but decoration.
func (t *imageTracker) paint() {
	bbox := t.box.toPage(t.ctm.unitSquare())
	if bbox.Width() <= document.MinImageSide || bbox.Height() <= document.MinImageSide {
		return
	}
	t.images = append(t.images, document.ImageBlock{BBox: bbox})
}

// imageBlocks walks the page content and returns the placement of every
// Image XObject it paints.
func imageBlocks(pg pdflib.Page, box pageBox) []document.ImageBlock {
	xobjects := pg.Resources().Key("XObject")
	t := newImageTracker(box)
	if xobjects.Kind() != pdflib.Dict {
		return t.images
	}

	handle := func(stk *pdflib.Stack, op string) {
		n := stk.Len()
		args := make([]pdflib.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "q":
			t.save()
		case "Q":
			t.restore()
		case "cm":
			if len(args) != 6 {
				return
			}
			var m matrix
			for i := range m {
				m[i] = args[i].Float64()
			}
			t.concat(m)
		case "Do":
			if len(args) != 1 {
				return
			}
			xo := xobjects.Key(args[0].Name())
			if xo.Key("Subtype").Name() == "Image" {
				t.paint()
			}
		}
	}

	contents := pg.V.Key("Contents")
	switch {
	case contents.IsNull():
	case contents.Kind() == pdflib.Array:
		for i := 0; i < contents.Len(); i++ {
			pdflib.Interpret(contents.Index(i), handle)
		}
	default:
		pdflib.Interpret(contents, handle)
	}
	return t.images
}
