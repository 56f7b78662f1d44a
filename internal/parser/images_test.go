package parser

import (
	"testing"

	"github.com/dgallion1/learnaloud/internal/document"
)

func TestMatrix_MulAppliesLeftFirst(t *testing.T) {
	scale := matrix{100, 0, 0, 50, 0, 0}
	translate := matrix{1, 0, 0, 1, 100, 100}
	x, y := scale.mul(translate).apply(1, 1)
	if x != 200 || y != 150 {
		t.Errorf("expected (200, 150), got (%v, %v)", x, y)
	}
}

func TestMatrix_UnitSquareRotated(t *testing.T) {
	// 90 degree rotation scaled to 40x60, then moved to (100, 200).
	m := matrix{0, 40, -60, 0, 100, 200}
	minX, minY, maxX, maxY := m.unitSquare()
	if minX != 40 || maxX != 100 || minY != 200 || maxY != 240 {
		t.Errorf("unexpected rect (%v,%v)-(%v,%v)", minX, minY, maxX, maxY)
	}
}

func TestImageTracker_PaintAndRestore(t *testing.T) {
	tr := newImageTracker(letterBox)

	tr.save()
	tr.concat(matrix{200, 0, 0, 100, 50, 500})
	tr.paint()
	tr.restore()

	// Identity CTM paints a 1x1 image, which is decoration.
	tr.paint()

	if len(tr.images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(tr.images))
	}
	want := document.BBox{50, 192, 250, 292}
	if tr.images[0].BBox != want {
		t.Errorf("expected %v, got %v", want, tr.images[0].BBox)
	}
}

func TestImageTracker_NestedTransforms(t *testing.T) {
	tr := newImageTracker(letterBox)
	tr.save()
	tr.concat(matrix{1, 0, 0, 1, 100, 100})
	tr.save()
	tr.concat(matrix{100, 0, 0, 50, 0, 0})
	tr.paint()
	tr.restore()
	tr.restore()
	tr.restore() // unbalanced Q is ignored

	want := document.BBox{100, 792 - 150, 200, 792 - 100}
	if len(tr.images) != 1 || tr.images[0].BBox != want {
		t.Errorf("expected [%v], got %+v", want, tr.images)
	}
	if tr.ctm != identity {
		t.Errorf("expected identity CTM after restores, got %v", tr.ctm)
	}
}

func TestImageTracker_MinimumSide(t *testing.T) {
	tests := []struct {
		w, h float64
		kept bool
	}{
		{30, 100, false},
		{100, 30, false},
		{31, 31, true},
		{500, 400, true},
	}
	for _, tt := range tests {
		tr := newImageTracker(letterBox)
		tr.concat(matrix{tt.w, 0, 0, tt.h, 10, 10})
		tr.paint()
		if got := len(tr.images) == 1; got != tt.kept {
			t.Errorf("%vx%v: expected kept=%v, got %v", tt.w, tt.h, tt.kept, got)
		}
	}
}
