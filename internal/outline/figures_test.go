package outline

import (
	"testing"

	"github.com/dgallion1/learnaloud/internal/document"
)

func span(text string, y0, y1 float64) document.Span {
	return document.Span{Text: text, BBox: document.BBox{0, y0, 100, y1}, FontName: "Times-Roman", FontSize: 10}
}

func img(y0, y1 float64) document.ImageBlock {
	return document.ImageBlock{BBox: document.BBox{0, y0, 100, y1}}
}

func TestLabelFigures_CaptionWithinDistance(t *testing.T) {
	page := document.Page{
		PageNum: 1, Width: 600, Height: 800,
		Spans:       []document.Span{span("Figure 1: test", 105, 120)},
		ImageBlocks: []document.ImageBlock{img(0, 100)},
	}
	figs := LabelFigures(page, DefaultConfig())
	if len(figs) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(figs))
	}
	if figs[0].Label != "Figure 1: test" {
		t.Errorf("expected label %q, got %q", "Figure 1: test", figs[0].Label)
	}
	if figs[0].Page != 1 {
		t.Errorf("expected page 1, got %d", figs[0].Page)
	}
	if figs[0].BBox != (document.BBox{0, 0, 100, 100}) {
		t.Errorf("expected image bbox, got %v", figs[0].BBox)
	}
}

func TestLabelFigures_CaptionTooFar(t *testing.T) {
	page := document.Page{
		PageNum: 1, Width: 600, Height: 800,
		Spans:       []document.Span{span("Figure 1: test", 200, 215)},
		ImageBlocks: []document.ImageBlock{img(0, 100)},
	}
	figs := LabelFigures(page, DefaultConfig())
	if figs[0].Label != "Unlabeled image 1" {
		t.Errorf("expected %q, got %q", "Unlabeled image 1", figs[0].Label)
	}
}

func TestLabelFigures_DistanceBoundary(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name    string
		capTop  float64
		labeled bool
	}{
		{"touching", 100, true},
		{"just under limit", 149.9, true},
		{"exactly limit", 150, false},
		{"above image bottom", 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := document.Page{
				PageNum: 1, Width: 600, Height: 800,
				Spans:       []document.Span{span("Fig. 2 Results", tt.capTop, tt.capTop+10)},
				ImageBlocks: []document.ImageBlock{img(0, 100)},
			}
			figs := LabelFigures(page, cfg)
			got := figs[0].Label == "Fig. 2 Results"
			if got != tt.labeled {
				t.Errorf("expected labeled=%v, got label %q", tt.labeled, figs[0].Label)
			}
		})
	}
}

func TestLabelFigures_CaptionUsedOnce(t *testing.T) {
	// Both images sit above the same caption; the first image claims it.
	page := document.Page{
		PageNum: 4, Width: 600, Height: 800,
		Spans: []document.Span{
			span("Figure 3: shared", 110, 120),
		},
		ImageBlocks: []document.ImageBlock{img(0, 100), img(50, 105)},
	}
	figs := LabelFigures(page, DefaultConfig())
	if figs[0].Label != "Figure 3: shared" {
		t.Errorf("expected first image labeled, got %q", figs[0].Label)
	}
	if figs[1].Label != "Unlabeled image 1" {
		t.Errorf("expected second image unlabeled, got %q", figs[1].Label)
	}
}

func TestLabelFigures_ClosestCaptionWins(t *testing.T) {
	page := document.Page{
		PageNum: 1, Width: 600, Height: 800,
		Spans: []document.Span{
			span("Figure 9: far", 140, 150),
			span("body text", 101, 104),
			span("fig 8 near", 110, 120),
		},
		ImageBlocks: []document.ImageBlock{img(0, 100)},
	}
	figs := LabelFigures(page, DefaultConfig())
	if figs[0].Label != "fig 8 near" {
		t.Errorf("expected closest caption, got %q", figs[0].Label)
	}
}

func TestLabelFigures_UnlabeledCounterPerPage(t *testing.T) {
	page := document.Page{
		PageNum: 2, Width: 600, Height: 800,
		Spans: []document.Span{
			span("Figure 1: middle", 310, 320),
		},
		ImageBlocks: []document.ImageBlock{img(0, 100), img(200, 300), img(400, 500)},
	}
	figs := LabelFigures(page, DefaultConfig())
	want := []string{"Unlabeled image 1", "Figure 1: middle", "Unlabeled image 2"}
	for i, w := range want {
		if figs[i].Label != w {
			t.Errorf("figure %d: expected %q, got %q", i, w, figs[i].Label)
		}
	}
}

func TestLabelFigures_NoImages(t *testing.T) {
	page := document.Page{PageNum: 1, Width: 600, Height: 800, Spans: []document.Span{span("Figure 1", 0, 10)}}
	figs := LabelFigures(page, DefaultConfig())
	if figs == nil || len(figs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", figs)
	}
}

func TestIsCaption(t *testing.T) {
	tests := map[string]bool{
		"Figure 1: x":  true,
		"FIG. 2":       true,
		"fig 3 shows":  true,
		"Figures":      false,
		"Configure it": false,
		"figure":       false,
	}
	for text, want := range tests {
		if got := IsCaption(text); got != want {
			t.Errorf("IsCaption(%q): expected %v, got %v", text, want, got)
		}
	}
}
