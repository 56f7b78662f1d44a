package outline

import (
	"fmt"
	"strings"

	"github.com/dgallion1/learnaloud/internal/document"
)

// Figure is an image block with the caption (or placeholder) that labels it.
type Figure struct {
	Label string        `json:"label"`
	Page  int           `json:"page"`
	BBox  document.BBox `json:"bbox"`
}

// IsCaption reports whether text reads like a figure caption.
func IsCaption(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range captionPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// LabelFigures pairs each image block on the page with the closest caption
// below it. Images are visited in page order and each caption is used at most
// once; images left without a caption get "Unlabeled image k".
func LabelFigures(page document.Page, cfg Config) []Figure {
	if len(page.ImageBlocks) == 0 {
		return []Figure{}
	}

	var captions []document.Span
	for _, s := range page.Spans {
		if IsCaption(s.Text) {
			captions = append(captions, s)
		}
	}
	used := make([]bool, len(captions))

	figures := make([]Figure, 0, len(page.ImageBlocks))
	for _, img := range page.ImageBlocks {
		best := -1
		bestDist := 0.0
		for i, c := range captions {
			if used[i] {
				continue
			}
			dist := c.BBox.Y0() - img.BBox.Y1()
			if dist < 0 {
				continue
			}
			if best < 0 || dist < bestDist {
				best, bestDist = i, dist
			}
		}

		fig := Figure{Page: page.PageNum, BBox: img.BBox}
		if best >= 0 && bestDist < cfg.CaptionMaxDistance {
			used[best] = true
			fig.Label = captions[best].Text
		}
		figures = append(figures, fig)
	}

	unlabeled := 0
	for i := range figures {
		if figures[i].Label == "" {
			unlabeled++
			figures[i].Label = fmt.Sprintf("Unlabeled image %d", unlabeled)
		}
	}
	return figures
}
