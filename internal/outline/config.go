// Package outline infers a structural outline (headings, figures, key terms,
// abstract) from the typographic spans of an extracted PDF.
package outline

// Config holds the heuristic thresholds used by Build and LabelFigures.
type Config struct {
	// HeadingRatio: a span is heading-sized when its font size exceeds median*HeadingRatio.
	HeadingRatio float64
	// Level1Ratio: a heading is level 1 when its font size exceeds median*Level1Ratio.
	Level1Ratio float64

	// Headings must be longer than MinTextLen and shorter than MaxHeadingLen characters.
	MinTextLen    int
	MaxHeadingLen int
	// Key terms must be longer than MinTextLen and shorter than MaxKeyTermLen characters.
	MaxKeyTermLen int
	MaxKeyTerms   int

	// AbstractBufferLen stops collecting body text once reached.
	AbstractBufferLen int
	AbstractMaxLen    int

	// CaptionMaxDistance is the exclusive upper bound on the gap between an
	// image's bottom edge and its caption's top edge.
	CaptionMaxDistance float64
}

// DefaultConfig returns the thresholds the outline was tuned with.
func DefaultConfig() Config {
	return Config{
		HeadingRatio:       1.15,
		Level1Ratio:        1.5,
		MinTextLen:         2,
		MaxHeadingLen:      120,
		MaxKeyTermLen:      60,
		MaxKeyTerms:        12,
		AbstractBufferLen:  600,
		AbstractMaxLen:     500,
		CaptionMaxDistance: 50,
	}
}

// headingStopwords mark front-matter boilerplate that is often set large
// but is never a section heading.
var headingStopwords = []string{
	"arxiv:",
	"permission",
	"attribution",
	"hereby grants",
	"http://",
	"https://",
	"doi:",
	"copyright",
	"proceedings of",
	"published in",
}

var captionPrefixes = []string{"figure ", "fig. ", "fig "}
