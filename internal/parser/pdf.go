package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/dgallion1/learnaloud/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts spans and image blocks from PDF files. It uses the Go
// library first and can fall back to `pdftotext -bbox` if available.
type PDFParser struct {
	// Validate runs pdfcpu validation before extraction.
	Validate          bool
	FallbackPdftotext bool
	Layout            Layout
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "learnaloud-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	return p.ParseFile(tmpPath)
}

// ParseFile extracts a document from a PDF already on disk.
func (p *PDFParser) ParseFile(path string) (*document.Document, error) {
	if p.Validate {
		if err := ValidateFile(path); err != nil {
			return nil, err
		}
	}

	layout := p.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}

	doc, err := extractDocument(path, layout)
	if err != nil && p.FallbackPdftotext {
		doc, err = extractPdftotext(path, layout)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf spans: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("extracted document: %w", err)
	}
	return doc, nil
}

func extractDocument(path string, layout Layout) (*document.Document, error) {
	f, reader, err := openPDF(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	defer f.Close()

	doc := &document.Document{Pages: []document.Page{}}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page, err := extractPage(reader.Page(i), i, layout)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// openPDF recovers from panics the library raises on corrupt xref tables.
func openPDF(path string) (f *os.File, r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("open: %v", rec)
		}
	}()
	return pdflib.Open(path)
}

// extractPage reads one page. Pages whose dictionary is missing still produce
// an empty page so numbering stays contiguous.
func extractPage(pg pdflib.Page, num int, layout Layout) (out document.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	box := mediaBox(pg)
	out = document.Page{
		PageNum:     num,
		Width:       box.width(),
		Height:      box.height(),
		Spans:       []document.Span{},
		ImageBlocks: []document.ImageBlock{},
	}
	if pg.V.IsNull() {
		return out, nil
	}
	out.Spans = groupSpans(pg.Content().Text, box, layout)
	out.ImageBlocks = imageBlocks(pg, box)
	return out, nil
}

func extractPdftotext(path string, layout Layout) (*document.Document, error) {
	cmd := exec.Command("pdftotext", "-bbox", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return parseBBoxHTML(bytes.NewReader(out), layout)
}
