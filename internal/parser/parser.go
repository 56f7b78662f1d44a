package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/learnaloud/internal/document"
)

// ErrInvalidPDF is returned when the input is not a readable PDF.
var ErrInvalidPDF = errors.New("invalid pdf")

// Parser converts raw document bytes into an extracted Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// Options configures the parsers returned by ForFile and NewPDFParser.
type Options struct {
	Validate          bool
	FallbackPdftotext bool
	// Layout defaults to DefaultLayout when zero.
	Layout Layout
}

// NewPDFParser returns a PDF parser configured from opts.
func NewPDFParser(opts Options) *PDFParser {
	layout := opts.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	return &PDFParser{
		Validate:          opts.Validate,
		FallbackPdftotext: opts.FallbackPdftotext,
		Layout:            layout,
	}
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return NewPDFParser(opts), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
