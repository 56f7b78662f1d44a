package parser

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// ValidateFile checks that path is a structurally readable PDF.
func ValidateFile(path string) error {
	if err := api.ValidateFile(path, relaxedConfig()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return nil
}

// PageCount returns the number of pages without extracting any content.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return n, nil
}
