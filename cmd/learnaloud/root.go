package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/learnaloud/internal/config"
	"github.com/dgallion1/learnaloud/internal/document"
	"github.com/dgallion1/learnaloud/internal/parser"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "learnaloud",
	Short: "Inspect research papers the way the tutor sees them",
	Long: `learnaloud runs the paper analyses behind the tutoring server against a
local PDF and prints the result as JSON.

Commands:
  outline  headings, figures, key terms and abstract
  refs     numbered bibliography entries
  cite     resolve one citation against the bibliography
  find     locate text on a page`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("LEARNALOUD_CONFIG"), "YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDocument parses the PDF at path with the configured parser settings.
func loadDocument(path string) (*document.Document, config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cfg, err
	}
	p, err := parser.ForFile(path, parser.Options{
		Validate:          cfg.PDFValidate,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		return nil, cfg, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, cfg, err
	}
	defer f.Close()

	doc, err := p.Parse(f, path)
	if err != nil {
		return nil, cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, cfg, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
