package main

import (
	"fmt"

	"github.com/dgallion1/learnaloud/internal/outline"
	"github.com/dgallion1/learnaloud/internal/references"
	"github.com/dgallion1/learnaloud/internal/search"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <pdf>",
	Short: "Print the paper outline",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

var refsCmd = &cobra.Command{
	Use:   "refs <pdf>",
	Short: "List bibliography entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefs,
}

var citeCmd = &cobra.Command{
	Use:   "cite <pdf> <reference>",
	Short: "Resolve a citation such as [12] or an author name",
	Args:  cobra.ExactArgs(2),
	RunE:  runCite,
}

var findCmd = &cobra.Command{
	Use:   "find <pdf> <text>",
	Short: "Locate text on a page",
	Args:  cobra.ExactArgs(2),
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(outlineCmd, refsCmd, citeCmd, findCmd)
	findCmd.Flags().Int("page", 1, "page to search")
}

func runOutline(cmd *cobra.Command, args []string) error {
	doc, cfg, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	out, err := outline.Build(doc, cfg.Outline)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{
		"total_pages": doc.TotalPages(),
		"outline":     out,
	})
}

func runRefs(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	refs, err := references.List(doc)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{
		"references": refs,
		"count":      len(refs),
	})
}

func runCite(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	c, err := references.FindCitation(doc, args[1])
	if err != nil {
		return err
	}
	return printJSON(cmd, c)
}

func runFind(cmd *cobra.Command, args []string) error {
	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return err
	}
	doc, _, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	if page < 1 || page > doc.TotalPages() {
		return fmt.Errorf("page %d out of range 1..%d", page, doc.TotalPages())
	}
	pos, err := search.FindTextPosition(doc, args[1], page)
	if err != nil {
		return err
	}
	return printJSON(cmd, pos)
}
