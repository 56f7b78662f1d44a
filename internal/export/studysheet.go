// Package export renders a session's outline as a Markdown or HTML study sheet.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/dgallion1/learnaloud/internal/references"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown writes the study sheet for sess. refs may be nil.
func Markdown(sess *session.Session, refs []references.Reference) []byte {
	var b bytes.Buffer
	out := sess.Outline

	fmt.Fprintf(&b, "# %s\n\n", escape(sess.Filename))
	fmt.Fprintf(&b, "_%d %s_\n", sess.TotalPages, plural(sess.TotalPages, "page", "pages"))

	if out.Abstract != "" {
		b.WriteString("\n## Abstract\n\n")
		b.WriteString(escape(out.Abstract))
		b.WriteString("\n")
	}

	if len(out.Sections) > 0 {
		b.WriteString("\n## Outline\n\n")
		for _, s := range out.Sections {
			indent := ""
			if s.Level > 1 {
				indent = "  "
			}
			fmt.Fprintf(&b, "%s- %s (p. %d)\n", indent, escape(s.Heading), s.Page)
		}
	}

	if len(out.KeyTerms) > 0 {
		b.WriteString("\n## Key terms\n\n")
		for _, term := range out.KeyTerms {
			fmt.Fprintf(&b, "- **%s**\n", escape(term))
		}
	}

	if len(out.Figures) > 0 {
		b.WriteString("\n## Figures\n\n")
		for _, f := range out.Figures {
			fmt.Fprintf(&b, "- %s (p. %d)\n", escape(f.Label), f.Page)
		}
	}

	if len(refs) > 0 {
		b.WriteString("\n## References\n\n")
		for _, r := range refs {
			fmt.Fprintf(&b, "- %s\n", escape(r.Text))
		}
	}

	st := sess.State
	b.WriteString("\n## Progress\n\n")
	fmt.Fprintf(&b, "Currently on page %d of %d.\n", st.CurrentPage, sess.TotalPages)
	if st.QuizActive {
		b.WriteString("\nA quiz is in progress.\n")
	}
	if len(st.DiscussedConcepts) > 0 {
		b.WriteString("\nDiscussed so far:\n\n")
		for _, c := range st.DiscussedConcepts {
			fmt.Fprintf(&b, "- %s\n", escape(c))
		}
	}
	if st.TranscriptSummary != "" {
		b.WriteString("\n> ")
		b.WriteString(escape(strings.ReplaceAll(st.TranscriptSummary, "\n", " ")))
		b.WriteString("\n")
	}
	return b.Bytes()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))

// HTML renders Markdown to an HTML fragment. Raw HTML in the input is omitted.
func HTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render study sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLPage renders the study sheet for sess as a standalone HTML document.
func HTMLPage(sess *session.Session, refs []references.Reference) ([]byte, error) {
	body, err := HTML(Markdown(sess, refs))
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(sess.Filename))
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes(), nil
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

// escape keeps extracted PDF text from being read as Markdown syntax.
func escape(s string) string {
	return mdEscaper.Replace(strings.TrimSpace(s))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
