package api

import (
	"net/http"
	"strings"

	"github.com/dgallion1/learnaloud/internal/export"
	"github.com/dgallion1/learnaloud/internal/references"
	"github.com/dgallion1/learnaloud/internal/search"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
		Page      *int   `json:"page"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, ok := s.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}
	page := 1
	if req.Page != nil {
		page = *req.Page
	}
	pos, err := search.FindTextPosition(sess.Document, req.Text, page)
	if err != nil {
		s.log.Error("search text", "session_id", sess.ID, "error", err)
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// handleOutline answers with the outline as JSON, or with a rendered study
// sheet when format is markdown or html.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, sess.Outline)
		return
	}

	refs, err := references.List(sess.Document)
	if err != nil {
		s.log.Error("list references", "session_id", sess.ID, "error", err)
		jsonError(w, "failed to list references", http.StatusInternalServerError)
		return
	}

	switch format {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(export.Markdown(sess, refs))
	case "html":
		page, err := export.HTMLPage(sess, refs)
		if err != nil {
			s.log.Error("render study sheet", "session_id", sess.ID, "error", err)
			jsonError(w, "failed to render study sheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	default:
		jsonError(w, "unsupported format: "+format, http.StatusBadRequest)
	}
}

func (s *Server) handlePaperContext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	st := sess.State
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":         sess.ID,
		"filename":           sess.Filename,
		"total_pages":        sess.TotalPages,
		"current_page":       st.CurrentPage,
		"outline":            sess.Outline,
		"discussed_concepts": st.DiscussedConcepts,
		"transcript_summary": st.TranscriptSummary,
		"quiz_active":        st.QuizActive,
	})
}
