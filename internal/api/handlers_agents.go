package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/learnaloud/internal/arxiv"
	"github.com/dgallion1/learnaloud/internal/references"
	"github.com/go-chi/chi/v5"
)

const maxSearchResults = 50

func (s *Server) handleListReferences(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	refs, err := references.List(sess.Document)
	if err != nil {
		s.log.Error("list references", "session_id", sess.ID, "error", err)
		jsonError(w, "failed to list references", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"references": refs,
		"count":      len(refs),
	})
}

func (s *Server) handleFindCitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Reference string `json:"reference"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, ok := s.loadSession(w, r, req.SessionID)
	if !ok {
		return
	}
	c, err := references.FindCitation(sess.Document, req.Reference)
	if err != nil {
		s.log.Error("find citation", "session_id", sess.ID, "error", err)
		jsonError(w, "failed to find citation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleLibrarianTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": arxiv.Tools()})
}

func (s *Server) handleLibrarianSearch(w http.ResponseWriter, r *http.Request) {
	if s.librarian == nil {
		jsonError(w, "librarian unavailable", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	limit := req.MaxResults
	if limit <= 0 {
		limit = 5
	}
	limit = min(limit, maxSearchResults)

	papers, info, err := s.librarian.Search(r.Context(), query, limit)
	if err != nil {
		s.log.Error("librarian search", "query", query, "error", err)
		jsonError(w, "Search failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"papers":   papers,
		"query":    query,
		"api_info": info,
	})
}

func (s *Server) handlePaperDetails(w http.ResponseWriter, r *http.Request) {
	if s.librarian == nil {
		jsonError(w, "librarian unavailable", http.StatusServiceUnavailable)
		return
	}
	id := chi.URLParam(r, "arxivID")
	if err := arxiv.ValidateID(id); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	paper, err := s.librarian.Lookup(r.Context(), id)
	if errors.Is(err, arxiv.ErrNotFound) {
		jsonError(w, "paper not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("librarian lookup", "arxiv_id", id, "error", err)
		jsonError(w, "Lookup failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}
