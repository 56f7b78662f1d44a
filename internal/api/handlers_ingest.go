package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/learnaloud/internal/arxiv"
	"github.com/dgallion1/learnaloud/internal/parser"
	"github.com/dgallion1/learnaloud/internal/pipeline"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrNotMultipart):
			jsonError(w, "No file provided", http.StatusBadRequest)
		default:
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" || !parser.IsSupportedExtension(header.Filename) {
		jsonError(w, "Only PDF files are accepted", http.StatusBadRequest)
		return
	}
	filename := sanitizeFilename(header.Filename)

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	s.runJob(w, r, pipeline.NewUploadJob(filename, data), true)
}

func (s *Server) handleLibrarianDownload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArxivID string `json:"arxiv_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	id := strings.TrimSpace(req.ArxivID)
	if id == "" {
		jsonError(w, "arxiv_id is required", http.StatusBadRequest)
		return
	}
	if err := arxiv.ValidateID(id); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.runJob(w, r, pipeline.NewArxivJob(id), false)
}

// runJob submits job and, unless ?async=true, waits for it and answers with
// the new session.
func (s *Server) runJob(w http.ResponseWriter, r *http.Request, job *pipeline.Job, withOutline bool) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if r.URL.Query().Get("async") == "true" {
		snap := job.Snapshot()
		writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id":     snap.ID,
			"session_id": snap.SessionID,
			"status":     snap.Status,
			"poll_url":   fmt.Sprintf("/api/ingest/%s/status", snap.ID),
		})
		return
	}

	snap, err := s.orchestrator.Wait(r.Context(), job.ID)
	if err != nil {
		jsonError(w, "processing interrupted: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	if snap.Status != pipeline.StatusCompleted {
		code := http.StatusInternalServerError
		if snap.Phase == "downloading" {
			code = http.StatusBadGateway
		}
		jsonError(w, "Failed to process PDF: "+strings.Join(snap.Progress.Errors, "; "), code)
		return
	}

	sess, ok := s.loadSession(w, r, snap.SessionID)
	if !ok {
		return
	}
	resp := map[string]any{
		"session_id":  sess.ID,
		"job_id":      snap.ID,
		"filename":    sess.Filename,
		"total_pages": sess.TotalPages,
	}
	if withOutline {
		resp["outline"] = sess.Outline
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleServePDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	f, err := s.uploads.Open(sess.ID)
	if err != nil {
		s.log.Error("open stored pdf", "session_id", sess.ID, "error", err)
		jsonError(w, "PDF file not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		jsonError(w, "PDF file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sess.Filename))
	http.ServeContent(w, r, sess.Filename, info.ModTime(), f)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		jsonError(w, "failed to delete session", http.StatusInternalServerError)
		return
	}
	if err := s.uploads.Remove(sess.ID); err != nil {
		s.log.Warn("remove stored pdf", "session_id", sess.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "session_id": sess.ID})
}

// loadSession writes the error response itself when ok is false.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request, id string) (*session.Session, bool) {
	if id == "" {
		jsonError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		jsonError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("load session", "session_id", id, "error", err)
		jsonError(w, "failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// decodeJSON writes a 400 and returns false when the body is not a JSON object.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "JSON body required", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed.pdf"
	}
	return name
}
