package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/learnaloud/internal/vocalbridge"
)

func (s *Server) handleRemoteStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "remote stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"remotes":     s.stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"jobs":        s.orchestrator.JobCount(),
	})
}

func (s *Server) handleVoiceToken(w http.ResponseWriter, r *http.Request) {
	participant := r.URL.Query().Get("participant")
	if participant == "" {
		participant = "student"
	}
	s.voicePassthrough(w, r, func() ([]byte, error) {
		return s.voice.Token(r.Context(), participant)
	})
}

func (s *Server) handleVoiceAgent(w http.ResponseWriter, r *http.Request) {
	s.voicePassthrough(w, r, func() ([]byte, error) {
		return s.voice.Agent(r.Context())
	})
}

// voicePassthrough relays a VocalBridge response body unchanged.
func (s *Server) voicePassthrough(w http.ResponseWriter, r *http.Request, call func() ([]byte, error)) {
	if s.voice == nil {
		jsonError(w, "voice unavailable", http.StatusServiceUnavailable)
		return
	}
	body, err := call()
	if errors.Is(err, vocalbridge.ErrNotConfigured) {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.log.Error("vocalbridge call", "path", r.URL.Path, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
