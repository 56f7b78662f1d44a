package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/go-chi/chi/v5"
)

// stateUpdate is a partial State change; nil fields are left alone.
type stateUpdate struct {
	CurrentPage       *int     `json:"current_page"`
	AddConcepts       []string `json:"add_concepts"`
	TranscriptSummary *string  `json:"transcript_summary"`
	QuizActive        *bool    `json:"quiz_active"`
}

func (u stateUpdate) apply(sess *session.Session, st *session.State) error {
	if u.CurrentPage != nil {
		if err := st.SetPage(*u.CurrentPage, sess.TotalPages); err != nil {
			return err
		}
	}
	for _, c := range u.AddConcepts {
		st.AddConcept(c)
	}
	if u.TranscriptSummary != nil {
		st.SetTranscriptSummary(*u.TranscriptSummary)
	}
	if u.QuizActive != nil {
		if *u.QuizActive {
			st.StartQuiz()
		} else {
			st.EndQuiz()
		}
	}
	return nil
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r, chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State)
}

func (s *Server) handleUpdateState(w http.ResponseWriter, r *http.Request) {
	var u stateUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	st, ok := s.updateState(w, r, u.apply)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	_, ok := s.updateState(w, r, func(_ *session.Session, st *session.State) error {
		st.StartQuiz()
		return nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "quiz_started",
		"session_id": chi.URLParam(r, "sessionID"),
		"message":    "Quiz mode activated. The tutor will now ask conceptual questions.",
	})
}

func (s *Server) handleQuizEnd(w http.ResponseWriter, r *http.Request) {
	var wasActive bool
	_, ok := s.updateState(w, r, func(_ *session.Session, st *session.State) error {
		wasActive = st.QuizActive
		st.EndQuiz()
		return nil
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "quiz_ended",
		"session_id": chi.URLParam(r, "sessionID"),
		"was_active": wasActive,
	})
}

// updateState applies fn to the URL's session, writing the error response
// itself when ok is false.
func (s *Server) updateState(w http.ResponseWriter, r *http.Request, fn func(*session.Session, *session.State) error) (session.State, bool) {
	id := chi.URLParam(r, "sessionID")
	st, err := s.sessions.UpdateState(r.Context(), id, fn)
	switch {
	case err == nil:
		return st, true
	case errors.Is(err, session.ErrNotFound):
		jsonError(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, session.ErrPageOutOfRange):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("update session state", "session_id", id, "error", err)
		jsonError(w, "failed to update session", http.StatusInternalServerError)
	}
	return session.State{}, false
}
