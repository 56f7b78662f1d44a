package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/learnaloud/internal/apistats"
	"github.com/dgallion1/learnaloud/internal/arxiv"
	"github.com/dgallion1/learnaloud/internal/config"
	"github.com/dgallion1/learnaloud/internal/pipeline"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/dgallion1/learnaloud/internal/uploads"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Librarian finds papers on arXiv.
type Librarian interface {
	Search(ctx context.Context, query string, maxResults int) ([]arxiv.Paper, arxiv.APIInfo, error)
	Lookup(ctx context.Context, id string) (*arxiv.Paper, error)
}

// Voice issues voice-session credentials.
type Voice interface {
	Token(ctx context.Context, participant string) (json.RawMessage, error)
	Agent(ctx context.Context) (json.RawMessage, error)
}

// Deps are the services behind the HTTP API. Librarian, Voice and Stats are
// optional; their endpoints answer 503 when unset.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Sessions     session.Store
	Uploads      *uploads.Dir
	Librarian    Librarian
	Voice        Voice
	Stats        *apistats.Registry
}

// Server is the HTTP API server for learnaloud.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     session.Store
	uploads      *uploads.Dir
	librarian    Librarian
	voice        Voice
	stats        *apistats.Registry
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		sessions:     deps.Sessions,
		uploads:      deps.Uploads,
		librarian:    deps.Librarian,
		voice:        deps.Voice,
		stats:        deps.Stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/upload-pdf", s.handleUploadPDF)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Get("/api/pdf/{sessionID}", s.handleServePDF)

		r.Post("/api/search-text", s.handleSearchText)
		r.Get("/api/outline/{sessionID}", s.handleOutline)
		r.Get("/api/paper-context/{sessionID}", s.handlePaperContext)

		r.Route("/api/agents/navigator", func(r chi.Router) {
			r.Get("/references", s.handleListReferences)
			r.Post("/find-citation", s.handleFindCitation)
		})
		r.Route("/api/agents/librarian", func(r chi.Router) {
			r.Get("/tools", s.handleLibrarianTools)
			r.Post("/search", s.handleLibrarianSearch)
			r.Get("/papers/{arxivID}", s.handlePaperDetails)
			r.Post("/download", s.handleLibrarianDownload)
		})

		r.Route("/api/session/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/state", s.handleGetState)
			r.Put("/state", s.handleUpdateState)
			r.Post("/quiz/start", s.handleQuizStart)
			r.Post("/quiz/end", s.handleQuizEnd)
		})

		r.Get("/api/voice-token", s.handleVoiceToken)
		r.Get("/api/voice-agent", s.handleVoiceAgent)
		r.Get("/api/stats/remote", s.handleRemoteStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
