package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/learnaloud/internal/api"
	"github.com/dgallion1/learnaloud/internal/apistats"
	"github.com/dgallion1/learnaloud/internal/arxiv"
	"github.com/dgallion1/learnaloud/internal/config"
	"github.com/dgallion1/learnaloud/internal/pipeline"
	"github.com/dgallion1/learnaloud/internal/session"
	"github.com/dgallion1/learnaloud/internal/uploads"
	"github.com/dgallion1/learnaloud/internal/vocalbridge"
)

func main() {
	configPath := flag.String("config", os.Getenv("LEARNALOUD_CONFIG"), "path to YAML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := openSessionStore(cfg)
	if err != nil {
		log.Error("open session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}
	up, err := uploads.NewDir(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Error("open upload dir", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	stats := apistats.NewRegistry(cfg.StatsWindow)
	ax := arxiv.NewClient(arxiv.Options{
		APIURL:      cfg.ArxivAPIURL,
		PDFURL:      cfg.ArxivPDFURL,
		Interval:    cfg.ArxivInterval,
		MaxPDFBytes: cfg.MaxUploadBytes,
		Stats:       stats,
	})
	voice := vocalbridge.NewClient(cfg.VocalBridgeAPIKey, cfg.VocalBridgeURL, stats)
	if !voice.Configured() {
		log.Warn("vocalbridge api key not set; voice endpoints will answer 503")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.Deps{
		Sessions: sessions,
		Uploads:  up,
		Fetcher:  ax,
	}, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Sessions:     sessions,
		Uploads:      up,
		Librarian:    ax,
		Voice:        voice,
		Stats:        stats,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		ax.Close()
		if err := sessions.Close(); err != nil {
			log.Warn("close session store", "error", err)
		}
	}()

	log.Info("starting learnaloud", "port", cfg.Port, "session_store", cfg.SessionStore, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func openSessionStore(cfg config.Config) (session.Store, error) {
	if cfg.SessionStore == config.StoreSQLite {
		st, err := session.OpenSQLite(cfg.SQLitePath, cfg.SessionTTL)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return session.NewMemoryStore(cfg.SessionTTL), nil
}
