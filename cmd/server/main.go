package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pyqbook/internal/api"
	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/config"
	"github.com/dgallion1/pyqbook/internal/pipeline"
	"github.com/dgallion1/pyqbook/internal/session"
	"github.com/dgallion1/pyqbook/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env when present; real environment variables win.
	_ = godotenv.Load(".env")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rules []chapter.Rule
	if cfg.ChapterRules != "" {
		var err error
		rules, err = chapter.LoadRules(cfg.ChapterRules)
		if err == nil {
			err = session.CheckRules(rules)
		}
		if err != nil {
			log.Error("loading chapter rules", "path", cfg.ChapterRules, "error", err)
			os.Exit(1)
		}
		log.Info("loaded chapter rules", "path", cfg.ChapterRules, "rules", len(rules))
	}

	// Session persistence is optional.
	var persist session.Persister
	var db *store.Store
	if cfg.SessionDB != "" {
		var err error
		db, err = store.Open(cfg.SessionDB)
		if err != nil {
			log.Error("opening session database", "path", cfg.SessionDB, "error", err)
			os.Exit(1)
		}
		persist = db
	}
	sessions := session.NewStore(cfg.SessionTTL, persist, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, sessions, rules, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, rules, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if db != nil {
			db.Close()
		}
	}()

	log.Info("starting pyqbook", "port", cfg.Port, "workers", cfg.WorkerCount, "session_db", cfg.SessionDB)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
