package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/config"
	"github.com/dgallion1/pyqbook/internal/pipeline"
	"github.com/dgallion1/pyqbook/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for pyqbook.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
	rules        []chapter.Rule
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. rules are the configured
// chapter rules used when an assign request brings none of its own.
func NewServer(orch *pipeline.Orchestrator, sessions *session.Store, rules []chapter.Rule, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		rules:        rules,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/papers", s.handleUpload)
		r.Post("/api/papers/batch", s.handleBatchUpload)
		r.Post("/api/papers/import", s.handleImport)
		r.Get("/api/papers", s.handleListPapers)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/chapters", s.handleChapterNames)
		r.Get("/api/stats", s.handleStats)

		r.Route("/api/papers/{paperID}", func(r chi.Router) {
			r.Get("/", s.handleGetPaper)
			r.Delete("/", s.handleDeletePaper)
			r.Get("/questions", s.handleQuestions)
			r.Put("/questions/{idx}/chapter", s.handleSetChapter)
			r.Post("/assign", s.handleAssign)
			r.Post("/reset", s.handleReset)
			r.Get("/progress", s.handleProgress)
			r.Get("/summary", s.handleSummary)
			r.Get("/export", s.handleExport)
			r.Get("/workbook", s.handleWorkbook)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
