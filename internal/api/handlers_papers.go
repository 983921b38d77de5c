package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/session"
	"github.com/go-chi/chi/v5"
)

// paper resolves {paperID}, writing the error response when it cannot.
func (s *Server) paper(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "paperID")
	sess, err := s.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		jsonError(w, "paper not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("load paper failed", "paper_id", id, "error", err)
		jsonError(w, "failed to load paper", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// save persists an edited session. Failures are logged; the in-memory edit
// has already happened.
func (s *Server) save(r *http.Request, sess *session.Session) {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.log.Error("persist session failed", "paper_id", sess.ID, "error", err)
	}
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.sessions.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list papers: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paper":    sess.Info(),
		"progress": sess.Progress(),
	})
}

func (s *Server) handleDeletePaper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paperID")
	err := s.sessions.Delete(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		jsonError(w, "paper not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete paper: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("deleted paper", "paper_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	writeJSON(w, http.StatusOK, sess.View(session.Filter{
		Chapter: q.Get("chapter"),
		Year:    q.Get("year"),
		Page:    page,
		PerPage: perPage,
	}))
}

func (s *Server) handleSetChapter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		jsonError(w, "question index must be an integer", http.StatusBadRequest)
		return
	}

	var body struct {
		Chapter string `json:"chapter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := sess.SetChapter(idx, body.Chapter); err != nil {
		status := http.StatusNotFound
		if errors.Is(err, session.ErrReserved) {
			status = http.StatusBadRequest
		}
		jsonError(w, err.Error(), status)
		return
	}
	s.save(r, sess)
	writeJSON(w, http.StatusOK, sess.Questions()[idx])
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}

	var body struct {
		Rules []chapter.Rule `json:"rules"`
	}
	// An empty body means "use the configured rules".
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	rules := body.Rules
	if len(rules) == 0 {
		rules = s.rules
	}
	if len(rules) == 0 {
		jsonError(w, "no chapter rules given or configured", http.StatusBadRequest)
		return
	}

	n, err := sess.Assign(rules)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.save(r, sess)
	s.log.Info("assigned chapters", "paper_id", sess.ID, "newly_assigned", n, "rules", len(rules))
	writeJSON(w, http.StatusOK, map[string]any{
		"newly_assigned": n,
		"progress":       sess.Progress(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	sess.Reset()
	s.save(r, sess)
	writeJSON(w, http.StatusOK, map[string]any{"progress": sess.Progress()})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}
	summary := sess.Summary()
	if summary == nil {
		summary = []chapter.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": summary})
}

// handleChapterNames lists picker labels for a preset. Query parameters
// override the configured preset and count; custom presets take "names".
func (s *Server) handleChapterNames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preset := q.Get("preset")
	if preset == "" {
		preset = s.cfg.ChapterPreset
	}
	count := s.cfg.ChapterCount
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "count must be an integer", http.StatusBadRequest)
			return
		}
		count = n
	}

	names, err := chapter.Names(preset, count, q.Get("names"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preset": preset, "chapters": names})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":     s.orchestrator.QueueDepth(),
		"sessions_loaded": s.sessions.Len(),
		"rules":           len(s.rules),
		"processing":      s.orchestrator.Stats(),
	})
}
