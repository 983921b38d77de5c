package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/config"
	"github.com/dgallion1/pyqbook/internal/export"
	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/dgallion1/pyqbook/internal/pipeline"
	"github.com/dgallion1/pyqbook/internal/session"
)

const testKey = "test-key"

const samplePaper = "Examination 28th May 2024\n" +
	"Q. 1) Explain the Capital Asset Pricing Model and its assumptions. [4]\n" +
	"Q. 2) Derive the probability of ruin for a compound Poisson process. [6]\n" +
	"\f" +
	"Q. 3) Describe a Markov chain with absorbing states in detail. [5]\n"

func newTestServer(t *testing.T, rules []chapter.Rule) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		ChapterPreset:  chapter.PresetNumbered,
		ChapterCount:   3,
	}
	sessions := session.NewStore(time.Hour, nil, log)
	orch := pipeline.NewOrchestrator(cfg, sessions, rules, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, sessions, rules, log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// uploadAndWait uploads the sample paper and returns the resulting paper ID.
func uploadAndWait(t *testing.T, s *Server) string {
	t.Helper()
	body, ct := multipartBody(t, "file", "cs1.txt", []byte(samplePaper))
	rec := do(t, s, http.MethodPost, "/api/papers", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &accepted)

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, s, http.MethodGet, accepted.PollURL, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 polling job, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		decode(t, rec, &snap)
		if snap.Done() {
			if snap.Status != pipeline.StatusCompleted {
				t.Fatalf("expected completed job, got %q (%v)", snap.Status, snap.Progress.Errors)
			}
			return snap.PaperID
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %q after deadline", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("expected ok health, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/papers", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tt.name, rec.Code)
		}
	}
}

func TestUpload_Unsupported(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartBody(t, "file", "paper.exe", []byte("x"))
	rec := do(t, s, http.MethodPost, "/api/papers", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPaperLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := uploadAndWait(t, s)
	base := "/api/papers/" + id

	// Questions, filtered and paged.
	rec := do(t, s, http.MethodGet, base+"/questions?per_page=5", nil, "")
	var view session.View
	decode(t, rec, &view)
	if view.Total != 3 || len(view.Items) != 3 {
		t.Fatalf("expected 3 questions, got total %d items %d", view.Total, len(view.Items))
	}
	if view.Items[0].Year != "2024" || view.Items[0].Marks != "4" {
		t.Errorf("unexpected first question %+v", view.Items[0])
	}

	// Manual tagging.
	rec = do(t, s, http.MethodPut, base+"/questions/2/chapter", strings.NewReader(`{"chapter":"Chapter 5"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 tagging, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s, http.MethodPut, base+"/questions/9/chapter", strings.NewReader(`{"chapter":"x"}`), "application/json")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for bad index, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPut, base+"/questions/0/chapter", strings.NewReader(`{"chapter":"Unassigned"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for reserved chapter label, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, base+"/assign",
		strings.NewReader(`{"rules":[{"label":"All","keywords":["capm"]}]}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for reserved rule label, got %d", rec.Code)
	}

	// Keyword assignment.
	rec = do(t, s, http.MethodPost, base+"/assign",
		strings.NewReader(`{"rules":[{"label":"Chapter 1","keywords":["capm","capital asset"]}]}`), "application/json")
	var assigned struct {
		NewlyAssigned int              `json:"newly_assigned"`
		Progress      chapter.Progress `json:"progress"`
	}
	decode(t, rec, &assigned)
	if assigned.NewlyAssigned != 1 || assigned.Progress.Assigned != 2 || assigned.Progress.Remaining != 1 {
		t.Errorf("unexpected assign result %+v", assigned)
	}

	rec = do(t, s, http.MethodGet, base+"/questions?chapter=Unassigned", nil, "")
	decode(t, rec, &view)
	if view.Total != 1 || view.Items[0].Number != 2 {
		t.Errorf("expected only question 2 unassigned, got %+v", view.Items)
	}

	// Summary.
	rec = do(t, s, http.MethodGet, base+"/summary", nil, "")
	var summary struct {
		Chapters []chapter.Summary `json:"chapters"`
	}
	decode(t, rec, &summary)
	if len(summary.Chapters) != 2 || summary.Chapters[0].Chapter != "Chapter 1" {
		t.Errorf("unexpected summary %+v", summary.Chapters)
	}

	// CSV export holds every question, assigned or not.
	rec = do(t, s, http.MethodGet, base+"/export?format=csv", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 export, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "cs1_questions.csv") {
		t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	qs, err := export.ReadCSV(rec.Body)
	if err != nil || len(qs) != 3 {
		t.Fatalf("expected 3 exported rows, got %d (%v)", len(qs), err)
	}

	// Markdown workbook holds only assigned questions.
	rec = do(t, s, http.MethodGet, base+"/workbook?format=md", nil, "")
	wb := rec.Body.String()
	if !strings.Contains(wb, "## Chapter 1") || !strings.Contains(wb, "## Chapter 5") {
		t.Errorf("expected both chapters in workbook, got %q", wb)
	}
	if strings.Contains(wb, "probability of ruin") {
		t.Error("expected unassigned question left out of workbook")
	}

	// Reset then delete.
	rec = do(t, s, http.MethodPost, base+"/reset", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 reset, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, base+"/progress", nil, "")
	var progress chapter.Progress
	decode(t, rec, &progress)
	if progress.Assigned != 0 {
		t.Errorf("expected nothing assigned after reset, got %d", progress.Assigned)
	}

	if rec := do(t, s, http.MethodDelete, base, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 delete, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, base+"/progress", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAssign_ConfiguredRules(t *testing.T) {
	rules := []chapter.Rule{{Label: "Chapter 3", Keywords: []string{"markov"}}}
	s := newTestServer(t, rules)
	id := uploadAndWait(t, s)

	// The pipeline already applied the configured rules.
	rec := do(t, s, http.MethodGet, "/api/papers/"+id+"/progress", nil, "")
	var progress chapter.Progress
	decode(t, rec, &progress)
	if progress.Assigned != 1 {
		t.Errorf("expected 1 assigned by pipeline, got %d", progress.Assigned)
	}

	rec = do(t, s, http.MethodPost, "/api/papers/"+id+"/assign", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected configured rules to be used, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssign_NoRules(t *testing.T) {
	s := newTestServer(t, nil)
	id := uploadAndWait(t, s)
	rec := do(t, s, http.MethodPost, "/api/papers/"+id+"/assign", strings.NewReader(`{}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without rules, got %d", rec.Code)
	}
}

func TestImport(t *testing.T) {
	s := newTestServer(t, nil)

	var csvBuf bytes.Buffer
	export.WriteCSV(&csvBuf, []paper.Question{
		{Number: 4, Preview: "p", Content: "Q. 4) p", Marks: "2", Chapter: "Chapter 2", Year: "2022", Page: 1},
	})
	body, ct := multipartBody(t, "file", "restore.csv", csvBuf.Bytes())
	rec := do(t, s, http.MethodPost, "/api/papers/import", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var info session.Info
	decode(t, rec, &info)
	if info.Questions != 1 || info.Assigned != 1 {
		t.Errorf("unexpected imported paper %+v", info)
	}

	rec = do(t, s, http.MethodGet, "/api/papers", nil, "")
	var list struct {
		Papers []session.Info `json:"papers"`
	}
	decode(t, rec, &list)
	if len(list.Papers) != 1 || list.Papers[0].ID != info.ID {
		t.Errorf("expected imported paper listed, got %+v", list.Papers)
	}

	body, ct = multipartBody(t, "file", "empty.csv", []byte(strings.Join(export.Columns, ",")+"\n"))
	rec = do(t, s, http.MethodPost, "/api/papers/import", body, ct)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "no questions found") {
		t.Errorf("expected 422 no questions found, got %d %q", rec.Code, rec.Body.String())
	}

	bad := strings.Join(export.Columns, ",") + "\nabc,p,Q. x) p,2,,2022,1\n"
	body, ct = multipartBody(t, "file", "bad.csv", []byte(bad))
	rec = do(t, s, http.MethodPost, "/api/papers/import", body, ct)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for non-numeric question_number, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestChapterNames(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/chapters", nil, "")
	var resp struct {
		Chapters []string `json:"chapters"`
	}
	decode(t, rec, &resp)
	if len(resp.Chapters) != 3 || resp.Chapters[2] != "Chapter 3" {
		t.Errorf("expected 3 numbered chapters, got %v", resp.Chapters)
	}

	rec = do(t, s, http.MethodGet, "/api/chapters?count=99", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for too many chapters, got %d", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/jobs/nope", "/api/papers/nope/questions", "/api/papers/nope/workbook"} {
		if rec := do(t, s, http.MethodGet, path, nil, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"paper.pdf", "paper.pdf"},
		{"../../etc/passwd", "passwd"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
