package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/dgallion1/pyqbook/internal/parser"
	"github.com/dgallion1/pyqbook/internal/segment"
	"github.com/dgallion1/pyqbook/internal/session"
)

// Worker processes a single paper job.
type Worker struct {
	sessions  *session.Store
	rules     []chapter.Rule
	parseOpts parser.Options
	stats     *Stats
	log       *slog.Logger
}

func NewWorker(sessions *session.Store, rules []chapter.Rule, parseOpts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		sessions:  sessions,
		rules:     rules,
		parseOpts: parseOpts,
		log:       log,
	}
}

// Process runs parse, segment, assign and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	pages, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetPages(len(pages))

	// Hash the extracted text so re-uploads of the same paper are detected.
	hash := ContentHashHex([]byte(flattenPages(pages)))

	// Phase 1.5: Dedup check
	existing, found, err := w.sessions.FindByHash(ctx, hash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if found {
		log.Info("duplicate paper, skipping", "existing_paper_id", existing)
		job.SetPaper(existing, hash)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Segment
	job.SetStatus(StatusSegmenting, "segmenting")
	questions, err := segment.ExtractQuestions(pages)
	if err != nil {
		log.Error("segmentation failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "segmenting")
		return
	}
	year := paper.Unknown
	if len(questions) > 0 {
		year = questions[0].Year
	}
	job.SetQuestions(len(questions), year)
	w.stats.Record(time.Since(start), len(questions))
	log.Info("segmented paper", "pages", len(pages), "questions", len(questions), "year", year)

	if len(questions) == 0 {
		job.AddError("no questions found")
		job.SetStatus(StatusNoQuestions, "segmenting")
		return
	}

	// Phase 3: Assign chapters
	if len(w.rules) > 0 {
		job.SetStatus(StatusAssigning, "assigning")
		chapter.Assign(questions, w.rules)
		assigned := chapter.ProgressOf(questions).Assigned
		job.SetAssigned(assigned)
		log.Info("assigned chapters", "assigned", assigned, "rules", len(w.rules))
	}

	// Phase 4: Store the session
	job.SetStatus(StatusStoring, "storing")
	sess := session.New(job.Filename, hash, questions)
	if err := w.sessions.Add(ctx, sess); err != nil {
		// The session stays usable in memory even if persisting failed.
		log.Error("persist session failed", "paper_id", sess.ID, "error", err)
		job.AddError(fmt.Sprintf("persist: %s", err))
	}
	job.SetPaper(sess.ID, hash)
	job.SetStatus(StatusCompleted, "done")
}

// flattenPages joins page texts into a single string for hashing.
func flattenPages(pages []paper.Page) string {
	var sb strings.Builder
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
