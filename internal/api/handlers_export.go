package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pyqbook/internal/export"
	"github.com/dgallion1/pyqbook/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	var buf bytes.Buffer
	var contentType string
	var err error
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = export.WriteCSV(&buf, sess.Questions())
	case "xlsx":
		contentType = xlsxContentType
		err = export.WriteXLSX(&buf, sess.Questions())
	default:
		jsonError(w, fmt.Sprintf("unknown export format %q", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("export failed", "paper_id", sess.ID, "format", format, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	attach(w, contentType, baseName(sess.Filename)+"_questions."+format)
	buf.WriteTo(w)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.paper(w, r)
	if !ok {
		return
	}

	format, err := workbook.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	opts := workbook.Options{Title: s.cfg.WorkbookTitle}
	if err := workbook.Render(&buf, format, sess.Questions(), opts); err != nil {
		s.log.Error("workbook render failed", "paper_id", sess.ID, "format", format, "error", err)
		jsonError(w, "workbook render failed", http.StatusInternalServerError)
		return
	}

	attach(w, format.ContentType(), baseName(sess.Filename)+"_workbook."+string(format))
	buf.WriteTo(w)
}

func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}

func baseName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if name == "" {
		return "paper"
	}
	return name
}
