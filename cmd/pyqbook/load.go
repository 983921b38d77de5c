package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/config"
	"github.com/dgallion1/pyqbook/internal/export"
	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/dgallion1/pyqbook/internal/parser"
	"github.com/dgallion1/pyqbook/internal/segment"
	"github.com/dgallion1/pyqbook/internal/session"
)

var errNoQuestions = errors.New("no questions found")

// loadQuestions reads questions from a paper, or from a CSV/XLSX export of a
// previous run.
func loadQuestions(path string) ([]paper.Question, error) {
	var qs []paper.Question
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		qs, err = readExport(path, export.ReadCSV)
	case ".xlsx":
		qs, err = readExport(path, export.ReadXLSX)
	default:
		cfg := config.Load()
		var pages []paper.Page
		pages, err = parser.ParseFile(path, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
		if err != nil {
			return nil, err
		}
		qs, err = segment.ExtractQuestions(pages)
	}
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), errNoQuestions)
	}
	return qs, nil
}

func readExport(path string, read func(io.Reader) ([]paper.Question, error)) ([]paper.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return read(f)
}

// loadRules reads a rules file, falling back to CHAPTER_RULES.
func loadRules(path string) ([]chapter.Rule, error) {
	if path == "" {
		path = config.Load().ChapterRules
	}
	if path == "" {
		return nil, nil
	}
	rules, err := chapter.LoadRules(path)
	if err != nil {
		return nil, err
	}
	if err := session.CheckRules(rules); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
