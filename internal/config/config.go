package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/pyqbook/internal/chapter"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Session state
	SessionTTL time.Duration
	SessionDB  string // SQLite path; empty keeps sessions in memory only

	// PDF
	PDFFallbackPdftotext bool

	// Chapters
	ChapterRules  string // YAML rules file applied to every new paper
	ChapterPreset string
	ChapterCount  int

	// Workbook
	WorkbookTitle string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PYQBOOK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),
		SessionDB:  os.Getenv("SESSION_DB"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ChapterRules:  os.Getenv("CHAPTER_RULES"),
		ChapterPreset: envOr("CHAPTER_PRESET", chapter.PresetNumbered),
		ChapterCount:  envInt("CHAPTER_COUNT", chapter.DefaultChapterCount),

		WorkbookTitle: os.Getenv("WORKBOOK_TITLE"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ChapterCount <= 0 {
		cfg.ChapterCount = chapter.DefaultChapterCount
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PYQBOOK_API_KEY is required")
	}
	switch c.ChapterPreset {
	case chapter.PresetNumbered, chapter.PresetSubject:
	default:
		return fmt.Errorf("CHAPTER_PRESET must be %q or %q, got %q", chapter.PresetNumbered, chapter.PresetSubject, c.ChapterPreset)
	}
	if c.ChapterCount > chapter.MaxChapterCount {
		return fmt.Errorf("CHAPTER_COUNT must be at most %d, got %d", chapter.MaxChapterCount, c.ChapterCount)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
