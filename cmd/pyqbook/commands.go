package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dgallion1/pyqbook/internal/chapter"
	"github.com/dgallion1/pyqbook/internal/config"
	"github.com/dgallion1/pyqbook/internal/export"
	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/dgallion1/pyqbook/internal/parser"
	"github.com/dgallion1/pyqbook/internal/store"
	"github.com/dgallion1/pyqbook/internal/watch"
	"github.com/dgallion1/pyqbook/internal/workbook"
	"github.com/spf13/cobra"
)

func newExtractCmd(log *slog.Logger) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "List the questions found in a paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loadQuestions(args[0])
			if err != nil {
				return err
			}
			log.Debug("extracted questions", "file", args[0], "questions", len(qs))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(qs)
			}
			return printTable(cmd.OutOrStdout(), qs)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print questions as JSON")
	return cmd
}

func newAssignCmd(log *slog.Logger) *cobra.Command {
	var rulesPath, csvOut, xlsxOut string
	cmd := &cobra.Command{
		Use:   "assign <file>",
		Short: "Tag questions with chapters using keyword rules",
		Long: `Tag questions with chapters using keyword rules and write the result as CSV
and/or XLSX. The input may be a paper or an export from a previous run, so
rules can be refined without losing manual tags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loadQuestions(args[0])
			if err != nil {
				return err
			}
			rules, err := loadRules(rulesPath)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				return fmt.Errorf("no chapter rules: pass --rules or set CHAPTER_RULES")
			}

			chapter.Assign(qs, rules)
			p := chapter.ProgressOf(qs)
			log.Info("assigned chapters", "file", args[0], "assigned", p.Assigned, "remaining", p.Remaining)

			if csvOut == "" && xlsxOut == "" {
				return printSummary(cmd.OutOrStdout(), qs)
			}
			if csvOut != "" {
				if err := writeFile(csvOut, func(f *os.File) error { return export.WriteCSV(f, qs) }); err != nil {
					return err
				}
			}
			if xlsxOut != "" {
				if err := writeFile(xlsxOut, func(f *os.File) error { return export.WriteXLSX(f, qs) }); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML chapter rules (default $CHAPTER_RULES)")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write questions to this CSV file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write questions to this XLSX file")
	return cmd
}

func newWorkbookCmd(log *slog.Logger) *cobra.Command {
	var rulesPath, format, out, title string
	cmd := &cobra.Command{
		Use:   "workbook <file|export.csv>",
		Short: "Write a chapter-wise workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := loadQuestions(args[0])
			if err != nil {
				return err
			}
			rules, err := loadRules(rulesPath)
			if err != nil {
				return err
			}
			chapter.Assign(qs, rules)

			if format == "" && out != "" {
				format = filepath.Ext(out)
			}
			f, err := workbook.ParseFormat(format)
			if err != nil {
				return err
			}
			if title == "" {
				title = config.Load().WorkbookTitle
			}
			opts := workbook.Options{Title: title}

			if out == "" {
				return workbook.Render(cmd.OutOrStdout(), f, qs, opts)
			}
			if err := writeFile(out, func(w *os.File) error { return workbook.Render(w, f, qs, opts) }); err != nil {
				return err
			}
			log.Info("wrote workbook", "path", out, "format", f, "chapters", len(chapter.Groups(qs)))
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML chapter rules (default $CHAPTER_RULES)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "md, html, docx or txt (default from -o extension, else md)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "", "workbook title")
	return cmd
}

func newWatchCmd(log *slog.Logger) *cobra.Command {
	var rulesPath, outDir, format string
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Process papers as they arrive in a directory",
		Long: `Watch a directory and, for every paper written into it, write
<name>_questions.csv and <name>_workbook.<format> to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if outDir == "" {
				outDir = filepath.Join(dir, "out")
			}
			// Workbooks written into the watched directory would be picked up
			// as new papers.
			same, err := sameDir(dir, outDir)
			if err != nil {
				return err
			}
			if same {
				return fmt.Errorf("--out must differ from the watched directory %s", dir)
			}
			rules, err := loadRules(rulesPath)
			if err != nil {
				return err
			}
			f, err := workbook.ParseFormat(format)
			if err != nil {
				return err
			}

			w, err := watch.New(parser.IsSupportedExtension, watch.DefaultSettle, log)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("watching", "dir", dir, "out", outDir, "rules", len(rules))
			return w.Run(ctx, dir, func(path string) {
				if err := processPaper(path, outDir, rules, f); err != nil {
					log.Error("process paper failed", "file", path, "error", err)
					return
				}
				log.Info("processed paper", "file", path)
			})
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML chapter rules (default $CHAPTER_RULES)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default <dir>/out)")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "workbook format: md, html, docx or txt")
	return cmd
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// processPaper writes the question table and workbook for one paper.
func processPaper(path, outDir string, rules []chapter.Rule, f workbook.Format) error {
	qs, err := loadQuestions(path)
	if err != nil {
		return err
	}
	chapter.Assign(qs, rules)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	csvPath := filepath.Join(outDir, base+"_questions.csv")
	if err := writeFile(csvPath, func(w *os.File) error { return export.WriteCSV(w, qs) }); err != nil {
		return err
	}
	wbPath := filepath.Join(outDir, base+"_workbook."+string(f))
	opts := workbook.Options{Title: config.Load().WorkbookTitle}
	return writeFile(wbPath, func(w *os.File) error { return workbook.Render(w, f, qs, opts) })
}

func newPapersCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "papers",
		Short: "List papers saved by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = config.Load().SessionDB
			}
			if dbPath == "" {
				return fmt.Errorf("no session database: pass --db or set SESSION_DB")
			}
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			papers, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tQUESTIONS\tASSIGNED\tUPDATED")
			for _, p := range papers {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", p.ID, p.Filename, p.Questions, p.Assigned, p.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite session database (default $SESSION_DB)")
	return cmd
}

func printTable(w io.Writer, qs []paper.Question) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Q\tYEAR\tMARKS\tPAGE\tCHAPTER\tPREVIEW")
	for _, q := range qs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", q.Number, q.Year, q.Marks, q.Page, q.Chapter, q.Preview)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, qs []paper.Question) error {
	p := chapter.ProgressOf(qs)
	fmt.Fprintf(w, "%d of %d questions assigned (%.0f%%)\n\n", p.Assigned, p.Total, p.Ratio*100)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHAPTER\tQUESTIONS\tYEARS")
	for _, s := range chapter.Summarize(qs) {
		years := make([]string, len(s.Years))
		for i, y := range s.Years {
			years[i] = fmt.Sprintf("%s: %d", y.Year, y.Count)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Chapter, s.Total, strings.Join(years, ", "))
	}
	return tw.Flush()
}
