// Command pyqbook extracts questions from past exam papers, tags them with
// chapters and writes chapter-wise workbooks.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	_ = godotenv.Load(".env")

	var verbose bool
	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	rootCmd := &cobra.Command{
		Use:   "pyqbook",
		Short: "Turn past exam papers into chapter-wise question workbooks",
		Long: `pyqbook splits exam papers (PDF, DOCX, HTML, Markdown or text) into
numbered questions, tags each with a chapter using keyword rules, and writes
the result as a CSV/XLSX table or a chapter-wise workbook.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newExtractCmd(log),
		newAssignCmd(log),
		newWorkbookCmd(log),
		newWatchCmd(log),
		newPapersCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
