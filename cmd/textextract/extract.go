package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/async"
	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/ingest"
)

var (
	extractKeywords []string
	extractPreset   string
	extractDir      string
	extractOut      string
	extractFormats  []string
	extractHidden   bool
)

func init() {
	extractCmd.Flags().StringArrayVarP(&extractKeywords, "keyword", "k", nil, "keyword to extract (repeatable)")
	extractCmd.Flags().StringVarP(&extractPreset, "preset", "p", "", "load keywords from a saved preset")
	extractCmd.Flags().StringVar(&extractDir, "dir", "", "also process every document under this directory")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output folder (overrides output.folder)")
	extractCmd.Flags().StringSliceVarP(&extractFormats, "format", "f", nil, "report formats: txt, xlsx, json")
	extractCmd.Flags().BoolVar(&extractHidden, "include-hidden", false, "include hidden files when scanning --dir")

	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract keyword values from documents",
	Long: `Extract the number following each keyword from one or more documents.

Examples:
  # One document, two keywords
  textextract extract -k "Salary" -k "Bonus" payslip.pdf

  # Every document in a folder with a saved preset, XLSX and text reports
  textextract extract --dir ./inbox --preset monthly -f txt,xlsx`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, func(cfg *common.Config) {
		if extractOut != "" {
			cfg.Output.Folder = extractOut
		}
		if len(extractFormats) > 0 {
			cfg.Output.Formats = extractFormats
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := common.ValidateAndReturnError(formatValidator(a.cfg.Output.Formats)); err != nil {
		return err
	}

	paths := append([]string{}, args...)
	if extractDir != "" {
		found, stats, err := ingest.ScanDirectory(ctx, extractDir, !extractHidden, a.logger)
		if err != nil {
			return fmt.Errorf("scan %s: %w", extractDir, err)
		}
		a.logger.Info("directory scanned", "dir", extractDir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return errors.New("no documents given: pass files or --dir")
	}

	docs, err := a.session.SelectDocuments(ctx, paths)
	if err != nil {
		return err
	}
	invalid := 0
	for _, d := range docs {
		if !d.IsValid {
			invalid++
			fmt.Fprintf(os.Stderr, "skipping %s: %s\n", d.Filename, d.ErrorMessage)
		}
	}
	if invalid > 0 {
		valid := make([]string, 0, len(docs)-invalid)
		for _, d := range docs {
			if d.IsValid {
				valid = append(valid, d.Path)
			}
		}
		if len(valid) == 0 {
			return errors.New("none of the documents can be processed")
		}
		if _, err := a.session.SelectDocuments(ctx, valid); err != nil {
			return err
		}
	}

	if extractPreset != "" {
		if _, err := a.session.LoadPreset(ctx, extractPreset); err != nil {
			return err
		}
	}
	for _, kw := range extractKeywords {
		if err := a.session.AddKeyword(ctx, kw); err != nil && !errors.Is(err, common.ErrDuplicateKeyword) {
			return err
		}
	}
	if snap := a.session.State(); !snap.HasKeywords() {
		return errors.New("no keywords given: use --keyword or --preset")
	}

	snap, err := a.session.Run(ctx, async.WithProgressHandler(func(m async.Message) {
		fmt.Fprintln(os.Stderr, m.Text)
	}))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if snap.Results == nil {
		msg := "extraction failed"
		if n := len(snap.ErrorMessages); n > 0 {
			msg = snap.ErrorMessages[n-1]
		}
		return errors.New(msg)
	}
	fmt.Fprintf(out, "Status: %s\n", snap.Status)
	fmt.Fprintf(out, "%s\n", snap.Results.StatusSummary())
	for _, r := range snap.Results.Results {
		fmt.Fprintf(out, "\n%s: %s\n", r.Document.Filename, r.StatusSummary())
		for _, p := range r.OutputPaths {
			fmt.Fprintf(out, "  report: %s\n", p)
		}
		if r.LogPath != "" {
			fmt.Fprintf(out, "  log:    %s\n", r.LogPath)
		}
	}
	if snap.Results.OutputPath != "" {
		fmt.Fprintf(out, "\nBatch report: %s\n", snap.Results.OutputPath)
	}
	for _, w := range snap.Results.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if snap.Status == constants.StatusError {
		return fmt.Errorf("extraction finished with errors (see %s)", filepath.Clean(a.cfg.Logging.Directory))
	}
	return nil
}

func formatValidator(formats []string) *common.Validator {
	v := common.NewValidator()
	for _, f := range formats {
		v.Field("format", strings.ToLower(f), common.OneOf("txt", "xlsx", "json"))
	}
	return v
}
