// Package main implements the textextract CLI: keyword-driven number
// extraction from PDF, DOCX and DOC documents.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smeshko/text-extractor/internal/common"
	"github.com/smeshko/text-extractor/internal/repository"
	"github.com/smeshko/text-extractor/internal/server"
	"github.com/smeshko/text-extractor/internal/session"
)

var (
	// configPath is the YAML config file; a missing file means defaults
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "textextract",
	Short: "Extract keyword-labelled numbers from documents",
	Long: `textextract finds user-supplied keywords in PDF, DOCX and DOC documents,
takes the number that follows each keyword and writes text, XLSX or JSON
reports. Keywords used before are remembered and can be grouped into presets.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", common.DefaultConfigPath(), "config file path")
}

// app bundles what every subcommand needs.
type app struct {
	cfg     *common.Config
	logger  *slog.Logger
	db      *repository.DB
	session *session.Session
}

// newApp loads the configuration, lets mutate adjust it and opens the store.
func newApp(ctx context.Context, mutate func(*common.Config)) (*app, error) {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, common.WrapError(err, "load config")
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger := common.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return nil, common.WrapError(err, "open keyword store")
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		session: session.FromConfig(cfg, db, nil, logger),
	}, nil
}

func (a *app) history() repository.KeywordHistoryRepository {
	return repository.NewKeywordHistoryRepository(a.db, a.cfg.History.MaxSize, a.logger)
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Extraction.WaitTimeout)
	defer cancel()
	a.session.Shutdown(ctx)
	server.CloseDB(a.db, a.logger)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
