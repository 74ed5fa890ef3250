// Package app wires the exporter's components from configuration. Every
// command and the server share it, so a run behaves the same however it
// was started.
package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mrlokans/kobo-exporter/internal/config"
	"github.com/mrlokans/kobo-exporter/internal/database"
	"github.com/mrlokans/kobo-exporter/internal/database/exports"
	"github.com/mrlokans/kobo-exporter/internal/database/runs"
	"github.com/mrlokans/kobo-exporter/internal/database/settings"
	"github.com/mrlokans/kobo-exporter/internal/exporters"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/locator"
	"github.com/mrlokans/kobo-exporter/internal/logging"
	"github.com/mrlokans/kobo-exporter/internal/marker"
	"github.com/mrlokans/kobo-exporter/internal/services"
	"github.com/mrlokans/kobo-exporter/internal/settingsstore"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.Database
	Settings *settingsstore.SettingsStore
	Runs     *runs.Repository
	Exports  *exports.Repository
	Export   *services.ExportService

	closeLog func()
}

// Options tweak wiring for a single command.
type Options struct {
	// Console receives verbose log output; stdout when nil.
	Console io.Writer
	// ResolveDrive overrides device detection.
	ResolveDrive services.DriveResolver
}

// New opens the state database and the diagnostic log and builds the
// export pipeline. Close releases both.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger, closeLog, err := logging.New(logging.Options{
		File:    cfg.Logging.File,
		Verbose: cfg.Logging.Verbose,
		Console: opts.Console,
	})
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := settingsstore.New(settings.NewRepository(db.DB), cfg)
	runsRepo := runs.NewRepository(db.DB)
	exportsRepo := exports.NewRepository(db.DB)

	m := marker.New()
	m.OnError = func(strategy string, err error) {
		logger.Debug("marker strategy failed", zap.String("strategy", strategy), zap.Error(err))
	}

	exportService := services.NewExportService(services.ExportServiceDeps{
		Settings:     store,
		ResolveDrive: opts.ResolveDrive,
		OpenSource: func(drive string) (services.HighlightSource, error) {
			return kobo.NewReader(drive, cfg.Export.TempDir)
		},
		NewLocator: func(o locator.Options) services.ContextLocator {
			return locator.New(o, logger)
		},
		Marker:     m,
		NewWriters: Writers(cfg.Export.Markdown),
		Runs:       runsRepo,
		Exports:    exportsRepo,
		Logger:     logger,
	})

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Settings: store,
		Runs:     runsRepo,
		Exports:  exportsRepo,
		Export:   exportService,
	}
	a.closeLog = closeLog
	return a, nil
}

// Writers returns the writer set for an export directory: HTML always,
// Markdown when enabled.
func Writers(markdown bool) func(dir string) []exporters.HighlightWriter {
	return func(dir string) []exporters.HighlightWriter {
		writers := []exporters.HighlightWriter{exporters.NewHTMLWriter(dir)}
		if markdown {
			writers = append(writers, exporters.NewMarkdownWriter(dir))
		}
		return writers
	}
}

func (a *App) Close() error {
	err := a.DB.Close()
	if a.closeLog != nil {
		a.closeLog()
	}
	return err
}
