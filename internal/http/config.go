package http

import "github.com/mrlokans/kobo-exporter/internal/database"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    BookStore
	Runs     RunStore
	Settings SettingsStore

	// Exporter runs exports inline when no task queue is configured.
	Exporter ExportRunner

	// Task queue client (optional)
	TaskQueue TaskQueue

	// DetectDevice reports the mounted device for the health check (optional).
	DetectDevice func() (string, error)

	// Application info
	Version string
}
