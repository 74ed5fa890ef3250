package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/services"
	"github.com/mrlokans/kobo-exporter/internal/settingsstore"
)

// Each controller depends on the narrow interface it needs; the database
// repositories and services satisfy them.

// BookStore reads the copy of exported highlights.
type BookStore interface {
	ListBooks() ([]entities.BookSummary, error)
	GetBookHighlights(bookLabel string) ([]entities.ExportedHighlight, error)
	GetRunHighlights(runID string) ([]entities.ExportedHighlight, error)
	Search(query string, limit int) ([]entities.ExportedHighlight, error)
}

// RunStore reads the export history.
type RunStore interface {
	ListRuns(limit int) ([]entities.ExportRun, error)
	GetRun(id string) (*entities.ExportRun, error)
}

// SettingsStore reads and edits persisted settings.
type SettingsStore interface {
	Info() []settingsstore.SettingInfo
	Set(key, value string) error
	Reset(key string) error
	ExportDir() string
}

// ExportRunner runs an export synchronously.
type ExportRunner interface {
	Run(ctx context.Context, trigger entities.ExportTrigger) (services.ExportSummary, error)
}

// TaskQueue runs exports in the background.
type TaskQueue interface {
	EnqueueExport(trigger entities.ExportTrigger) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
