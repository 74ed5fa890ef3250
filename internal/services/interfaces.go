package services

import (
	"github.com/mrlokans/kobo-exporter/internal/database/runs"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/locator"
)

// HighlightSource reads highlights from a device.
type HighlightSource interface {
	GetHighlights(afterID int64) ([]entities.Highlight, error)
}

// SourceFactory opens the highlight source of the device mounted at drive.
type SourceFactory func(drive string) (HighlightSource, error)

// DriveResolver turns the configured drive (possibly empty) into a mounted
// device path.
type DriveResolver func(configured string) (string, error)

// Settings is the effective configuration of one run plus the watermark.
type Settings interface {
	LastExportedID() (int64, error)
	SetLastExportedID(id int64) error
	KoboDrive() string
	RememberDrive(drive string) error
	ExportDir() string
	ContextOptions() locator.Options
}

// ContextLocator finds the reading context of a highlight.
type ContextLocator interface {
	Locate(archivePath, contentID, highlight, book string) string
}

// LocatorFactory builds a locator for the options of one run.
type LocatorFactory func(opts locator.Options) ContextLocator

// HighlightMarker emphasizes a highlight inside its context.
type HighlightMarker interface {
	Mark(fragment, highlight string) string
}

// RunRecorder keeps the history of runs.
type RunRecorder interface {
	StartRun(trigger entities.ExportTrigger, drive string) (*entities.ExportRun, error)
	CompleteRun(id string, counts runs.Counts) error
	FailRun(id string, errorMsg string) error
}

// ExportRecorder keeps a copy of exported highlights.
type ExportRecorder interface {
	SaveHighlight(h *entities.ExportedHighlight) error
}
