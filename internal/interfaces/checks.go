package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/kobo-exporter/internal/database/exports"
	"github.com/mrlokans/kobo-exporter/internal/database/runs"
	"github.com/mrlokans/kobo-exporter/internal/database/settings"
	"github.com/mrlokans/kobo-exporter/internal/exporters"
	"github.com/mrlokans/kobo-exporter/internal/http"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/locator"
	"github.com/mrlokans/kobo-exporter/internal/marker"
	"github.com/mrlokans/kobo-exporter/internal/scheduler"
	"github.com/mrlokans/kobo-exporter/internal/services"
	"github.com/mrlokans/kobo-exporter/internal/settingsstore"
	"github.com/mrlokans/kobo-exporter/internal/tasks"
)

// =============================================================================
// Export Pipeline
// =============================================================================

var _ services.HighlightSource = (*kobo.Reader)(nil)
var _ services.ContextLocator = (*locator.Locator)(nil)
var _ services.HighlightMarker = (*marker.Marker)(nil)
var _ services.Settings = (*settingsstore.SettingsStore)(nil)
var _ services.DriveResolver = kobo.ResolveDrive

// Match strategies
var _ marker.Strategy = marker.Tolerant{}
var _ marker.Strategy = marker.Exact{}

// Writers
var _ exporters.HighlightWriter = (*exporters.HTMLWriter)(nil)
var _ exporters.HighlightWriter = (*exporters.MarkdownWriter)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.RunRecorder = (*runs.Repository)(nil)
var _ services.ExportRecorder = (*exports.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)
var _ http.BookStore = (*exports.Repository)(nil)
var _ http.RunStore = (*runs.Repository)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.ExportRunner = (*services.ExportService)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.ExportRunner = (*services.ExportService)(nil)
var _ scheduler.Exporter = (*services.ExportService)(nil)
