package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/kobo-exporter/internal/database/runs"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/exporters"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/locator"
)

// ErrExportInProgress is returned when Run is called while another run is
// still going.
var ErrExportInProgress = errors.New("an export is already running")

// ExportSummary reports the outcome of one run.
type ExportSummary struct {
	RunID      string `json:"run_id,omitempty"`
	Drive      string `json:"drive"`
	ExportDir  string `json:"export_dir"`
	Highlights int    `json:"highlights"`
	Notes      int    `json:"notes"`
	Books      int    `json:"books"`
	Failed     int    `json:"failed"`
	LastID     int64  `json:"last_id"`
}

// Message is the one-line summary shown to the user.
func (s ExportSummary) Message() string {
	return fmt.Sprintf("Exported %d highlights and %d notes from %d books.", s.Highlights, s.Notes, s.Books)
}

// ExportServiceDeps wires an ExportService. Runs and Exports are optional.
type ExportServiceDeps struct {
	Settings     Settings
	ResolveDrive DriveResolver
	OpenSource   SourceFactory
	NewLocator   LocatorFactory
	Marker       HighlightMarker
	// NewWriters returns the writers for the export directory of a run.
	NewWriters func(exportDir string) []exporters.HighlightWriter
	Runs       RunRecorder
	Exports    ExportRecorder
	Logger     *zap.Logger
	Now        func() time.Time
}

// ExportService copies new highlights from the device into per-book files.
// Highlights are processed one at a time in id order, so appends to a book
// file never interleave.
type ExportService struct {
	deps ExportServiceDeps
	mu   sync.Mutex
}

func NewExportService(deps ExportServiceDeps) *ExportService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ResolveDrive == nil {
		deps.ResolveDrive = kobo.ResolveDrive
	}
	return &ExportService{deps: deps}
}

// Run exports every highlight above the watermark and advances it.
func (s *ExportService) Run(ctx context.Context, trigger entities.ExportTrigger) (ExportSummary, error) {
	if !s.mu.TryLock() {
		return ExportSummary{}, ErrExportInProgress
	}
	defer s.mu.Unlock()

	log := s.deps.Logger
	log.Info("--- Starting Export Session ---", zap.String("trigger", string(trigger)))

	drive, err := s.deps.ResolveDrive(s.deps.Settings.KoboDrive())
	if err != nil {
		log.Error("Drive error", zap.Error(err))
		return ExportSummary{}, fmt.Errorf("failed to find device: %w", err)
	}
	if err := s.deps.Settings.RememberDrive(drive); err != nil {
		log.Warn("failed to remember drive", zap.Error(err))
	}

	summary := ExportSummary{Drive: drive, ExportDir: s.deps.Settings.ExportDir()}

	var runID string
	if s.deps.Runs != nil {
		run, err := s.deps.Runs.StartRun(trigger, drive)
		if err != nil {
			return summary, fmt.Errorf("failed to record run: %w", err)
		}
		runID = run.ID
		summary.RunID = runID
	}

	summary, err = s.export(ctx, summary)
	if err != nil {
		s.failRun(runID, err)
		return summary, err
	}

	if s.deps.Runs != nil {
		counts := runs.Counts{
			Highlights: summary.Highlights,
			Notes:      summary.Notes,
			Books:      summary.Books,
			Failed:     summary.Failed,
			LastID:     summary.LastID,
		}
		if err := s.deps.Runs.CompleteRun(runID, counts); err != nil {
			log.Warn("failed to record run completion", zap.Error(err))
		}
	}

	log.Info(fmt.Sprintf("Done. %s Last ID: %d", summary.Message(), summary.LastID))
	return summary, nil
}

func (s *ExportService) export(ctx context.Context, summary ExportSummary) (ExportSummary, error) {
	log := s.deps.Logger

	after, err := s.deps.Settings.LastExportedID()
	if err != nil {
		return summary, err
	}
	summary.LastID = after

	source, err := s.deps.OpenSource(summary.Drive)
	if err != nil {
		return summary, fmt.Errorf("failed to open device database: %w", err)
	}
	highlights, err := source.GetHighlights(after)
	if err != nil {
		return summary, fmt.Errorf("failed to read highlights: %w", err)
	}

	if len(highlights) == 0 {
		log.Info("No new highlights found.")
		return summary, nil
	}

	loc := s.deps.NewLocator(s.deps.Settings.ContextOptions())
	writers := s.deps.NewWriters(summary.ExportDir)
	exportedAt := s.deps.Now()
	books := make(map[string]struct{})

	maxID := after
	var cancelErr error
	for _, h := range highlights {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		label := h.BookLabel()
		log.Info("Exporting: "+label, zap.Int64("id", h.ID))

		entry := exporters.Entry{
			BookLabel:  label,
			Title:      h.CleanTitle(),
			Author:     h.CleanAuthor(),
			Note:       h.Note,
			ExportedAt: exportedAt,
		}
		window := loc.Locate(kobo.ResolveBookPath(summary.Drive, h.VolumeID), h.ContentID, h.Text, label)
		entry.Fragment = s.fragment(window, h.Text)

		if s.write(writers, entry) {
			summary.Highlights++
			if h.HasNote() {
				summary.Notes++
			}
			books[label] = struct{}{}
		} else {
			summary.Failed++
		}

		s.record(summary.RunID, h, entry, window)

		if h.ID > maxID {
			maxID = h.ID
		}
	}

	summary.Books = len(books)
	if maxID > after {
		if err := s.deps.Settings.SetLastExportedID(maxID); err != nil {
			return summary, fmt.Errorf("failed to save watermark: %w", err)
		}
	}
	summary.LastID = maxID

	if cancelErr != nil {
		return summary, fmt.Errorf("export interrupted: %w", cancelErr)
	}
	return summary, nil
}

// fragment marks the highlight inside its context. When the book is
// unavailable the highlight itself follows the placeholder, so the text is
// never lost.
func (s *ExportService) fragment(window, text string) string {
	if window == locator.SourceUnavailable {
		escaped := html.EscapeString(text)
		return window + "<p>" + s.deps.Marker.Mark(escaped, escaped) + "</p>"
	}
	return s.deps.Marker.Mark(window, text)
}

func (s *ExportService) write(writers []exporters.HighlightWriter, entry exporters.Entry) bool {
	ok := true
	for _, w := range writers {
		if err := w.Write(entry); err != nil {
			s.deps.Logger.Error("failed to write highlight",
				zap.String("book", entry.BookLabel),
				zap.String("writer", w.Name()),
				zap.Error(err))
			ok = false
		}
	}
	return ok
}

func (s *ExportService) record(runID string, h entities.Highlight, entry exporters.Entry, window string) {
	if s.deps.Exports == nil {
		return
	}
	err := s.deps.Exports.SaveHighlight(&entities.ExportedHighlight{
		BookmarkID: h.ID,
		RunID:      runID,
		BookLabel:  entry.BookLabel,
		Title:      entry.Title,
		Author:     entry.Author,
		Text:       h.Text,
		Note:       h.Note,
		Context:    window,
		Marked:     entry.Fragment,
		ExportedAt: entry.ExportedAt,
	})
	if err != nil {
		s.deps.Logger.Warn("failed to record exported highlight", zap.Int64("id", h.ID), zap.Error(err))
	}
}

func (s *ExportService) failRun(runID string, err error) {
	if s.deps.Runs == nil || runID == "" {
		return
	}
	if ferr := s.deps.Runs.FailRun(runID, err.Error()); ferr != nil {
		s.deps.Logger.Warn("failed to record run failure", zap.Error(ferr))
	}
}
