package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mrlokans/kobo-exporter/internal/database/runs"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/exporters"
	"github.com/mrlokans/kobo-exporter/internal/locator"
	"github.com/mrlokans/kobo-exporter/internal/marker"
)

type memorySettings struct {
	lastID     int64
	drive      string
	remembered string
	dir        string
	opts       locator.Options
	failSet    bool
}

func (m *memorySettings) LastExportedID() (int64, error) { return m.lastID, nil }
func (m *memorySettings) SetLastExportedID(id int64) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.lastID = id
	return nil
}
func (m *memorySettings) KoboDrive() string { return m.drive }
func (m *memorySettings) RememberDrive(drive string) error {
	m.remembered = drive
	return nil
}
func (m *memorySettings) ExportDir() string { return m.dir }
func (m *memorySettings) ContextOptions() locator.Options { return m.opts }

type staticSource struct {
	highlights []entities.Highlight
	gotAfter   int64
}

func (s *staticSource) GetHighlights(afterID int64) ([]entities.Highlight, error) {
	s.gotAfter = afterID
	var out []entities.Highlight
	for _, h := range s.highlights {
		if h.ID > afterID {
			out = append(out, h)
		}
	}
	return out, nil
}

// echoLocator returns the highlight wrapped in a paragraph, or the
// placeholder for books listed as missing.
type echoLocator struct {
	missing map[string]bool
	paths   []string
}

func (l *echoLocator) Locate(archivePath, _, highlight, _ string) string {
	l.paths = append(l.paths, archivePath)
	if l.missing[filepath.Base(archivePath)] {
		return locator.SourceUnavailable
	}
	return "<p>before " + highlight + " after</p>"
}

type recordingWriter struct {
	mu      sync.Mutex
	entries []exporters.Entry
	failFor string
	block   chan struct{}
	entered chan struct{}
}

func (w *recordingWriter) Name() string { return "recording" }
func (w *recordingWriter) Write(e exporters.Entry) error {
	if w.entered != nil {
		select {
		case w.entered <- struct{}{}:
		default:
		}
	}
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failFor != "" && strings.Contains(e.Fragment, w.failFor) {
		return errors.New("write failed")
	}
	w.entries = append(w.entries, e)
	return nil
}

type memoryRuns struct {
	started   int
	completed map[string]runs.Counts
	failed    map[string]string
}

func (m *memoryRuns) StartRun(trigger entities.ExportTrigger, drive string) (*entities.ExportRun, error) {
	m.started++
	return &entities.ExportRun{ID: "run-1", Trigger: trigger, Drive: drive}, nil
}
func (m *memoryRuns) CompleteRun(id string, counts runs.Counts) error {
	if m.completed == nil {
		m.completed = map[string]runs.Counts{}
	}
	m.completed[id] = counts
	return nil
}
func (m *memoryRuns) FailRun(id string, msg string) error {
	if m.failed == nil {
		m.failed = map[string]string{}
	}
	m.failed[id] = msg
	return nil
}

type memoryExports struct {
	saved []entities.ExportedHighlight
}

func (m *memoryExports) SaveHighlight(h *entities.ExportedHighlight) error {
	m.saved = append(m.saved, *h)
	return nil
}

const vol = "file:///mnt/onboard/Leckie/Ancillary Justice.kepub.epub"

func sampleHighlights() []entities.Highlight {
	return []entities.Highlight{
		{ID: 3, VolumeID: vol, ContentID: vol + "#(1)c1.xhtml", Text: "first words here", BookTitle: "Ancillary Justice", BookAuthor: "Leckie, Ann"},
		{ID: 5, VolumeID: vol, ContentID: vol + "#(2)c2.xhtml", Text: "second words here", Note: "a note", BookTitle: "Ancillary Justice", BookAuthor: "Leckie, Ann"},
		{ID: 8, VolumeID: "file:///mnt/onboard/Other.epub", ContentID: "x#(1)c.xhtml", Text: "third words here", BookTitle: "Other", BookAuthor: ""},
	}
}

type fixture struct {
	settings *memorySettings
	source   *staticSource
	locator  *echoLocator
	writer   *recordingWriter
	runs     *memoryRuns
	exports  *memoryExports
	logs     *observer.ObservedLogs
	service  *ExportService
}

func newFixture(t *testing.T, highlights []entities.Highlight) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	f := &fixture{
		settings: &memorySettings{dir: t.TempDir(), opts: locator.Options{ContextWords: 30}},
		source:   &staticSource{highlights: highlights},
		locator:  &echoLocator{missing: map[string]bool{}},
		writer:   &recordingWriter{},
		runs:     &memoryRuns{},
		exports:  &memoryExports{},
		logs:     logs,
	}
	f.service = NewExportService(ExportServiceDeps{
		Settings:     f.settings,
		ResolveDrive: func(string) (string, error) { return "/media/KOBOeReader", nil },
		OpenSource:   func(string) (HighlightSource, error) { return f.source, nil },
		NewLocator:   func(locator.Options) ContextLocator { return f.locator },
		Marker:       marker.New(),
		NewWriters:   func(string) []exporters.HighlightWriter { return []exporters.HighlightWriter{f.writer} },
		Runs:         f.runs,
		Exports:      f.exports,
		Logger:       zap.New(core),
		Now:          func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) },
	})
	return f
}

func TestExportService_Run(t *testing.T) {
	f := newFixture(t, sampleHighlights())

	summary, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Highlights)
	assert.Equal(t, 1, summary.Notes)
	assert.Equal(t, 2, summary.Books)
	assert.Equal(t, int64(8), summary.LastID)
	assert.Equal(t, "/media/KOBOeReader", summary.Drive)
	assert.Equal(t, "Exported 3 highlights and 1 notes from 2 books.", summary.Message())

	assert.Equal(t, int64(8), f.settings.lastID, "watermark advances to the max id")
	assert.Equal(t, "/media/KOBOeReader", f.settings.remembered)

	require.Len(t, f.writer.entries, 3)
	first := f.writer.entries[0]
	assert.Equal(t, "Ann Leckie - Ancillary Justice", first.BookLabel)
	assert.Equal(t, "<p>before <mark>first words here</mark> after</p>", first.Fragment)
	assert.Equal(t, "Unknown Author - Other", f.writer.entries[2].BookLabel)

	assert.Equal(t, filepath.Join("/media/KOBOeReader", ".kobo", "kepub", "Ancillary Justice.kepub.epub"), f.locator.paths[0])

	assert.Equal(t, runs.Counts{Highlights: 3, Notes: 1, Books: 2, LastID: 8}, f.runs.completed["run-1"])
	require.Len(t, f.exports.saved, 3)
	assert.Equal(t, "run-1", f.exports.saved[0].RunID)
	assert.Equal(t, "<p>before first words here after</p>", f.exports.saved[0].Context)
}

func TestExportService_RunOnlyExportsAboveWatermark(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.settings.lastID = 5

	summary, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	assert.Equal(t, int64(5), f.source.gotAfter)
	assert.Equal(t, 1, summary.Highlights)
	assert.Equal(t, int64(8), f.settings.lastID)
}

func TestExportService_RunNoNewHighlights(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.settings.lastID = 8

	summary, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	assert.Zero(t, summary.Highlights)
	assert.Equal(t, int64(8), summary.LastID)
	assert.Equal(t, int64(8), f.settings.lastID)
	assert.Empty(t, f.writer.entries)
	assert.Equal(t, 1, f.logs.FilterMessage("No new highlights found.").Len())
}

func TestExportService_MissingBookKeepsHighlightText(t *testing.T) {
	f := newFixture(t, sampleHighlights()[2:])
	f.locator.missing["Other.epub"] = true

	_, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	require.Len(t, f.writer.entries, 1)
	assert.Equal(t,
		locator.SourceUnavailable+"<p><mark>third words here</mark></p>",
		f.writer.entries[0].Fragment)
}

func TestExportService_WriteFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.writer.failFor = "second"

	summary, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Highlights)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Notes, "the highlight with the note failed")
	assert.Equal(t, int64(8), f.settings.lastID)
	assert.Equal(t, 1, f.logs.FilterMessage("failed to write highlight").Len())
}

func TestExportService_DriveError(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.service.deps.ResolveDrive = func(string) (string, error) { return "", errors.New("no device") }

	_, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device")
	assert.Zero(t, f.runs.started)
}

func TestExportService_WatermarkSaveFailureFailsRun(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.settings.failSet = true

	_, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.Error(t, err)
	assert.Contains(t, f.runs.failed["run-1"], "disk full")
}

func TestExportService_CancelledContextStopsAndKeepsProgress(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.service.Run(ctx, entities.ExportTriggerCLI)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Highlights)
	assert.Zero(t, f.settings.lastID)
	assert.Contains(t, f.runs.failed, "run-1")
}

func TestExportService_RejectsConcurrentRuns(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.writer.block = make(chan struct{})
	f.writer.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Run(context.Background(), entities.ExportTriggerHTTP)
		done <- err
	}()

	select {
	case <-f.writer.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first export never reached the writer")
	}

	_, err := f.service.Run(context.Background(), entities.ExportTriggerSchedule)
	assert.ErrorIs(t, err, ErrExportInProgress)

	close(f.writer.block)
	require.NoError(t, <-done)
}

func TestExportService_WritesRealFiles(t *testing.T) {
	f := newFixture(t, sampleHighlights())
	f.service.deps.NewWriters = func(dir string) []exporters.HighlightWriter {
		return []exporters.HighlightWriter{exporters.NewHTMLWriter(dir)}
	}

	_, err := f.service.Run(context.Background(), entities.ExportTriggerCLI)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.settings.dir, "Ann Leckie - Ancillary Justice.html"))
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "<h1>"))
	assert.Equal(t, 2, strings.Count(content, "<div class='note-block'>"))
	assert.Contains(t, content, "<b>My Note:</b> a note")
}
