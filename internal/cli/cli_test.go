package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kobo-exporter/internal/config"
	"github.com/mrlokans/kobo-exporter/internal/testutil"
)

const volume = "file:///mnt/onboard/Books/Harbour.epub"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Export: config.Export{Dir: filepath.Join(dir, "Exported"), OpenFolderOnFinish: true},
		Context: config.Context{
			Words:        5,
			MaxWords:     100,
			PrefixLength: 30,
			AnchorWords:  3,
		},
		Logging:  config.Logging{File: filepath.Join(dir, "export_history.log")},
		Database: config.Database{Path: filepath.Join(dir, "state.db")},
		Watch:    config.Watch{Schedule: "*/5 * * * *"},
	}
}

func setupDevice(t *testing.T) string {
	t.Helper()
	drive := t.TempDir()

	books := filepath.Join(drive, "Books")
	require.NoError(t, os.MkdirAll(books, 0755))
	testutil.WriteEPUB(t, books, "Harbour.epub", map[string]string{
		"ch1.xhtml": testutil.XHTML("<p>She walked along the pier, counting the boats one by one.</p>"),
	})

	return testutil.WriteKoboDevice(t, drive,
		[]testutil.Bookmark{
			{ID: "1", VolumeID: volume, ContentID: volume + "#(1)ch1.xhtml", Text: "counting the boats", Annotation: "nice"},
			{ID: "2", VolumeID: volume, ContentID: volume + "#(1)ch1.xhtml", Text: "walked along the pier"},
		},
		[]testutil.Content{
			{ContentID: volume, Title: "The Harbour", Attribution: "Doe, Jane"},
		},
	)
}

func TestExportCommand_Run(t *testing.T) {
	var out bytes.Buffer
	var opened []string

	cmd := NewExportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-drive", setupDevice(t)}))
	cmd.Config = testConfig(t)
	cmd.Out = &out
	cmd.OpenFolder = func(dir string) error {
		opened = append(opened, dir)
		return nil
	}

	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "Exported 2 highlights and 1 notes from 1 books.")
	assert.Equal(t, []string{cmd.Config.Export.Dir}, opened)
	_, err := os.Stat(filepath.Join(cmd.Config.Export.Dir, "Jane Doe - The Harbour.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cmd.Config.Export.Dir, "Jane Doe - The Harbour.md"))
	assert.True(t, os.IsNotExist(err), "markdown is off by default")
}

func TestExportCommand_NothingNew(t *testing.T) {
	cfg := testConfig(t)
	drive := setupDevice(t)

	first := NewExportCommand()
	require.NoError(t, first.ParseFlags([]string{"-drive", drive, "-no-open", "-markdown"}))
	first.Config = cfg
	first.Out = &bytes.Buffer{}
	require.NoError(t, first.Run())
	_, err := os.Stat(filepath.Join(cfg.Export.Dir, "Jane Doe - The Harbour.md"))
	assert.NoError(t, err)

	var out bytes.Buffer
	second := NewExportCommand()
	require.NoError(t, second.ParseFlags([]string{"-drive", drive}))
	second.Config = cfg
	second.Out = &out
	second.OpenFolder = func(string) error {
		t.Fatal("folder must not open when nothing was exported")
		return nil
	}

	require.NoError(t, second.Run())
	assert.Contains(t, out.String(), "No new highlights found")
}

func TestDetectCommand_Run(t *testing.T) {
	var out bytes.Buffer
	drive := setupDevice(t)

	cmd := NewDetectCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-drive", drive}))
	cmd.Config = testConfig(t)
	cmd.Out = &out

	require.NoError(t, cmd.Run())

	assert.Contains(t, out.String(), "Kobo found at")
	assert.Contains(t, out.String(), "2 new highlights in 1 books (last exported id: 0)")
}

func TestSettingsCommand(t *testing.T) {
	cfg := testConfig(t)

	run := func(t *testing.T, args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewSettingsCommand()
		require.NoError(t, cmd.ParseFlags(args))
		cmd.Config = cfg
		cmd.Out = &out
		require.NoError(t, cmd.Run())
		return out.String()
	}

	listing := run(t)
	assert.Contains(t, listing, "context_words")
	assert.Contains(t, listing, "(auto)", "empty drive is detected")

	assert.Contains(t, run(t, "set", "context_paragraphs", "2"), "context_paragraphs = 2")
	assert.Regexp(t, `context_paragraphs\s+2\s+database`, run(t, "list"))

	assert.Contains(t, run(t, "reset", "context_paragraphs"), "context_paragraphs reset")
	assert.Regexp(t, `context_paragraphs\s+0\s+config`, run(t, "list"))
}

func TestSettingsCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown action", []string{"frobnicate"}},
		{"set without value", []string{"set", "context_words"}},
		{"reset without key", []string{"reset"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewSettingsCommand().ParseFlags(tt.args))
		})
	}

	cmd := NewSettingsCommand()
	require.NoError(t, cmd.ParseFlags([]string{"set", "context_words", "lots"}))
	cmd.Config = testConfig(t)
	cmd.Out = &bytes.Buffer{}
	assert.ErrorContains(t, cmd.Run(), "non-negative integer")
}

func TestWatchCommand_ParseFlags(t *testing.T) {
	assert.NoError(t, NewWatchCommand().ParseFlags([]string{"-schedule", "*/10 * * * *"}))
	assert.Error(t, NewWatchCommand().ParseFlags([]string{"-schedule", "sometimes"}))
}

func TestLoadConfig_VerboseFlag(t *testing.T) {
	cmd := NewExportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-verbose"}))
	cmd.Config = testConfig(t)

	cfg, err := cmd.loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Logging.Verbose)
}
