package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	var console bytes.Buffer

	logger, cleanup, err := New(Options{File: path, Console: &console})
	require.NoError(t, err)

	logger.Error("context extraction failed", zap.String("book", "Ann Leckie - Ancillary Justice"))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ERROR")
	assert.Contains(t, string(data), "context extraction failed")
	assert.Contains(t, string(data), "Ann Leckie - Ancillary Justice")
	assert.Empty(t, console.String(), "console stays quiet unless verbose")
}

func TestNew_VerboseEchoesToConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")
	var console bytes.Buffer

	logger, cleanup, err := New(Options{File: path, Verbose: true, Console: &console})
	require.NoError(t, err)

	logger.Info("Exporting", zap.String("book", "Some Book"))
	cleanup()

	assert.Contains(t, console.String(), "Exporting")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exporting")
}

func TestNew_AppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.log")

	for _, msg := range []string{"first session", "second session"} {
		logger, cleanup, err := New(Options{File: path})
		require.NoError(t, err)
		logger.Info(msg)
		cleanup()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first session")
	assert.Contains(t, string(data), "second session")
}

func TestNew_UnwritablePath(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "log.txt")})
	assert.Error(t, err)
}
