package runs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kobo-exporter/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "runs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.ExportRun{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

func TestRepository_StartRun(t *testing.T) {
	repo, _ := setupTestDB(t)

	run, err := repo.StartRun(entities.ExportTriggerCLI, "/media/KOBOeReader")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)

	stored, err := repo.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ExportStatusRunning, stored.Status)
	assert.Equal(t, entities.ExportTriggerCLI, stored.Trigger)
	assert.Equal(t, "/media/KOBOeReader", stored.Drive)
	assert.Nil(t, stored.CompletedAt)
}

func TestRepository_CompleteRun(t *testing.T) {
	repo, _ := setupTestDB(t)

	run, err := repo.StartRun(entities.ExportTriggerHTTP, "")
	require.NoError(t, err)

	err = repo.CompleteRun(run.ID, Counts{Highlights: 5, Notes: 2, Books: 3, LastID: 99})
	require.NoError(t, err)

	stored, err := repo.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ExportStatusCompleted, stored.Status)
	assert.Equal(t, 5, stored.Highlights)
	assert.Equal(t, 2, stored.Notes)
	assert.Equal(t, 3, stored.Books)
	assert.Equal(t, int64(99), stored.LastID)
	assert.NotNil(t, stored.CompletedAt)
}

func TestRepository_FailRun(t *testing.T) {
	repo, _ := setupTestDB(t)

	run, err := repo.StartRun(entities.ExportTriggerSchedule, "")
	require.NoError(t, err)
	require.NoError(t, repo.FailRun(run.ID, "device disappeared"))

	stored, err := repo.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ExportStatusFailed, stored.Status)
	assert.Equal(t, "device disappeared", stored.Error)
}

func TestRepository_ListRuns(t *testing.T) {
	repo, db := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&entities.ExportRun{
			ID:        string(rune('a'+i)) + "-run",
			Status:    entities.ExportStatusCompleted,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	list, err := repo.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c-run", list[0].ID)
	assert.Equal(t, "b-run", list[1].ID)
}

func TestRepository_IsRunning(t *testing.T) {
	repo, db := setupTestDB(t)

	running, err := repo.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)

	run, err := repo.StartRun(entities.ExportTriggerCLI, "")
	require.NoError(t, err)

	running, err = repo.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)

	require.NoError(t, db.Model(&entities.ExportRun{}).Where("id = ?", run.ID).
		Update("started_at", time.Now().Add(-2*StaleAfter)).Error)

	running, err = repo.IsRunning()
	require.NoError(t, err)
	assert.False(t, running, "stale runs are not considered running")

	stored, err := repo.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ExportStatusFailed, stored.Status)
}
