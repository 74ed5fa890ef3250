// Package runs records the history of export runs.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	run, err := repo.StartRun(entities.ExportTriggerCLI, drive)
//	...
//	err = repo.CompleteRun(run.ID, stats)
package runs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/kobo-exporter/internal/entities"
)

// StaleAfter is how long a run may stay in the running state before it is
// considered interrupted.
const StaleAfter = 30 * time.Minute

// Counts are the totals a finished run reports.
type Counts struct {
	Highlights int
	Notes      int
	Books      int
	Failed     int
	LastID     int64
}

// Repository handles all export run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun creates a run in the running state.
func (r *Repository) StartRun(trigger entities.ExportTrigger, drive string) (*entities.ExportRun, error) {
	run := &entities.ExportRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    entities.ExportStatusRunning,
		Drive:     drive,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteRun marks a run as completed with its totals.
func (r *Repository) CompleteRun(id string, counts Counts) error {
	return r.db.Model(&entities.ExportRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       entities.ExportStatusCompleted,
			"highlights":   counts.Highlights,
			"notes":        counts.Notes,
			"books":        counts.Books,
			"failed":       counts.Failed,
			"last_id":      counts.LastID,
			"completed_at": time.Now(),
		}).Error
}

// FailRun marks a run as failed.
func (r *Repository) FailRun(id string, errorMsg string) error {
	return r.db.Model(&entities.ExportRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       entities.ExportStatusFailed,
			"error":        errorMsg,
			"completed_at": time.Now(),
		}).Error
}

// GetRun retrieves a run by id.
func (r *Repository) GetRun(id string) (*entities.ExportRun, error) {
	var run entities.ExportRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (r *Repository) ListRuns(limit int) ([]entities.ExportRun, error) {
	var list []entities.ExportRun
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}

// IsRunning reports whether an export is in progress. Runs left in the
// running state for longer than StaleAfter are marked failed.
func (r *Repository) IsRunning() (bool, error) {
	var run entities.ExportRun
	err := r.db.Where("status = ?", entities.ExportStatusRunning).
		Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if run.StartedAt.Before(time.Now().Add(-StaleAfter)) {
		_ = r.FailRun(run.ID, "export was interrupted")
		return false, nil
	}

	return true, nil
}
