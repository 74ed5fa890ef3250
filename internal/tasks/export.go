package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/services"
)

// ExportRunner runs one export.
type ExportRunner interface {
	Run(ctx context.Context, trigger entities.ExportTrigger) (services.ExportSummary, error)
}

// ExportTask asks for an export of new highlights.
type ExportTask struct {
	Trigger     entities.ExportTrigger `json:"trigger"`
	RequestedAt time.Time              `json:"requested_at"`
}

// Config returns the queue configuration for export tasks.
func (t ExportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "export_highlights",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportProcessor creates a processor function for ExportTask. A request
// that arrives while another export runs is dropped; the running export
// already picks up everything new.
func ExportProcessor(runner ExportRunner, logger *zap.Logger) backlite.QueueProcessor[ExportTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task ExportTask) error {
		if runner == nil {
			return fmt.Errorf("export runner not configured")
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = entities.ExportTriggerHTTP
		}

		summary, err := runner.Run(ctx, trigger)
		if errors.Is(err, services.ErrExportInProgress) {
			logger.Info("[TASK] export skipped, another export is running")
			return nil
		}
		if err != nil {
			return fmt.Errorf("export highlights: %w", err)
		}

		logger.Info("[TASK] "+summary.Message(), zap.String("run_id", summary.RunID), zap.Int64("last_id", summary.LastID))
		return nil
	}
}

// NewExportQueue creates a backlite queue for export tasks.
func NewExportQueue(runner ExportRunner, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ExportProcessor(runner, logger))
}

// EnqueueExport adds an export task and returns its id.
func (c *Client) EnqueueExport(trigger entities.ExportTrigger) (string, error) {
	ids, err := c.Add(ExportTask{Trigger: trigger, RequestedAt: time.Now()}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue export: %w", err)
	}
	return ids[0], nil
}
