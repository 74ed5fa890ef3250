package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kobo-exporter/internal/database"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/services"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// ExportController triggers exports and reports their history.
type ExportController struct {
	exporter ExportRunner
	queue    TaskQueue
	runs     RunStore
	books    BookStore
}

// NewExportController creates a new ExportController. With a queue,
// exports run in the background; otherwise the request waits for the
// export to finish.
func NewExportController(exporter ExportRunner, queue TaskQueue, runs RunStore, books BookStore) *ExportController {
	return &ExportController{
		exporter: exporter,
		queue:    queue,
		runs:     runs,
		books:    books,
	}
}

// RunExport handles POST /api/export
func (ec *ExportController) RunExport(c *gin.Context) {
	if ec.queue != nil {
		taskID, err := ec.queue.EnqueueExport(entities.ExportTriggerHTTP)
		if err != nil {
			respondInternalError(c, err, "enqueue export")
			return
		}
		respondAccepted(c, "export enqueued", gin.H{"task_id": taskID})
		return
	}

	if ec.exporter == nil {
		respondError(c, http.StatusServiceUnavailable, "export_unavailable", "export is not configured")
		return
	}

	summary, err := ec.exporter.Run(c.Request.Context(), entities.ExportTriggerHTTP)
	switch {
	case errors.Is(err, services.ErrExportInProgress):
		respondError(c, http.StatusConflict, "export_in_progress", err.Error())
	case errors.Is(err, kobo.ErrDeviceNotFound):
		respondError(c, http.StatusNotFound, "device_not_found", err.Error())
	case err != nil:
		respondInternalError(c, err, "run export")
	default:
		respondSuccess(c, summary.Message(), summary)
	}
}

// GetTaskStatus handles GET /api/tasks/:id
func (ec *ExportController) GetTaskStatus(c *gin.Context) {
	if ec.queue == nil {
		respondNotFound(c, "task queue")
		return
	}

	taskID := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := ec.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// ListRuns handles GET /api/runs
func (ec *ExportController) ListRuns(c *gin.Context) {
	limit, ok := parseLimit(c, defaultRunsLimit, maxRunsLimit)
	if !ok {
		return
	}

	runs, err := ec.runs.ListRuns(limit)
	if err != nil {
		respondInternalError(c, err, "list runs")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// GetRun handles GET /api/runs/:id and includes the highlights the run
// exported.
func (ec *ExportController) GetRun(c *gin.Context) {
	run, err := ec.runs.GetRun(c.Param("id"))
	if database.IsNotFound(err) {
		respondNotFound(c, "run")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get run")
		return
	}

	highlights, err := ec.books.GetRunHighlights(run.ID)
	if err != nil {
		respondInternalError(c, err, "run highlights")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"run": run, "highlights": highlights})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
