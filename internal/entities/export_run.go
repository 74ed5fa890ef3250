package entities

import (
	"time"
)

type ExportStatus string

const (
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

type ExportTrigger string

const (
	ExportTriggerCLI      ExportTrigger = "cli"
	ExportTriggerSchedule ExportTrigger = "schedule"
	ExportTriggerHTTP     ExportTrigger = "http"
)

type ExportRun struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Trigger     ExportTrigger `gorm:"size:20" json:"trigger"`
	Status      ExportStatus  `gorm:"size:20;index" json:"status"`
	Drive       string        `gorm:"size:1024" json:"drive"`
	Highlights  int           `json:"highlights"`
	Notes       int           `json:"notes"`
	Books       int           `json:"books"`
	Failed      int           `json:"failed"`
	LastID      int64         `json:"last_id"`
	Error       string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time     `gorm:"index" json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

func (ExportRun) TableName() string {
	return "export_runs"
}
