package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyLastExportedID    = "last_exported_id"
	SettingKeyContextWords      = "context_words"
	SettingKeyContextParagraphs = "context_paragraphs"
	SettingKeyKoboDrive         = "kobo_drive"
	SettingKeyExportDir         = "export_dir"
	SettingKeyLastDetectedDrive = "last_detected_drive"
)
