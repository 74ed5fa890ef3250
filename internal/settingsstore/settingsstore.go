package settingsstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mrlokans/kobo-exporter/internal/config"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/locator"
)

const (
	SourceDatabase = "database"
	SourceConfig   = "config"
)

var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Repository is the persistence the store needs.
type Repository interface {
	GetValue(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

type valueKind int

const (
	kindCount valueKind = iota // non-negative integer
	kindPath
)

var editable = map[string]valueKind{
	entities.SettingKeyLastExportedID:    kindCount,
	entities.SettingKeyContextWords:      kindCount,
	entities.SettingKeyContextParagraphs: kindCount,
	entities.SettingKeyKoboDrive:         kindPath,
	entities.SettingKeyExportDir:         kindPath,
}

// Keys lists the editable settings in display order.
var Keys = []string{
	entities.SettingKeyKoboDrive,
	entities.SettingKeyExportDir,
	entities.SettingKeyContextWords,
	entities.SettingKeyContextParagraphs,
	entities.SettingKeyLastExportedID,
}

// Priority: database > config (environment, config file) > default
type SettingsStore struct {
	repo Repository
	cfg  *config.Config
}

func New(repo Repository, cfg *config.Config) *SettingsStore {
	return &SettingsStore{repo: repo, cfg: cfg}
}

// SettingInfo is an effective value with where it came from.
type SettingInfo struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"` // "database" or "config"
}

// LastExportedID is the highest bookmark id already exported. Only the
// database holds it; a fresh install starts at 0.
func (s *SettingsStore) LastExportedID() (int64, error) {
	value, ok, err := s.repo.GetValue(entities.SettingKeyLastExportedID)
	if err != nil {
		return 0, fmt.Errorf("failed to read watermark: %w", err)
	}
	if !ok || value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, entities.SettingKeyLastExportedID, value)
	}
	return id, nil
}

func (s *SettingsStore) SetLastExportedID(id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: watermark must not be negative", ErrInvalidValue)
	}
	return s.repo.SetSetting(entities.SettingKeyLastExportedID, strconv.FormatInt(id, 10))
}

// KoboDrive returns the configured device mount point, empty for detection.
// Only an explicit override set by the user outranks the config value.
func (s *SettingsStore) KoboDrive() string {
	return s.stringValue(entities.SettingKeyKoboDrive, s.cfg.Kobo.Drive)
}

// RememberDrive records where the device was last found. It never
// changes which drive KoboDrive resolves to.
func (s *SettingsStore) RememberDrive(drive string) error {
	return s.repo.SetSetting(entities.SettingKeyLastDetectedDrive, drive)
}

// LastDetectedDrive is the mount point of the most recent export.
func (s *SettingsStore) LastDetectedDrive() string {
	return s.stringValue(entities.SettingKeyLastDetectedDrive, "")
}

func (s *SettingsStore) ExportDir() string {
	return s.stringValue(entities.SettingKeyExportDir, s.cfg.Export.Dir)
}

// ContextOptions returns the effective context settings, with the word
// count clamped to the configured maximum.
func (s *SettingsStore) ContextOptions() locator.Options {
	ctx := s.cfg.Context
	ctx.Words = s.intValue(entities.SettingKeyContextWords, ctx.Words)
	ctx.Paragraphs = s.intValue(entities.SettingKeyContextParagraphs, ctx.Paragraphs)

	return locator.Options{
		ContextWords:      ctx.ClampedWords(),
		ContextParagraphs: max(0, ctx.Paragraphs),
		PrefixLength:      ctx.PrefixLength,
		AnchorWords:       ctx.AnchorWords,
	}
}

// Set validates and stores an override.
func (s *SettingsStore) Set(key, value string) error {
	kind, ok := editable[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if kind == kindCount {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidValue, key, value)
		}
		value = strconv.FormatInt(n, 10)
	}
	return s.repo.SetSetting(key, value)
}

// Reset removes an override so the config value applies again.
func (s *SettingsStore) Reset(key string) error {
	if _, ok := editable[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.repo.DeleteSetting(key)
}

// Info returns every editable setting with its effective value.
func (s *SettingsStore) Info() []SettingInfo {
	defaults := map[string]string{
		entities.SettingKeyKoboDrive:         s.cfg.Kobo.Drive,
		entities.SettingKeyExportDir:         s.cfg.Export.Dir,
		entities.SettingKeyContextWords:      strconv.Itoa(s.cfg.Context.Words),
		entities.SettingKeyContextParagraphs: strconv.Itoa(s.cfg.Context.Paragraphs),
		entities.SettingKeyLastExportedID:    "0",
	}

	infos := make([]SettingInfo, 0, len(Keys))
	for _, key := range Keys {
		info := SettingInfo{Key: key, Value: defaults[key], Source: SourceConfig}
		if value, ok, err := s.repo.GetValue(key); err == nil && ok && value != "" {
			info.Value = value
			info.Source = SourceDatabase
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *SettingsStore) stringValue(key, fallback string) string {
	value, ok, err := s.repo.GetValue(key)
	if err == nil && ok && value != "" {
		return value
	}
	return fallback
}

func (s *SettingsStore) intValue(key string, fallback int) int {
	value, ok, err := s.repo.GetValue(key)
	if err != nil || !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
