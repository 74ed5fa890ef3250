package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Kobo
		Export
		Context
		Logging
		HTTP
		Database
		Watch
		Tasks
		Global
	}

	Kobo struct {
		Drive string // Mount point of the device; detected when empty
	}
	Export struct {
		Dir                string
		Markdown           bool // Write a Markdown file next to each HTML file
		OpenFolderOnFinish bool
		TempDir            string // Where the device database is copied; system temp when empty
	}
	Context struct {
		Words        int // Words on each side of the highlight (word mode)
		Paragraphs   int // Blocks on each side; 0 selects word mode
		MaxWords     int
		PrefixLength int
		AnchorWords  int
	}
	Logging struct {
		File    string
		Verbose bool
	}
	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Watch struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}
	Tasks struct {
		Enabled         bool
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// ClampedWords returns Words limited to [0, MaxWords].
func (c Context) ClampedWords() int {
	words := max(0, c.Words)
	if c.MaxWords > 0 && words > c.MaxWords {
		return c.MaxWords
	}
	return words
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kobo_drive", "")
	v.SetDefault("export_dir", DefaultExportDir)
	v.SetDefault("export_markdown", false)
	v.SetDefault("open_folder_on_finish", true)
	v.SetDefault("temp_dir", "")

	v.SetDefault("context_words", DefaultContextWords)
	v.SetDefault("context_paragraphs", 0)
	v.SetDefault("max_context_words", DefaultMaxContextWords)
	v.SetDefault("prefix_length", 30)
	v.SetDefault("anchor_words", 3)

	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("verbose", false)

	v.SetDefault("port", 8189)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("watch_enabled", true)
	v.SetDefault("watch_schedule", "*/5 * * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
}

// NewConfig reads configuration from the environment and an optional
// config file, falling back to defaults.
func NewConfig() *Config {
	cfg, err := Load(os.Getenv(ConfigFileEnv))
	if err != nil {
		// An unreadable file must not stop the tool; environment and
		// defaults still apply.
		v := viper.New()
		v.AutomaticEnv()
		setDefaults(v)
		return fromViper(v)
	}
	return cfg
}

// Load reads configuration from path, or from config.{json,yaml} in the
// working directory when path is empty. A missing default file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Kobo: Kobo{
			Drive: v.GetString("KOBO_DRIVE"),
		},
		Export: Export{
			Dir:                v.GetString("EXPORT_DIR"),
			Markdown:           v.GetBool("EXPORT_MARKDOWN"),
			OpenFolderOnFinish: v.GetBool("OPEN_FOLDER_ON_FINISH"),
			TempDir:            v.GetString("TEMP_DIR"),
		},
		Context: Context{
			Words:        v.GetInt("CONTEXT_WORDS"),
			Paragraphs:   v.GetInt("CONTEXT_PARAGRAPHS"),
			MaxWords:     v.GetInt("MAX_CONTEXT_WORDS"),
			PrefixLength: v.GetInt("PREFIX_LENGTH"),
			AnchorWords:  v.GetInt("ANCHOR_WORDS"),
		},
		Logging: Logging{
			File:    v.GetString("LOG_FILE"),
			Verbose: v.GetBool("VERBOSE"),
		},
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Watch: Watch{
			Enabled:  v.GetBool("WATCH_ENABLED"),
			Schedule: v.GetString("WATCH_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
