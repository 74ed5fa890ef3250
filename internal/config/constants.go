package config

const (
	// DefaultDatabasePath is where the exporter keeps its own state.
	DefaultDatabasePath = "./kobo-exporter.db"

	// DefaultExportDir receives one file per book.
	DefaultExportDir = "Exported"

	// DefaultLogFile is the append-only diagnostic log.
	DefaultLogFile = "export_history.log"

	// DefaultContextWords is the word window on each side of a highlight.
	DefaultContextWords = 30

	// DefaultMaxContextWords caps ContextWords.
	DefaultMaxContextWords = 100

	// ConfigFileEnv names a config file to load instead of ./config.{json,yaml}.
	ConfigFileEnv = "KOBO_EXPORTER_CONFIG"
)
