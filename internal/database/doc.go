// Package database stores the exporter's local state.
//
// The device database is never written to. What the exporter remembers
// between runs lives here instead:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── settings/        # Watermark and user overrides
//	├── runs/            # Export run history
//	└── exports/         # Highlights as written to the output files
//
// Each sub-package provides a Repository over the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./kobo-exporter.db")
//	runsRepo := runs.NewRepository(db.DB)
//	run, err := runsRepo.StartRun(entities.ExportTriggerCLI, drive)
package database
