package cli

import (
	"flag"
	"fmt"

	"github.com/mrlokans/kobo-exporter/internal/app"
	"github.com/mrlokans/kobo-exporter/internal/entities"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/utils"
)

// ExportCommand exports every highlight made since the previous export.
type ExportCommand struct {
	base

	Drive    string
	Markdown bool
	NoOpen   bool

	// OpenFolder reveals the export directory; utils.OpenFolder when nil.
	OpenFolder func(dir string) error
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Drive, "drive", "", "Mount point of the Kobo (detected when empty)")
	fs.BoolVar(&cmd.Markdown, "markdown", false, "Also write a Markdown file per book")
	fs.BoolVar(&cmd.NoOpen, "no-open", false, "Do not open the export folder when done")

	fs.Usage = usage(fs, "export [options]",
		"Export new Kobo highlights into one HTML file per book.",
		"",
		"Only highlights made since the previous export are written; files are",
		"appended to, so earlier exports are kept.",
	)

	return fs.Parse(args)
}

func (cmd *ExportCommand) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Markdown {
		cfg.Export.Markdown = true
	}

	opts := app.Options{Console: cmd.out()}
	if cmd.Drive != "" {
		drive := cmd.Drive
		opts.ResolveDrive = func(string) (string, error) {
			return kobo.ResolveDrive(drive)
		}
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd.println("📚 Kobo Highlights Export")
	cmd.println("=========================")

	ctx, stop := signalContext()
	defer stop()

	summary, err := a.Export.Run(ctx, entities.ExportTriggerCLI)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.printf("📁 Device: %s\n", summary.Drive)
	if summary.Highlights == 0 && summary.Failed == 0 {
		cmd.println("ℹ️  No new highlights found")
		return nil
	}

	cmd.printf("✅ %s\n", summary.Message())
	if summary.Failed > 0 {
		cmd.printf("⚠️  %d highlights could not be written, see %s\n", summary.Failed, cfg.Logging.File)
	}
	cmd.printf("📄 Files in: %s\n", summary.ExportDir)

	if cfg.Export.OpenFolderOnFinish && !cmd.NoOpen && summary.Highlights > 0 {
		open := cmd.OpenFolder
		if open == nil {
			open = utils.OpenFolder
		}
		if err := open(summary.ExportDir); err != nil {
			cmd.printf("⚠️  %v\n", err)
		}
	}
	return nil
}
