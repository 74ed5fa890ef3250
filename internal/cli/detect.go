package cli

import (
	"flag"
	"fmt"

	"github.com/mrlokans/kobo-exporter/internal/app"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
)

// DetectCommand reports the connected device and how many highlights
// are waiting to be exported.
type DetectCommand struct {
	base
	Drive string
}

func NewDetectCommand() *DetectCommand {
	return &DetectCommand{}
}

func (cmd *DetectCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)

	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Drive, "drive", "", "Mount point to check instead of the remembered or detected one")
	fs.Usage = usage(fs, "detect [options]", "Look for a connected Kobo and count highlights not yet exported.")

	return fs.Parse(args)
}

func (cmd *DetectCommand) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{Console: cmd.out()})
	if err != nil {
		return err
	}
	defer a.Close()

	configured := cmd.Drive
	if configured == "" {
		configured = a.Settings.KoboDrive()
	}

	drive, err := kobo.ResolveDrive(configured)
	if err != nil {
		if last := a.Settings.LastDetectedDrive(); last != "" {
			return fmt.Errorf("%w (last seen at %s)", err, last)
		}
		return err
	}
	cmd.printf("📱 Kobo found at %s\n", drive)
	cmd.printf("📁 Database: %s\n", kobo.DatabasePath(drive))

	lastID, err := a.Settings.LastExportedID()
	if err != nil {
		return fmt.Errorf("failed to read last exported id: %w", err)
	}

	reader, err := kobo.NewReader(drive, cfg.Export.TempDir)
	if err != nil {
		return err
	}
	highlights, err := reader.GetHighlights(lastID)
	if err != nil {
		return err
	}

	books := make(map[string]struct{})
	for _, h := range highlights {
		books[h.BookLabel()] = struct{}{}
	}
	cmd.printf("📝 %d new highlights in %d books (last exported id: %d)\n", len(highlights), len(books), lastID)
	return nil
}
