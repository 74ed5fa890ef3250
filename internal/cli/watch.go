package cli

import (
	"flag"

	"github.com/mrlokans/kobo-exporter/internal/app"
	"github.com/mrlokans/kobo-exporter/internal/kobo"
	"github.com/mrlokans/kobo-exporter/internal/scheduler"
)

// WatchCommand waits for a Kobo to be connected and exports each time one
// is plugged in.
type WatchCommand struct {
	base
	Schedule string
}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)

	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Schedule, "schedule", "", "Cron schedule for device checks (default from config, every 5 minutes)")
	fs.Usage = usage(fs, "watch [options]", "Check for a connected Kobo on a schedule and export when one appears. Stop with Ctrl+C.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Schedule != "" {
		return scheduler.ValidateCronSchedule(cmd.Schedule)
	}
	return nil
}

func (cmd *WatchCommand) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	schedule := cfg.Watch.Schedule
	if cmd.Schedule != "" {
		schedule = cmd.Schedule
	}

	a, err := app.New(cfg, app.Options{Console: cmd.out()})
	if err != nil {
		return err
	}
	defer a.Close()

	watcher := scheduler.NewDeviceWatcher(a.Export, func() (string, error) {
		return kobo.ResolveDrive(a.Settings.KoboDrive())
	}, schedule)

	ctx, stop := signalContext()
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	cmd.printf("👀 Watching for a Kobo (%s). Press Ctrl+C to stop.\n", scheduler.DescribeSchedule(schedule))

	// A device that is already connected is exported right away.
	watcher.Check(ctx)

	<-ctx.Done()
	watcher.Stop()
	cmd.println("👋 Stopped watching")
	return nil
}
