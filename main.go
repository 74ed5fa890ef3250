package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mrlokans/kobo-exporter/internal/cli"
	"github.com/mrlokans/kobo-exporter/internal/config"
	"github.com/mrlokans/kobo-exporter/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	command := "export"
	args := os.Args[1:]
	// Without a subcommand, or with only flags, run an export.
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	var cmd cli.Command
	switch command {
	case "export":
		cmd = cli.NewExportCommand()
	case "detect":
		cmd = cli.NewDetectCommand()
	case "settings":
		cmd = cli.NewSettingsCommand()
	case "watch":
		cmd = cli.NewWatchCommand()

	case "serve":
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return

	case "version":
		fmt.Printf("kobo-exporter %s (%s)\n", Version, Commit)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  export     Export new highlights from a connected Kobo (default)\n")
	fmt.Fprintf(os.Stderr, "  detect     Show the connected Kobo and pending highlights\n")
	fmt.Fprintf(os.Stderr, "  settings   List or change stored settings\n")
	fmt.Fprintf(os.Stderr, "  watch      Export whenever a Kobo is connected\n")
	fmt.Fprintf(os.Stderr, "  serve      Run the local web viewer and export API\n")
	fmt.Fprintf(os.Stderr, "  version    Print version information\n")
	fmt.Fprintf(os.Stderr, "\nRun '%s <command> -h' for command options.\n", os.Args[0])
}
