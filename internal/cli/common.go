// Package cli implements the exporter's subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/kobo-exporter/internal/config"
)

// Command is a parsed subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// base holds what every command shares: where its configuration comes
// from and where it prints.
type base struct {
	ConfigPath string
	Verbose    bool

	// Config, when set, is used instead of loading ConfigPath.
	Config *config.Config
	// Out receives user-facing output; stdout when nil.
	Out io.Writer
}

func (b *base) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&b.ConfigPath, "config", "", "Path to a config file (JSON or YAML); config.json/config.yaml in the working directory by default")
	fs.BoolVar(&b.Verbose, "verbose", false, "Echo diagnostic log entries to the console")
}

func (b *base) loadConfig() (*config.Config, error) {
	cfg := b.Config
	if cfg == nil {
		var err error
		path := b.ConfigPath
		if path == "" {
			path = os.Getenv(config.ConfigFileEnv)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if b.Verbose {
		cfg.Logging.Verbose = true
	}
	return cfg, nil
}

func (b *base) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b *base) printf(format string, args ...any) {
	fmt.Fprintf(b.out(), format, args...)
}

func (b *base) println(args ...any) {
	fmt.Fprintln(b.out(), args...)
}

func usage(fs *flag.FlagSet, synopsis string, description ...string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s\n\n", os.Args[0], synopsis)
		for _, line := range description {
			fmt.Fprintln(os.Stderr, line)
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
