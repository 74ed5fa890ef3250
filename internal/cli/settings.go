package cli

import (
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/mrlokans/kobo-exporter/internal/app"
)

// SettingsCommand lists and edits persisted settings.
//
//	settings            list effective values
//	settings set K V    store an override
//	settings reset K    drop an override
type SettingsCommand struct {
	base
	args []string
}

func NewSettingsCommand() *SettingsCommand {
	return &SettingsCommand{}
}

func (cmd *SettingsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)

	cmd.registerFlags(fs)
	fs.Usage = usage(fs, "settings [list | set <key> <value> | reset <key>] [options]",
		"Show or change settings stored in the local database. Stored values",
		"take priority over the config file and environment.",
		"",
		"Keys: kobo_drive, export_dir, context_words, context_paragraphs, last_exported_id",
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.args = fs.Args()

	switch action := cmd.action(); action {
	case "list":
		return nil
	case "set":
		if len(cmd.args) != 3 {
			return fmt.Errorf("usage: settings set <key> <value>")
		}
	case "reset":
		if len(cmd.args) != 2 {
			return fmt.Errorf("usage: settings reset <key>")
		}
	default:
		return fmt.Errorf("unknown settings action: %s", action)
	}
	return nil
}

func (cmd *SettingsCommand) action() string {
	if len(cmd.args) == 0 {
		return "list"
	}
	return cmd.args[0]
}

func (cmd *SettingsCommand) Run() error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{Console: cmd.out()})
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd.action() {
	case "set":
		key, value := cmd.args[1], cmd.args[2]
		if err := a.Settings.Set(key, value); err != nil {
			return err
		}
		cmd.printf("✅ %s = %s\n", key, value)
		return nil
	case "reset":
		key := cmd.args[1]
		if err := a.Settings.Reset(key); err != nil {
			return err
		}
		cmd.printf("✅ %s reset\n", key)
		return nil
	}

	w := tabwriter.NewWriter(cmd.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
	for _, info := range a.Settings.Info() {
		value := info.Value
		if value == "" {
			value = "(auto)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Key, value, info.Source)
	}
	return w.Flush()
}
