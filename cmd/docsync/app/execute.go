package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/docsync/cmd/aliases"
	"github.com/agentstation/docsync/cmd/docsync/cmd/clean"
	"github.com/agentstation/docsync/cmd/docsync/cmd/fetch"
	"github.com/agentstation/docsync/cmd/docsync/cmd/run"
	"github.com/agentstation/docsync/cmd/docsync/cmd/serve"
	"github.com/agentstation/docsync/cmd/docsync/cmd/submit"
	"github.com/agentstation/docsync/cmd/docsync/cmd/version"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/constants"
)

// Execute runs the docsync CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "docsync",
		Short:   "Document batch cleaning and submission CLI",
		Version: a.version,
		Long: `docsync fetches raw document batches from the upstream API, resolves
field aliases, coerces dates and amounts, removes duplicates and submits
the cleaned batch back.

It can run the whole pipeline in one step, run each stage on its own
against files or stdin, or serve the stages as an HTTP API.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.docsync.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("base-url", "", "upstream API base URL")
	flags.String("candidate-id", "", "candidate id sent as "+constants.CandidateHeader)

	// --output is kept as an alias for --format
	flags.String("output", "", "")
	_ = flags.MarkDeprecated("output", "use --format instead")

	for key, flag := range map[string]string{
		"config":       "config",
		"verbose":      "verbose",
		"quiet":        "quiet",
		"no_color":     "no-color",
		"format":       "format",
		"log_level":    "log-level",
		"base_url":     "base-url",
		"candidate_id": "candidate-id",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.SetVersionTemplate("docsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It folds the parsed
// flags into the configuration and rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if flags.Changed("output") && !flags.Changed("format") {
		a.v.Set("format", mustGetString(cmd, "output"))
	}

	if flags.Changed("config") {
		if err := readConfigFile(a.v); err != nil {
			return err
		}
	}

	config := configFromViper(a.v)
	if _, err := output.ParseFormat(config.Format); err != nil {
		return err
	}
	a.config = config

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(clean.NewCommand(a))
	rootCmd.AddCommand(submit.NewCommand(a))
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(aliases.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
