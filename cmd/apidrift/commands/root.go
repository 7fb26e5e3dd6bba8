package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/yairfalse/apidrift/internal/app"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/output"
	"github.com/yairfalse/apidrift/pkg/config"
)

// cli holds what the commands share during one invocation
type cli struct {
	cfgFile string
	cfg     *config.Config
	app     *app.App
	factory *app.AppFactory
	opts    app.Options

	in  io.Reader
	out io.Writer
	err io.Writer
}

// Execute runs the apidrift command line
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(app.Options{})
}

func newRootCommand(opts app.Options) *cobra.Command {
	c := &cli{factory: app.NewAppFactory(), opts: opts}
	defaults := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "apidrift",
		Short: "Track how your API collections change between snapshots",
		Long: `apidrift manages imported API collections, lists their snapshots and
compares two snapshots to show which endpoints, request and response bodies
and headers were added, removed or modified.

The snapshotting, diffing and impact classification run on the apidrift
backend; this tool is the client.

GETTING STARTED:
  apidrift auth login                      # Sign in
  apidrift collections import --file x.json
  apidrift snapshots list <collection-id>  # History of a collection
  apidrift diff --collection <id> --new <snapshot-id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				runVersion(cmd, []string{})
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.in = cmd.InOrStdin()
			c.out = cmd.OutOrStdout()
			c.err = cmd.ErrOrStderr()
			return c.initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.apidrift/config.yaml)")
	flags.String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")
	flags.StringP("output", "o", defaults.Output.Format, "output format (table, json, yaml)")
	flags.Bool("no-color", defaults.Output.NoColor, "disable colored output")
	flags.String("api-url", defaults.API.BaseURL, "apidrift backend URL")
	rootCmd.Flags().Bool("version", false, "show version information")

	viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	viper.BindPFlag("output.format", flags.Lookup("output"))
	viper.BindPFlag("output.no_color", flags.Lookup("no-color"))
	viper.BindPFlag("api.base_url", flags.Lookup("api-url"))

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(c.newAuthCommand())
	rootCmd.AddCommand(c.newKeysCommand())
	rootCmd.AddCommand(c.newCollectionsCommand())
	rootCmd.AddCommand(c.newSnapshotsCommand())
	rootCmd.AddCommand(c.newDiffCommand())
	rootCmd.AddCommand(c.newChangesCommand())
	rootCmd.AddCommand(c.newImpactCommand())
	rootCmd.AddCommand(c.newHealthCommand())

	return rootCmd
}

// initConfig reads in config file and ENV variables if set
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		viper.SetConfigFile(c.cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.ConfigurationError("Failed to load configuration", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return errors.ConfigurationError("Failed to expand config paths", err)
	}

	if !c.isTerminal(c.out) {
		cfg.Output.NoColor = true
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}

	c.cfg = cfg
	return nil
}

// application builds the wired app on first use
func (c *cli) application() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if c.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	opts := c.opts
	opts.Version = Version
	a, err := c.factory.Create(c.cfg, opts)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// authenticated returns the app after checking that a session exists
func (c *cli) authenticated() (*app.App, error) {
	a, err := c.application()
	if err != nil {
		return nil, err
	}
	if err := a.RequireSession(); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *cli) printer() (*output.Printer, error) {
	a, err := c.application()
	if err != nil {
		return nil, err
	}
	return a.Printer(c.out)
}

// spinner returns a spinner on stderr when it is a terminal
func (c *cli) spinner(title string) *output.Spinner {
	if !c.isTerminal(c.err) {
		return output.NewSpinner(nil, title, true)
	}
	return output.NewSpinner(c.err, title, c.cfg.Output.NoColor)
}

// isTerminal reports whether w is an interactive terminal
func (c *cli) isTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
