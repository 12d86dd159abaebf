package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/sales-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	opts    SessionOptions
	session commands.Session
	output  io.Writer
	format  string
	verbose bool
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Session overrides the settings-backed session, mostly for tests.
	Session commands.Session
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		session: opts.Session,
		output:  opts.Output,
	}
	if cli.session == nil {
		cli.session = NewSession(&cli.opts)
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	defer func() {
		if closer, ok := cli.session.(io.Closer); ok {
			_ = closer.Close()
		}
	}()
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs replaces os.Args for the next Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sales-atlas",
		Short:         "Sales dashboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.opts.ConfigPath, "config", "c", "", "Path to a YAML settings file")
	flags.StringVar(&cli.opts.ProfilesPath, "profiles", defaultProfilesPath(), "Path to the profiles file")
	flags.StringVarP(&cli.opts.Profile, "profile", "p", "", "Profile to use from the profiles file")
	flags.StringVar(&cli.opts.BackendURL, "backend", "", "Backend base URL, overrides settings and profile")
	flags.IntVar(&cli.opts.Days, "days", 0, fmt.Sprintf("Forecast horizon in days (default %d)", dashboard.DefaultForecastDays))
	flags.StringVar(&cli.format, "format", "table", "Report format: table or plain")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Log debug output to stderr")

	reporter := &formatReporter{cli: cli}
	cmd.AddCommand(commands.NewRefreshCmd(cli.session, reporter))
	cmd.AddCommand(commands.NewUploadCmd(cli.session, reporter))
	cmd.AddCommand(commands.NewAddCmd(cli.session))
	cmd.AddCommand(commands.NewChartCmd(cli.session))
	cmd.AddCommand(commands.NewHistoryCmd(cli.session, reporter))

	cmd.SetOut(cli.output)
	return cmd
}

func defaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".salesatlascfg"
	}
	return filepath.Join(home, ".salesatlascfg")
}
