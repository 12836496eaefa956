package terminal

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/de-tools/vgsales-report/pkg/runtime/terminal/commands"
	"github.com/de-tools/vgsales-report/pkg/runtime/terminal/export"
	"github.com/de-tools/vgsales-report/pkg/services/metrics"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry  metrics.Registry
	reporter  *export.Reporter
	logOutput io.Writer
	logLevel  string
	envFile   string
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry metrics.Registry
	Output   io.Writer
	// LogOutput receives structured logs; defaults to stderr.
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Registry == nil {
		opts.Registry = metrics.DefaultRegistry()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		registry:  opts.Registry,
		reporter:  export.NewReporter(opts.Output),
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args[1:], used by tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "vgreport",
		Short:             "Video game sales reporting tool",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}

	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&cli.envFile, "env-file", ".env", "Environment file loaded before configuration")

	cmd.AddCommand(commands.NewGenerateCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewMetricsCmd(cli.registry))
	cmd.AddCommand(commands.NewHistoryCmd(cli.reporter))

	return cmd
}

// setup loads the env file and attaches the logger to the command context.
func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(cli.logLevel)
	if err != nil {
		return err
	}
	logger := zerolog.New(cli.logOutput).Level(level).With().Timestamp().Logger()

	if err := godotenv.Load(cli.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Str("path", cli.envFile).Msg("failed to load env file")
	}

	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
