package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/de-tools/vgsales-report/pkg/runtime/terminal/export"
	"github.com/de-tools/vgsales-report/pkg/services/config"
	"github.com/de-tools/vgsales-report/pkg/services/metrics"
	"github.com/de-tools/vgsales-report/pkg/services/report"
	"github.com/de-tools/vgsales-report/pkg/store/archive"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type GenerateCmd struct {
	configPath   string
	profile      string
	profilesFile string
	input        string
	startYear    int
	endYear      int
	genre        string
	metrics      []string
	output       string
	format       string
	archiveDSN   string
	awsProfile   string
	quiet        bool
	registry     metrics.Registry
	reporter     *export.Reporter
}

func NewGenerateCmd(registry metrics.Registry, reporter *export.Reporter) *cobra.Command {
	gc := &GenerateCmd{registry: registry, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sales report",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.configPath, "config", "", "Path to a YAML, JSON or TOML settings file")
	cmd.Flags().StringVar(&gc.profile, "profile", "", "Named report profile")
	cmd.Flags().StringVar(&gc.profilesFile, "profiles-file", "", "Path to the profiles file (default is $HOME/.vgreportcfg)")
	cmd.Flags().StringVar(&gc.input, "input", "", "Path to the sales dataset (csv, tsv or xlsx)")
	cmd.Flags().IntVar(&gc.startYear, "start-year", 0, "Inclusive lower year bound")
	cmd.Flags().IntVar(&gc.endYear, "end-year", 0, "Inclusive upper year bound")
	cmd.Flags().StringVar(&gc.genre, "genre", "", "Only include games of this genre")
	cmd.Flags().StringSliceVar(&gc.metrics, "metrics", nil, "Ordered metric identifiers, e.g. count,total_sales,genre_share:RPG")
	cmd.Flags().StringVar(&gc.output, "output", "", "Report destination, a local path or s3://bucket/key")
	cmd.Flags().StringVar(&gc.format, "format", "", "Report format (json or yaml); defaults to the output extension")
	cmd.Flags().StringVar(&gc.archiveDSN, "archive", "", "Archive the report in a DuckDB file or postgres:// database")
	cmd.Flags().StringVar(&gc.awsProfile, "aws-profile", "", "AWS shared config profile for s3:// outputs")
	cmd.Flags().BoolVar(&gc.quiet, "quiet", false, "Do not print the report summary")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := gc.loadSettings(ctx, cmd.Flags())
	if err != nil {
		return err
	}

	cfg, err := settings.ReportConfig(gc.registry)
	if err != nil {
		return err
	}

	writerOpts := report.WriterOptions{Format: report.Format(settings.Format)}
	if report.IsS3URI(settings.Output) {
		sink, err := report.NewS3SinkFromProfile(ctx, settings.AWSProfile)
		if err != nil {
			return err
		}
		writerOpts.S3 = sink
	}

	deps := report.Dependencies{Writer: report.NewWriter(writerOpts)}
	if settings.ArchiveDSN != "" {
		a, err := archive.Open(ctx, settings.ArchiveDSN)
		if err != nil {
			return err
		}
		defer closeArchive(ctx, a)
		deps.Archive = a
	}

	rep, err := report.NewPipeline(deps).Run(ctx, cfg, settings.Output)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if gc.quiet {
		return nil
	}
	return gc.reporter.Handle(rep)
}

func (gc *GenerateCmd) loadSettings(ctx context.Context, flags *pflag.FlagSet) (*config.Settings, error) {
	opts := config.LoadOptions{File: gc.configPath, Profile: gc.profile}
	if gc.profile != "" {
		path := gc.profilesFile
		if path == "" {
			var err error
			if path, err = config.DefaultProfilesPath(); err != nil {
				return nil, err
			}
		}
		profiles, err := config.NewProfileRegistry(path)
		if err != nil {
			return nil, err
		}
		opts.Profiles = profiles
	}

	settings, err := config.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	// flags win over every other source, but only when set explicitly
	if flags.Changed("input") {
		settings.InputFile = gc.input
	}
	if flags.Changed("start-year") {
		settings.StartYear = domain.Year(gc.startYear)
	}
	if flags.Changed("end-year") {
		settings.EndYear = domain.Year(gc.endYear)
	}
	if flags.Changed("genre") {
		settings.Genre = gc.genre
	}
	if flags.Changed("metrics") {
		settings.Metrics = gc.metrics
	}
	if flags.Changed("output") {
		settings.Output = gc.output
	}
	if flags.Changed("format") {
		settings.Format = gc.format
	}
	if flags.Changed("archive") {
		settings.ArchiveDSN = gc.archiveDSN
	}
	if flags.Changed("aws-profile") {
		settings.AWSProfile = gc.awsProfile
	}
	return settings, nil
}

func closeArchive(ctx context.Context, a *archive.Archive) {
	if err := a.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("backend", a.Backend()).Msg("failed to close archive")
	}
}
