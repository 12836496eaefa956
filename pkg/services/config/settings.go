package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/vgsales-report/pkg/models/domain"
	"github.com/de-tools/vgsales-report/pkg/services/metrics"
	"github.com/spf13/viper"
)

const EnvPrefix = "VGREPORT"

// Settings is the user-facing report configuration.
type Settings struct {
	InputFile  string   `mapstructure:"input_file" validate:"required"`
	StartYear  *int     `mapstructure:"start_year"`
	EndYear    *int     `mapstructure:"end_year"`
	Genre      string   `mapstructure:"genre"`
	Metrics    []string `mapstructure:"metrics" validate:"min=1,dive,required"`
	Output     string   `mapstructure:"output" validate:"required"`
	Format     string   `mapstructure:"format" validate:"omitempty,oneof=json yaml"`
	ArchiveDSN string   `mapstructure:"archive_dsn"`
	AWSProfile string   `mapstructure:"aws_profile"`
}

var settingsKeys = []string{
	"input_file",
	"start_year",
	"end_year",
	"genre",
	"metrics",
	"output",
	"format",
	"archive_dsn",
	"aws_profile",
}

// LoadOptions selects the sources merged by Load.
type LoadOptions struct {
	// File is a YAML, JSON or TOML settings file; optional.
	File string
	// Profile names a section of Profiles; optional.
	Profile  string
	Profiles ProfileRegistry
}

// Load merges defaults, the settings file, the profile and VGREPORT_*
// environment variables, later sources taking precedence.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	v := viper.New()
	v.SetDefault("metrics", metrics.DefaultMetrics())
	v.SetDefault("output", "report.json")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if opts.Profile != "" {
		if opts.Profiles == nil {
			return nil, fmt.Errorf("profile %s requested but no profiles file is loaded", opts.Profile)
		}
		values, err := opts.Profiles.GetValues(ctx, opts.Profile)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("failed to merge profile %s: %w", opts.Profile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range settingsKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	for i, m := range s.Metrics {
		s.Metrics[i] = strings.TrimSpace(m)
	}
	return &s, nil
}

// Period returns the configured year bounds.
func (s *Settings) Period() domain.YearRange {
	return domain.YearRange{Start: s.StartYear, End: s.EndYear}
}

// ReportConfig validates s and resolves its metric identifiers against reg.
func (s *Settings) ReportConfig(reg metrics.Registry) (domain.ReportConfig, error) {
	if err := Validate(s); err != nil {
		return domain.ReportConfig{}, err
	}
	resolved, err := reg.Resolve(s.Metrics)
	if err != nil {
		return domain.ReportConfig{}, fmt.Errorf("invalid metrics: %w", err)
	}
	return domain.ReportConfig{
		InputFile: s.InputFile,
		Period:    s.Period(),
		Genre:     s.Genre,
		Metrics:   resolved,
	}, nil
}
