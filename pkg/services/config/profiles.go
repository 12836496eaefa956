package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

const ProfilesFileName = ".vgreportcfg"

// ProfileRegistry reads named report profiles from an INI file, one section
// per profile.
type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetValues(ctx context.Context, profile string) (map[string]any, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// DefaultProfilesPath returns ~/.vgreportcfg.
func DefaultProfilesPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ProfilesFileName), nil
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load profiles file: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

// GetValues returns the non-empty keys of a profile section.
func (r *iniRegistry) GetValues(_ context.Context, profile string) (map[string]any, error) {
	section, err := r.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found: %w", profile, err)
	}

	values := make(map[string]any, len(section.Keys()))
	for _, key := range section.Keys() {
		// empty strings would decode as a configured zero year
		if key.String() == "" {
			continue
		}
		values[key.Name()] = key.String()
	}
	return values, nil
}

// GetSettings decodes a single profile into Settings without applying
// defaults, files or environment overrides.
func GetSettings(ctx context.Context, registry ProfileRegistry, profile string) (*Settings, error) {
	values, err := registry.GetValues(ctx, profile)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	if err := v.MergeConfigMap(values); err != nil {
		return nil, fmt.Errorf("failed to merge profile %s: %w", profile, err)
	}
	return decode(v)
}
