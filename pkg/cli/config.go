package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"aggcsv/internal/config"
)

// UserConfig represents ~/.aggcsv/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile represents a single named configuration profile.
type Profile struct {
	Separator  string   `yaml:"separator,omitempty"`
	Banners    []string `yaml:"banners,omitempty"`
	StrictJSON bool     `yaml:"strict-json,omitempty"`
	LogLevel   string   `yaml:"log-level,omitempty"`
}

// ActiveProfile returns the profile to use based on the override or
// current-profile. A missing current profile yields an empty profile; a
// missing override is an error.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	if p, ok := c.Profiles[name]; ok {
		return p, nil
	}
	if override != "" {
		return Profile{}, fmt.Errorf("profile %q not found", override)
	}
	return Profile{}, nil
}

// apply copies the profile's settings onto cfg.
func (p Profile) apply(cfg *config.Config) error {
	if p.Separator != "" {
		r, err := config.ParseSeparator(p.Separator)
		if err != nil {
			return err
		}
		cfg.Separator = r
	}
	cfg.Banners = append(cfg.Banners, p.Banners...)
	if p.StrictJSON {
		cfg.StrictJSON = true
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	return nil
}

// ConfigDir returns the path to ~/.aggcsv/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aggcsv")
}

// ConfigPath returns the path to ~/.aggcsv/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.aggcsv/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.aggcsv/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
