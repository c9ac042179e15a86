package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalNames lists the local config file names in lookup order.
var LocalNames = []string{".confscan.yml", ".confscan.yaml", "confscan.yml", "confscan.yaml"}

// ErrNotFound is returned when no config file exists at the searched locations.
var ErrNotFound = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape for confscan. Nil
// fields mean "not set" so lower-precedence sources can fill them.
type FileConfig struct {
	Include         *string `yaml:"include,omitempty"`
	Exclude         *string `yaml:"exclude,omitempty"`
	MaxBytes        *int64  `yaml:"max_bytes,omitempty"`
	Enable          *string `yaml:"enable,omitempty"`
	Disable         *string `yaml:"disable,omitempty"`
	FileType        *string `yaml:"filetype,omitempty"`
	Recursive       *bool   `yaml:"recursive,omitempty"`
	FindSecrets     *bool   `yaml:"find_secrets,omitempty"`
	Rules           *string `yaml:"rules,omitempty"`
	NoDefaultRules  *bool   `yaml:"no_default_rules,omitempty"`
	GitleaksRules   *bool   `yaml:"gitleaks_rules,omitempty"`
	Redact          *bool   `yaml:"redact,omitempty"`
	NoColor         *bool   `yaml:"no_color,omitempty"`
	DefaultExcludes *bool   `yaml:"default_excludes,omitempty"`
	FailOn          *string `yaml:"fail_on,omitempty"`
	Baseline        *string `yaml:"baseline,omitempty"`
}

// LoadFile reads a YAML config file from the provided path. A relative
// rules path is resolved against the config file's directory.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if cfg.Rules != nil && *cfg.Rules != "" && !filepath.IsAbs(*cfg.Rules) {
		p := filepath.Join(filepath.Dir(path), *cfg.Rules)
		cfg.Rules = &p
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in dir.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNotFound
}

// GlobalPath returns $XDG_CONFIG_HOME/confscan/config.yml, falling back to
// ~/.config. It is empty when neither can be determined.
func GlobalPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "confscan", "config.yml")
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p := GlobalPath()
	if p == "" {
		return cfg, errors.New("no config dir")
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNotFound
}

// Save writes cfg as YAML to path.
func Save(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
