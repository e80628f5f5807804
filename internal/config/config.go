// Package config loads warcouncil configuration. The main file is
// warcouncil.yaml (viper); expert descriptor overrides live in a separate
// experts file decoded through mapstructure, matching the descriptors'
// frontmatter-style keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/athola/warcouncil/pkg/domain"
)

// Config is the resolved application configuration.
type Config struct {
	// Root is the directory holding war-table/ and campaign-archive/.
	Root string `mapstructure:"root"`

	// ExpertsFile optionally points to a YAML list of expert descriptor
	// overrides.
	ExpertsFile string `mapstructure:"experts_file"`

	InvokeTimeout time.Duration `mapstructure:"invoke_timeout"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`

	Delphi DelphiConfig `mapstructure:"delphi"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// DelphiConfig bounds the iterative-refinement loop.
type DelphiConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	MaxRounds int     `mapstructure:"max_rounds"`
}

// RedisConfig selects the Redis session store when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads configuration from the given file, or from warcouncil.yaml in
// the working directory and ~/.config/warcouncil when path is empty. A
// missing config file yields defaults, not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("root", ".warcouncil")
	v.SetDefault("invoke_timeout", 120*time.Second)
	v.SetDefault("probe_timeout", 10*time.Second)
	v.SetDefault("delphi.threshold", 0.5)
	v.SetDefault("delphi.max_rounds", 3)
	v.SetEnvPrefix("WARCOUNCIL")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("warcouncil")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/warcouncil")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// An explicit --config path must exist; the default search is
		// allowed to come up empty.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// LoadExpertOverrides decodes a YAML list of expert descriptors. Each entry
// replaces the catalog descriptor with the same key.
func LoadExpertOverrides(path string) ([]domain.Expert, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experts file: %w", err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse experts file: %w", err)
	}

	out := make([]domain.Expert, 0, len(raw))
	for i, entry := range raw {
		var e domain.Expert
		if err := mapstructure.Decode(entry, &e); err != nil {
			return nil, fmt.Errorf("failed to decode expert %d: %w", i, err)
		}
		if e.Key == "" {
			return nil, fmt.Errorf("expert %d has no key", i)
		}
		out = append(out, e)
	}
	return out, nil
}
