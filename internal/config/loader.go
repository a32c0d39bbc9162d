package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/driftfs/driftfs/internal/domain"
)

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "driftfs"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "driftfs"))
	}

	return paths
}

// Load reads and parses a configuration file.
// If path is empty, searches default locations for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

// LoadFromString parses configuration from a YAML string
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
