package config

import (
	"fmt"

	"github.com/driftfs/driftfs/internal/adapter/sftp"
	"github.com/driftfs/driftfs/internal/domain"
	"github.com/driftfs/driftfs/internal/logger"
)

// Config represents the complete configuration for driftfs
type Config struct {
	// Log configures the global logger
	Log LogConfig `mapstructure:"log"`

	// Endpoints define named storage backends
	Endpoints []domain.Endpoint `mapstructure:"endpoints"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"`
	File   logger.FileConfig `mapstructure:"file"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	names := make(map[string]bool)
	for _, e := range c.Endpoints {
		if e.Name == "" {
			return fmt.Errorf("%w: endpoint name cannot be empty", domain.ErrConfigInvalid)
		}
		if names[e.Name] {
			return fmt.Errorf("%w: duplicate endpoint name: %s", domain.ErrConfigInvalid, e.Name)
		}
		if !e.Type.IsValid() {
			return fmt.Errorf("%w: endpoint %s has invalid type: %s", domain.ErrConfigInvalid, e.Name, e.Type)
		}
		switch e.Type {
		case domain.EndpointSFTP:
			if e.Endpoint == "" {
				return fmt.Errorf("%w: endpoint %s has no connection descriptor", domain.ErrConfigInvalid, e.Name)
			}
			if !sftp.ProxyKind(e.ProxyKind).IsValid() {
				return fmt.Errorf("%w: endpoint %s has invalid proxy kind: %s", domain.ErrConfigInvalid, e.Name, e.ProxyKind)
			}
		case domain.EndpointLocal:
			if e.Root == "" {
				return fmt.Errorf("%w: endpoint %s has no root path", domain.ErrConfigInvalid, e.Name)
			}
		}
		names[e.Name] = true
	}
	return nil
}

// GetEndpoint returns an endpoint by name
func (c *Config) GetEndpoint(name string) (*domain.Endpoint, error) {
	for i := range c.Endpoints {
		if c.Endpoints[i].Name == name {
			return &c.Endpoints[i], nil
		}
	}
	return nil, domain.ErrEndpointNotFound
}
