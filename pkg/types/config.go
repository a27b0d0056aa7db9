package types

import "errors"

// Config is the complete kroeg-call configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Listen   string         `mapstructure:"listen" yaml:"listen,omitempty"`
	Deliver  int            `mapstructure:"deliver" yaml:"deliver,omitempty"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// DatabaseConfig selects a backend kind and carries its connection
// parameters. Only the fields of the selected backend are read.
type DatabaseConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`

	// sqlite
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// postgresql
	Server   string `mapstructure:"server" yaml:"server,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
}

// ServerConfig is the static identity of this server instance.
type ServerConfig struct {
	BaseURI     string `mapstructure:"base_uri" yaml:"base_uri"`
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
	InstanceID  int64  `mapstructure:"instance_id" yaml:"instance_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Supported backend names.
const (
	BackendSQLite     = "sqlite"
	BackendPostgreSQL = "postgresql"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrDatabaseIncomplete = errors.New("database configuration is incomplete")
	ErrBaseURIEmpty       = errors.New("server base_uri must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:     true,
	BackendPostgreSQL: true,
}

// Validate checks the database section. It returns a sentinel error from
// this package on failure.
func (c DatabaseConfig) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendSQLite:
		if c.Path == "" {
			return ErrDatabaseIncomplete
		}
	case BackendPostgreSQL:
		if c.Server == "" || c.Database == "" {
			return ErrDatabaseIncomplete
		}
	}
	return nil
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Server.BaseURI == "" {
		return ErrBaseURIEmpty
	}
	return nil
}
