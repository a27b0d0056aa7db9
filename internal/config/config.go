// Package config loads kroeg-call configuration with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kroeg/internal/paths"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

const (
	fileName = "config"
	fileType = "yaml"
	fileExt  = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. KROEG_DATABASE_BACKEND.
	EnvPrefix = "KROEG"
)

// Options locate the configuration.
type Options struct {
	// File is an explicit config file. It wins over Dir.
	File string
	// Dir is the resolved configuration directory.
	Dir string
	// DataDir overrides the directory of the default sqlite database.
	DataDir string
}

// keys lists every configuration key so that environment overrides apply
// even when the file omits them.
var keys = []string{
	"database.backend", "database.path", "database.server", "database.username",
	"database.password", "database.database",
	"server.base_uri", "server.name", "server.description", "server.instance_id",
	"listen", "deliver", "logging.level",
}

// Load reads the configuration. A missing config file is not an error; the
// defaults and environment still apply. The result is validated.
func Load(opts Options) (types.Config, error) {
	v := viper.New()
	v.SetDefault("database.backend", types.BackendSQLite)
	v.SetDefault("server.name", "kroeg")
	v.SetDefault("logging.level", "info")
	v.SetDefault("deliver", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return types.Config{}, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else if opts.Dir != "" {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(opts.Dir)
	}
	if opts.File != "" || opts.Dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return types.Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Database.Backend == types.BackendSQLite && cfg.Database.Path == "" {
		path, err := paths.DefaultDatabasePath(opts.DataDir)
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.Database.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration written by WriteDefault.
func Default() types.Config {
	return types.Config{
		Database: types.DatabaseConfig{Backend: types.BackendSQLite},
		Server: types.ServerConfig{
			BaseURI: "http://localhost:8080",
			Name:    "kroeg",
		},
		Listen:  "127.0.0.1:8080",
		Logging: types.LoggingConfig{Level: "info"},
	}
}

// WriteDefault creates dir and a default config.yaml in it. An existing
// file is left untouched. It reports whether a file was written.
func WriteDefault(dir string) (string, bool, error) {
	path := filepath.Join(dir, fileExt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, false, fmt.Errorf("create config dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return path, false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return path, false, fmt.Errorf("encode default config: %w", err)
	}
	header := "# kroeg-call configuration\n# Every key can be overridden by KROEG_<SECTION>_<KEY>.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return path, false, fmt.Errorf("write config file: %w", err)
	}
	return path, true, nil
}
