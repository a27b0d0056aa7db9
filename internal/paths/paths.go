// Package paths resolves where kroeg-call keeps its configuration and its
// default sqlite database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration and data directories.
const AppName = "kroeg"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KROEG_CONFIG_DIR"
	EnvDataDir   = "KROEG_DATA_DIR"
)

// DatabaseFileName is the sqlite file created under the data directory.
const DatabaseFileName = "kroeg.db"

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $<env>/kroeg, or ~/<fallback>/kroeg on Linux. Other
// platforms use os.UserConfigDir for both configuration and data.
func xdgDir(env string, fallback ...string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/kroeg (fallback ~/.config/kroeg)
// macOS:   ~/Library/Application Support/kroeg
// Windows: %APPDATA%/kroeg
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/kroeg (fallback ~/.local/share/kroeg)
// Elsewhere the configuration directory is reused.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies flag > KROEG_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > KROEG_DATA_DIR > DefaultDataDir.
func ResolveDataDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// DefaultDatabasePath returns the sqlite path used when the configuration
// names no database file.
func DefaultDatabasePath(dataDirFlag string) (string, error) {
	dir, err := ResolveDataDir(dataDirFlag)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFileName), nil
}
