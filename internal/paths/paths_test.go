package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPlatform(t *testing.T, goos, home, config string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return config, nil }
}

func TestDefaultDirs_Linux(t *testing.T) {
	withPlatform(t, "linux", "/home/op", "/unused")

	t.Run("uses XDG variables when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/kroeg", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/kroeg", got)
	})

	t.Run("falls back to the home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/op/.config/kroeg", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/op/.local/share/kroeg", got)
	})
}

func TestDefaultDirs_Darwin(t *testing.T) {
	withPlatform(t, "darwin", "/Users/op", "/Users/op/Library/Application Support")

	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/Users/op/Library/Application Support/kroeg", got)

	got, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/Users/op/Library/Application Support/kroeg", got)
}

func TestDefaultDirs_HomeError(t *testing.T) {
	withPlatform(t, "linux", "", "")
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Setenv("XDG_CONFIG_HOME", "")

	_, err := DefaultConfigDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	withPlatform(t, "linux", "/home/op", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", want: "/env/config"},
		{name: "platform default when both empty", want: "/home/op/.config/kroeg"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	withPlatform(t, "linux", "/home/op", "")
	t.Setenv("XDG_DATA_HOME", "")

	t.Setenv(EnvDataDir, "/env/data")
	got, err := ResolveDataDir("/flag/data")
	require.NoError(t, err)
	assert.Equal(t, "/flag/data", got)

	got, err = ResolveDataDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/data", got)

	t.Setenv(EnvDataDir, "")
	got, err = DefaultDatabasePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/op/.local/share/kroeg", DatabaseFileName), got)
}

func TestResolve_RelativeFlagIsAbsolute(t *testing.T) {
	got, err := ResolveConfigDir("relative/dir")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
