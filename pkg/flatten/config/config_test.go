package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

// isolate points HOME and XDG_CONFIG_HOME at fresh temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path, err := ConfigFile()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPath, cfg.DefaultPath)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Force)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.Trash)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, DefaultLogMaxBackups, cfg.Logging.Rotation.MaxBackups)
	assert.True(t, cfg.Logging.Rotation.Daily)
	assert.Equal(t, "info", cfg.Logging.Components["plan"])
}

func TestLoad_FromFile(t *testing.T) {
	isolate(t)
	writeConfig(t, `
default_path: /srv/inbox
force: true
output: plain
exclude:
  - .git
  - "*.partial"
trash: true
logging:
  level: debug
  rotation:
    max_size: 1MB
    max_backups: 2
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/inbox", cfg.DefaultPath)
	assert.True(t, cfg.Force)
	assert.Equal(t, "plain", cfg.Output)
	assert.Equal(t, []string{".git", "*.partial"}, cfg.Exclude)
	assert.True(t, cfg.Trash)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "1MB", cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, 2, cfg.Logging.Rotation.MaxBackups)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultLogMaxAge, cfg.Logging.Rotation.MaxAge)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	writeConfig(t, "output: plain\n")
	t.Setenv("FLATTEN_OUTPUT", "json")
	t.Setenv("FLATTEN_TRASH", "true")
	t.Setenv("FLATTEN_LOGGING_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Trash)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	isolate(t)
	writeConfig(t, "output: [unclosed\n")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfigure_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dry_run: true\n"), 0o644))

	v := viper.New()
	Configure(v, path)
	require.NoError(t, Read(v))

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestConfigure_MissingExplicitFile(t *testing.T) {
	isolate(t)

	v := viper.New()
	Configure(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, Read(v))
}

func TestFromViper_ExpandsHome(t *testing.T) {
	home := isolate(t)

	v := viper.New()
	SetDefaults(v)
	v.Set("default_path", "~/inbox")
	v.Set("logging.path", "~/logs/flatten.log")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "inbox"), cfg.DefaultPath)
	assert.Equal(t, filepath.Join(home, "logs", "flatten.log"), cfg.Logging.Path)
}

func TestLogConfig(t *testing.T) {
	cfg := &Config{
		Verbose: true,
		Logging: LoggingConfig{
			Level:      "debug",
			Path:       "/tmp/f.log",
			Components: map[string]string{"plan": "warn"},
			Rotation:   RotationConfig{MaxSize: "2MB", MaxAge: 3, MaxBackups: 4, Daily: true},
		},
	}

	lc, err := cfg.LogConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "/tmp/f.log", lc.Path)
	assert.Equal(t, "debug", lc.ConsoleLevel)
	assert.Equal(t, 2*types.MiB, lc.Rotation.MaxSize)
	assert.Equal(t, 3, lc.Rotation.MaxAge)
	assert.Equal(t, 4, lc.Rotation.MaxBackups)
	assert.True(t, lc.Rotation.Daily)
	assert.Equal(t, "warn", lc.Components["plan"])
}

func TestLogConfig_DefaultsAndErrors(t *testing.T) {
	lc, err := (&Config{Logging: LoggingConfig{Level: "info"}}).LogConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultLogPath(), lc.Path)
	assert.Empty(t, lc.ConsoleLevel)

	_, err = (&Config{Logging: LoggingConfig{Rotation: RotationConfig{MaxSize: "lots"}}}).LogConfig()
	assert.ErrorIs(t, err, types.ErrInvalidSize)
}

func TestWriteDefault(t *testing.T) {
	isolate(t)

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.FileExists(t, path)

	// The written file loads back to the defaults.
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.Rotation.MaxSize)

	// A second call leaves an edited file alone.
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))
	again, err := WriteDefault()
	require.NoError(t, err)
	assert.Equal(t, path, again)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "output: json\n", string(data))
}

func TestConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/xdg/flatten", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "flatten"), dir)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/docs", filepath.Join(home, "docs")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~other/x", "~other/x"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultLogPath(t *testing.T) {
	assert.Equal(t, "flatten.log", filepath.Base(DefaultLogPath()))
	assert.Equal(t, StateDir(), filepath.Dir(DefaultLogPath()))
}
