package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/flatten/pkg/flatten/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Tests in this file share the package's global state and must not run in parallel.

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"warn", logging.LevelWarn, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
		{"", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, logging.ErrInvalidLevel)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", logging.LevelDebug.String())
	assert.Equal(t, "error", logging.LevelError.String())
	assert.Equal(t, "unknown", logging.Level(42).String())
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(dir string) logging.Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: func(dir string) logging.Config {
				return logging.Config{Level: "info", Path: filepath.Join(dir, "test.log")}
			},
		},
		{
			name: "component overrides",
			cfg: func(dir string) logging.Config {
				return logging.Config{
					Level:      "info",
					Path:       filepath.Join(dir, "test.log"),
					Components: map[string]string{"plan": "debug"},
				}
			},
		},
		{
			name: "invalid level",
			cfg: func(dir string) logging.Config {
				return logging.Config{Level: "invalid", Path: filepath.Join(dir, "test.log")}
			},
			wantErr: true,
		},
		{
			name: "invalid component level",
			cfg: func(dir string) logging.Config {
				return logging.Config{
					Level:      "info",
					Path:       filepath.Join(dir, "test.log"),
					Components: map[string]string{"plan": "chatty"},
				}
			},
			wantErr: true,
		},
		{
			name: "invalid console level",
			cfg: func(dir string) logging.Config {
				return logging.Config{Level: "info", Path: filepath.Join(dir, "test.log"), ConsoleLevel: "nope"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := logging.Init(tt.cfg(t.TempDir()))
			t.Cleanup(func() { _ = logging.Close() })
			if tt.wantErr {
				assert.ErrorIs(t, err, logging.ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestGet_ReturnsSameLogger(t *testing.T) {
	a := logging.Get("same")
	b := logging.Get("same")
	assert.Same(t, a, b)
	assert.Equal(t, "same", a.Component())
}

func TestGet_BeforeInitIsSilentThenFollowsInit(t *testing.T) {
	require.NoError(t, logging.Close())

	logger := logging.Get("early")
	logger.Info("before init")

	path := filepath.Join(t.TempDir(), "early.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: path}))
	t.Cleanup(func() { _ = logging.Close() })

	logger.Info("after init", "key", "value")

	content := readLog(t, path)
	assert.NotContains(t, content, "before init")
	assert.Contains(t, content, "after init")
	assert.Contains(t, content, "key=value")
	assert.Contains(t, content, "early")
}

func TestComponentLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.log")
	require.NoError(t, logging.Init(logging.Config{
		Level:      "warn",
		Path:       path,
		Components: map[string]string{"chatty": "debug"},
	}))
	t.Cleanup(func() { _ = logging.Close() })

	logging.Get("quiet").Info("quiet info")
	logging.Get("quiet").Warn("quiet warn")
	logging.Get("chatty").Debug("chatty debug")

	content := readLog(t, path)
	assert.NotContains(t, content, "quiet info")
	assert.Contains(t, content, "quiet warn")
	assert.Contains(t, content, "chatty debug")
}

func TestWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: path}))
	t.Cleanup(func() { _ = logging.Close() })

	logging.Get("apply").With("run", "abc123").Info("started")

	assert.Contains(t, readLog(t, path), "run=abc123")
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: path}))

	require.NoError(t, logging.Close())
	require.NoError(t, logging.Close())

	// Writes after Close are discarded.
	logging.Get("closed").Error("after close")
	assert.NotContains(t, readLog(t, path), "after close")
}

func TestConcurrentLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: path}))
	t.Cleanup(func() { _ = logging.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := logging.Get("worker")
			for j := 0; j < 25; j++ {
				logger.Info("tick")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, strings.Count(readLog(t, path), "tick"))
}

func TestDefaultLogPath(t *testing.T) {
	path := logging.DefaultLogPath()
	assert.Equal(t, "flatten.log", filepath.Base(path))
	assert.Equal(t, "flatten", filepath.Base(filepath.Dir(path)))
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, logging.DefaultLogPath(), cfg.Path)
	assert.Equal(t, logging.DefaultRotationConfig(), cfg.Rotation)
}
