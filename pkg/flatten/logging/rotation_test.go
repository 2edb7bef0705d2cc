package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/flatten/pkg/flatten/logging"
)

func countLogFiles(t *testing.T, dir, prefix string) int {
	t.Helper()
	files, err := os.ReadDir(dir)
	require.NoError(t, err)

	n := 0
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix) && strings.HasSuffix(f.Name(), ".log") {
			n++
		}
	}
	return n
}

func TestRotationBySize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer, err := logging.NewRotatingWriter(filepath.Join(dir, "size.log"), logging.RotationConfig{
		MaxSize: 512,
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		_, err := writer.Write([]byte(strings.Repeat("x", 50) + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	assert.GreaterOrEqual(t, countLogFiles(t, dir, "size"), 2)
}

func TestRotationMaxBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer, err := logging.NewRotatingWriter(filepath.Join(dir, "backups.log"), logging.RotationConfig{
		MaxSize:    64,
		MaxBackups: 2,
	})
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		_, err := writer.Write([]byte(strings.Repeat("y", 40) + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	// The active file plus at most two backups.
	assert.LessOrEqual(t, countLogFiles(t, dir, "backups"), 3)
}

func TestRotationMaxAge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := filepath.Join(dir, "aged.2020-01-01-000000.000.log")
	require.NoError(t, os.WriteFile(old, []byte("old\n"), 0o644))
	past := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	writer, err := logging.NewRotatingWriter(filepath.Join(dir, "aged.log"), logging.RotationConfig{
		MaxAge: 7,
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "expected expired backup to be removed")
}

func TestRotatingWriter_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.log")
	writer, err := logging.NewRotatingWriter(path, logging.RotationConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	assert.Equal(t, path, writer.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	t.Parallel()

	writer, err := logging.NewRotatingWriter(filepath.Join(t.TempDir(), "closed.log"), logging.RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	_, err = writer.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "append.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	writer, err := logging.NewRotatingWriter(path, logging.RotationConfig{})
	require.NoError(t, err)
	_, err = writer.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
