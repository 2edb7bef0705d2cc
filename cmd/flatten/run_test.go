package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/flatten/cmd/flatten/tui"
	"github.com/jamesainslie/flatten/pkg/flatten/config"
	"github.com/jamesainslie/flatten/pkg/flatten/fsops"
)

// createTree creates files under root; names ending in "/" are directories.
func createTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
}

// tree lists every path under root, relative and slash separated.
func tree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == root {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	require.NoError(t, err)
	return out
}

type testRunner struct {
	*runner
	out    *bytes.Buffer
	errOut *bytes.Buffer
	asked  int
}

func newTestRunner(t *testing.T, cfg *config.Config, answer bool) *testRunner {
	t.Helper()
	if cfg.Output == "" {
		cfg.Output = "plain"
	}
	tr := &testRunner{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	tr.runner = &runner{
		cfg:    cfg,
		fs:     fsops.NewRealFS(),
		in:     strings.NewReader(""),
		out:    tr.out,
		errOut: tr.errOut,
		confirm: func(context.Context, tui.Prompt) (bool, error) {
			tr.asked++
			return answer, nil
		},
	}
	return tr
}

func TestResolveRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	createTree(t, home, "inbox/", "file.txt")

	got, err := resolveRoot([]string{filepath.Join(home, "inbox")}, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "inbox"), got)

	got, err = resolveRoot(nil, "~/inbox")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "inbox"), got)

	// The argument wins over the configured default.
	got, err = resolveRoot([]string{home}, "~/inbox")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	wd, err := os.Getwd()
	require.NoError(t, err)
	got, err = resolveRoot(nil, "")
	require.NoError(t, err)
	assert.Equal(t, wd, got)

	_, err = resolveRoot([]string{filepath.Join(home, "missing")}, "")
	assert.ErrorContains(t, err, "path does not exist")

	_, err = resolveRoot([]string{filepath.Join(home, "file.txt")}, "")
	assert.ErrorContains(t, err, "path is not a directory")
}

func TestRun_Force(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "My Pics/a.png", "My Pics/Raw/b.png", "Read Me.md", "notes.txt")

	tr := newTestRunner(t, &config.Config{Force: true}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Equal(t, []string{
		"my-pics/",
		"my-pics/Raw/",
		"my-pics/Raw/b.png",
		"my-pics/a.png",
		"notes.txt",
		"read-me.md",
	}, tree(t, root))
	assert.Zero(t, tr.asked)

	out := tr.out.String()
	assert.Contains(t, out, "  Scanning: "+filepath.Join(root, "*"))
	assert.Contains(t, out, "  From: "+filepath.Join(root, "Read Me.md"))
	assert.Contains(t, out, "  Move:   "+filepath.Join(root, "read-me.md"))
	assert.Contains(t, out, "  Delete: "+filepath.Join(root, "My Pics"))
	assert.Empty(t, tr.errOut.String())
}

func TestRun_RerunIsNothingToDo(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "My Pics/a.png", "Read Me.md")

	require.NoError(t, newTestRunner(t, &config.Config{Force: true}, false).run(context.Background(), root))

	tr := newTestRunner(t, &config.Config{}, true)
	require.NoError(t, tr.run(context.Background(), root))
	assert.Equal(t, "Nothing to do\n", tr.out.String())
	assert.Zero(t, tr.asked)
}

func TestRun_Declined(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md")

	tr := newTestRunner(t, &config.Config{}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Equal(t, 1, tr.asked)
	assert.True(t, strings.HasSuffix(tr.out.String(), "Nothing changed\n"))
	assert.NotContains(t, tr.out.String(), "Move:")
	assert.Equal(t, []string{"Read Me.md"}, tree(t, root))
}

func TestRun_Confirmed(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md")

	tr := newTestRunner(t, &config.Config{}, true)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Equal(t, 1, tr.asked)
	assert.Equal(t, []string{"read-me.md"}, tree(t, root))
}

func TestRun_LineConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   []string
	}{
		{"y\n", []string{"read-me.md"}},
		{"yes\n", []string{"Read Me.md"}},
		{"", []string{"Read Me.md"}},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			root := t.TempDir()
			createTree(t, root, "Read Me.md")

			tr := newTestRunner(t, &config.Config{}, false)
			tr.in = strings.NewReader(tt.answer)
			tr.confirm = tr.lineConfirm

			require.NoError(t, tr.run(context.Background(), root))
			assert.Contains(t, tr.out.String(), "Continue? [y/N] ")
			assert.Equal(t, tt.want, tree(t, root))
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "My Pics/a.png", "Read Me.md")

	tr := newTestRunner(t, &config.Config{DryRun: true}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Zero(t, tr.asked)
	assert.Equal(t, []string{"My Pics/", "My Pics/a.png", "Read Me.md"}, tree(t, root))

	out := tr.out.String()
	assert.Contains(t, out, "  Dry run:  yes")
	assert.Contains(t, out, "  Move:   "+filepath.Join(root, "my-pics", "a.png"))
	assert.Contains(t, out, "Dry run: nothing changed")
}

func TestRun_JSONKeepsStdoutClean(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md", "notes.txt")

	tr := newTestRunner(t, &config.Config{Output: "json", Force: true}, false)
	require.NoError(t, tr.run(context.Background(), root))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(tr.out.Bytes(), &doc))
	assert.Equal(t, root, doc["root"])
	assert.Len(t, doc["moves"], 1)
	assert.Equal(t, []interface{}{filepath.Join(root, "notes.txt")}, doc["unchanged"])

	assert.Contains(t, tr.errOut.String(), "  Move:   "+filepath.Join(root, "read-me.md"))
	assert.Equal(t, []string{"notes.txt", "read-me.md"}, tree(t, root))
}

func TestRun_JSONEmptyPlan(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "notes.txt")

	tr := newTestRunner(t, &config.Config{Output: "json"}, true)
	require.NoError(t, tr.run(context.Background(), root))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(tr.out.Bytes(), &doc))
	assert.Empty(t, doc["moves"])
	assert.Zero(t, tr.asked)
}

func TestRun_Exclude(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Keep Me/a.txt", "Read Me.md")

	tr := newTestRunner(t, &config.Config{Force: true, Exclude: []string{"Keep*"}}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Equal(t, []string{"Keep Me/", "Keep Me/a.txt", "read-me.md"}, tree(t, root))
}

func TestRun_Quiet(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md")

	tr := newTestRunner(t, &config.Config{Force: true, Quiet: true}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Empty(t, tr.out.String())
	assert.Equal(t, []string{"read-me.md"}, tree(t, root))
}

func TestRun_Verbose(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md")

	tr := newTestRunner(t, &config.Config{Force: true, Verbose: true}, false)
	require.NoError(t, tr.run(context.Background(), root))

	assert.Contains(t, tr.errOut.String(), "[DEBUG] Scanning "+root)
	assert.Contains(t, tr.errOut.String(), "[DEBUG] Run ")
}

func TestRun_UnknownOutput(t *testing.T) {
	tr := newTestRunner(t, &config.Config{Output: "xml"}, false)
	err := tr.run(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestRun_CancelledScan(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "Read Me.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := newTestRunner(t, &config.Config{Force: true}, false)
	require.NoError(t, tr.run(ctx, root))
	assert.Equal(t, []string{"Read Me.md"}, tree(t, root))
}

func TestPromptFor(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, "My Pics/a.png", "Read Me.md")

	tr := newTestRunner(t, &config.Config{}, false)
	var got tui.Prompt
	tr.confirm = func(_ context.Context, p tui.Prompt) (bool, error) {
		got = p
		return false, nil
	}
	require.NoError(t, tr.run(context.Background(), root))

	assert.Equal(t, root, got.Root)
	assert.Equal(t, 1, got.Create)
	assert.Equal(t, 2, got.Moves)
	assert.Equal(t, 1, got.Delete)
	assert.Equal(t, int64(len("My Pics/a.png")+len("Read Me.md")), got.Bytes)
}
