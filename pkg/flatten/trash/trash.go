// Package trash sends emptied directories to the desktop trash instead of
// deleting them outright. When no trash tool is available it falls back to
// permanent removal.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jamesainslie/flatten/pkg/flatten/logging"
)

// commandTimeout bounds each external trash command.
const commandTimeout = 30 * time.Second

var logger = logging.Get("trash")

// command is one external program that can trash a path.
type command struct {
	name string
	args func(path string) []string
}

// commands lists the trash programs tried on each platform, in order.
var commands = map[string][]command{
	"darwin": {
		{name: "osascript", args: func(path string) []string {
			return []string{"-e", fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)}
		}},
	},
	"linux": {
		{name: "gio", args: func(path string) []string { return []string{"trash", path} }},
		{name: "trash-put", args: func(path string) []string { return []string{path} }},
	},
}

// Trasher moves paths to the trash using the platform's tools.
type Trasher struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// New returns a Trasher for the running platform.
func New() *Trasher {
	return &Trasher{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// MoveToTrash moves path to the system trash using the default Trasher.
func MoveToTrash(ctx context.Context, path string) error {
	return New().MoveToTrash(ctx, path)
}

// MoveToTrash moves path to the trash, or removes it permanently when every
// trash command is missing or fails.
func (t *Trasher) MoveToTrash(ctx context.Context, path string) error {
	if _, err := os.Lstat(path); err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	for _, c := range commands[t.goos] {
		bin, err := t.lookPath(c.name)
		if err != nil {
			continue
		}

		cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		err = t.run(cmdCtx, bin, c.args(absPath)...)
		cancel()
		if err == nil {
			logger.Debug("trashed", "path", absPath, "via", c.name)
			return nil
		}
		logger.Warn("trash command failed", "path", absPath, "via", c.name, "error", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return fallbackDelete(absPath)
}

// fallbackDelete permanently removes a file or directory.
func fallbackDelete(path string) error {
	logger.Debug("no trash available, deleting", "path", path)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
