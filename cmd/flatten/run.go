package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/flatten/cmd/flatten/tui"
	"github.com/jamesainslie/flatten/pkg/flatten/apply"
	"github.com/jamesainslie/flatten/pkg/flatten/config"
	"github.com/jamesainslie/flatten/pkg/flatten/fsops"
	"github.com/jamesainslie/flatten/pkg/flatten/output"
	"github.com/jamesainslie/flatten/pkg/flatten/plan"
	"github.com/jamesainslie/flatten/pkg/flatten/scanner"
	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

// textFormats are the preview formats meant for people. The others are
// meant for programs and keep stdout free of anything else.
var textFormats = map[string]bool{
	"pretty": true,
	"plain":  true,
}

// confirmFunc asks whether to apply a plan.
type confirmFunc func(ctx context.Context, p tui.Prompt) (bool, error)

// runner plans and applies one flatten run.
type runner struct {
	cfg     *config.Config
	fs      fsops.FS
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	confirm confirmFunc
}

// runFlatten is the root command.
func runFlatten(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	root, err := resolveRoot(args, cfg.DefaultPath)
	if err != nil {
		return err
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	r := &runner{
		cfg:    cfg,
		fs:     fsops.NewRealFS(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	r.confirm = r.terminalConfirm
	return r.run(ctx, root)
}

// resolveRoot picks the directory to flatten: the argument if given,
// otherwise the configured default path.
func resolveRoot(args []string, defaultPath string) (string, error) {
	path := defaultPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = config.DefaultPath
	}

	path, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}

	return absPath, nil
}

// run scans root, previews the plan, asks for confirmation and applies it.
func (r *runner) run(ctx context.Context, root string) error {
	formatter, err := output.Get(r.cfg.Output)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", r.cfg.Output, output.Available())
	}
	text := textFormats[r.cfg.Output]

	r.verbose("Scanning %s", root)
	listing, err := scanner.Scan(ctx, scanner.Options{Root: root, Exclude: r.cfg.Exclude})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.info(r.errOut, "Nothing changed")
			return nil
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	p, err := plan.Build(*listing, r.fs, plan.Slugify)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}
	r.verbose("Planned %d creates, %d moves, %d deletes, %d unchanged",
		len(p.Create), len(p.Moves), len(p.Delete), len(p.Unchanged))

	if text && p.Empty() {
		r.info(r.out, "Nothing to do")
		return nil
	}

	if !text || !r.cfg.Quiet {
		var buf bytes.Buffer
		if err := formatter.Format(&buf, output.FromPlan(p, r.cfg.DryRun)); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		if _, err := io.Copy(r.out, &buf); err != nil {
			return err
		}
	}

	if p.Empty() {
		return nil
	}

	// Everything after the preview goes to stderr when stdout carries a document.
	logOut := r.out
	if !text {
		logOut = r.errOut
	}

	if !r.cfg.Force && !r.cfg.DryRun {
		ok, err := r.confirm(ctx, promptFor(p, r.cfg.DryRun))
		if err != nil {
			return err
		}
		if !ok {
			r.info(logOut, "Nothing changed")
			return nil
		}
	}
	r.info(logOut, "")

	executor := apply.New(r.fs, apply.Options{
		DryRun:   r.cfg.DryRun,
		Trash:    r.cfg.Trash,
		OnAction: func(ev apply.Event) { r.report(logOut, ev) },
	})

	res, err := executor.Execute(ctx, p)
	if err != nil {
		return fmt.Errorf("flatten failed: %w", err)
	}

	if res.DryRun {
		r.info(logOut, "\nDry run: nothing changed")
	}
	r.verbose("Run %s: %d created, %d moved (%s), %d deleted, %d skipped",
		res.RunID, res.Created, res.Moved, types.FormatSize(res.Bytes), res.Deleted, res.Skipped)
	return nil
}

// report prints one line of the execution log.
func (r *runner) report(w io.Writer, ev apply.Event) {
	switch ev.Action {
	case apply.ActionCreate:
		r.info(w, "  Create: %s", ev.Path)
	case apply.ActionMove:
		r.info(w, "  Move:   %s", ev.Path)
	case apply.ActionDelete:
		r.info(w, "  Delete: %s", ev.Path)
	}
}

// terminalConfirm shows the interactive prompt on a terminal and falls
// back to a line prompt otherwise.
func (r *runner) terminalConfirm(ctx context.Context, p tui.Prompt) (bool, error) {
	if textFormats[r.cfg.Output] && tui.IsInteractive(os.Stdin, os.Stdout) {
		return tui.Confirm(ctx, p)
	}
	return r.lineConfirm(ctx, p)
}

// lineConfirm asks on the log stream and reads the answer from r.in.
func (r *runner) lineConfirm(_ context.Context, _ tui.Prompt) (bool, error) {
	w := r.out
	if !textFormats[r.cfg.Output] {
		w = r.errOut
	}
	fmt.Fprintln(w)
	return tui.AskLine(r.in, w)
}

func promptFor(p *plan.Plan, dryRun bool) tui.Prompt {
	create, moves, remove := p.Counts()
	return tui.Prompt{
		Root:   p.Root,
		Create: create,
		Moves:  moves,
		Delete: remove,
		Bytes:  p.TotalBytes(),
		DryRun: dryRun,
	}
}

// info writes a line to w unless quiet mode is enabled.
func (r *runner) info(w io.Writer, format string, args ...interface{}) {
	if !r.cfg.Quiet {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// verbose writes a debug line to stderr if verbose mode is enabled.
func (r *runner) verbose(format string, args ...interface{}) {
	if r.cfg.Verbose && !r.cfg.Quiet {
		fmt.Fprintf(r.errOut, "[DEBUG] "+format+"\n", args...)
	}
}
