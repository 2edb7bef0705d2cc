// Package apply carries out a flatten plan against the filesystem.
//
// A plan is applied in three phases: every directory in Create is made, then
// every Move is performed, then every directory in Delete is removed. Nothing
// is rolled back; a failed run leaves earlier actions in place, and planning
// again from a fresh scan picks up where it stopped.
package apply

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jamesainslie/flatten/pkg/flatten/fsops"
	"github.com/jamesainslie/flatten/pkg/flatten/logging"
	"github.com/jamesainslie/flatten/pkg/flatten/plan"
	"github.com/jamesainslie/flatten/pkg/flatten/trash"
)

var logger = logging.Get("apply")

// Action identifies the kind of step an Event reports.
type Action int

// Actions in the order they are applied.
const (
	ActionCreate Action = iota
	ActionMove
	ActionDelete
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event describes one step of a run.
type Event struct {
	Action Action

	// Path is the directory created or deleted, or the move destination.
	Path string

	// From is the move source. Empty for creates and deletes.
	From string

	// Skipped is set when the step needed no change, such as a directory
	// that already existed.
	Skipped bool
}

// Trasher moves a path to the system trash.
type Trasher interface {
	MoveToTrash(ctx context.Context, path string) error
}

// Options configures an Executor.
type Options struct {
	// DryRun reports every step without touching the filesystem.
	DryRun bool

	// Trash sends deleted directories to the system trash.
	Trash bool

	// Trasher overrides the trash backend. Nil uses the platform default.
	Trasher Trasher

	// OnAction is called after each step, in order.
	OnAction func(Event)
}

// Result summarizes a run.
type Result struct {
	RunID   string `json:"run_id"`
	Created int    `json:"created"`
	Moved   int    `json:"moved"`
	Deleted int    `json:"deleted"`
	Skipped int    `json:"skipped"`
	Bytes   int64  `json:"bytes"`
	DryRun  bool   `json:"dry_run"`
}

// Executor applies plans.
type Executor struct {
	fs   fsops.FS
	opts Options
}

// New creates an Executor operating on fs.
func New(fs fsops.FS, opts Options) *Executor {
	if opts.Trash && opts.Trasher == nil {
		opts.Trasher = trash.New()
	}
	return &Executor{fs: fs, opts: opts}
}

// Execute applies p. It stops at the first failure and returns the partial
// result alongside the error.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), DryRun: e.opts.DryRun}
	log := logger.With("run", res.RunID)

	create, moves, remove := p.Counts()
	log.Info("applying plan",
		"root", p.Root,
		"create", create,
		"moves", moves,
		"delete", remove,
		"dry_run", e.opts.DryRun)

	for _, dir := range p.Create {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.create(dir, res, log); err != nil {
			log.Error("create failed", "path", dir, "error", err)
			return res, err
		}
	}

	for _, m := range p.Moves {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.move(m, res, log); err != nil {
			log.Error("move failed", "from", m.From, "to", m.To, "error", err)
			return res, err
		}
	}

	for _, dir := range p.Delete {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.delete(ctx, dir, res, log); err != nil {
			log.Error("delete failed", "path", dir, "error", err)
			return res, err
		}
	}

	log.Info("plan applied",
		"created", res.Created,
		"moved", res.Moved,
		"deleted", res.Deleted,
		"skipped", res.Skipped)
	return res, nil
}

func (e *Executor) create(dir string, res *Result, log *logging.Logger) error {
	if e.fs.IsDir(dir) {
		res.Skipped++
		e.emit(Event{Action: ActionCreate, Path: dir, Skipped: true})
		return nil
	}

	if !e.opts.DryRun {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	log.Debug("created", "path", dir)
	res.Created++
	e.emit(Event{Action: ActionCreate, Path: dir})
	return nil
}

func (e *Executor) move(m plan.Move, res *Result, log *logging.Logger) error {
	if m.From == m.To {
		res.Skipped++
		e.emit(Event{Action: ActionMove, Path: m.To, From: m.From, Skipped: true})
		return nil
	}

	// In a dry run the destination directory may not exist yet; checks that
	// depend on earlier steps are left to the real run.
	if !e.opts.DryRun {
		if !e.fs.Exists(m.From) {
			return &MoveError{From: m.From, To: m.To, Err: ErrSourceMissing}
		}
		if e.fs.Exists(m.To) && !e.fs.SameFile(m.From, m.To) {
			return &MoveError{From: m.From, To: m.To, Err: ErrDestinationExists}
		}
		if err := e.fs.Rename(m.From, m.To); err != nil {
			return &MoveError{From: m.From, To: m.To, Err: err}
		}
	}

	log.Debug("moved", "from", m.From, "to", m.To)
	res.Moved++
	res.Bytes += m.Size
	e.emit(Event{Action: ActionMove, Path: m.To, From: m.From})
	return nil
}

func (e *Executor) delete(ctx context.Context, dir string, res *Result, log *logging.Logger) error {
	if e.opts.DryRun {
		log.Debug("deleted", "path", dir)
		res.Deleted++
		e.emit(Event{Action: ActionDelete, Path: dir})
		return nil
	}

	empty, err := e.fs.IsEmptyDir(dir)
	switch {
	case os.IsNotExist(err):
		res.Skipped++
		e.emit(Event{Action: ActionDelete, Path: dir, Skipped: true})
		return nil
	case err != nil:
		return &DeleteError{Path: dir, Err: err}
	case !empty:
		return &DeleteError{Path: dir, Err: ErrNotEmpty}
	}

	if e.opts.Trash {
		err = e.opts.Trasher.MoveToTrash(ctx, dir)
	} else {
		err = e.fs.RemoveAll(dir)
	}
	if err != nil {
		return &DeleteError{Path: dir, Err: err}
	}

	log.Debug("deleted", "path", dir, "trash", e.opts.Trash)
	res.Deleted++
	e.emit(Event{Action: ActionDelete, Path: dir})
	return nil
}

func (e *Executor) emit(ev Event) {
	if e.opts.OnAction != nil {
		e.opts.OnAction(ev)
	}
}
