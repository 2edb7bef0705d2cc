// Package output renders flatten plans for people and for scripts
// (pretty, plain, paths, json, yaml).
//
// Formatters are kept in a registry and selected by name at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromPlan(p, false)); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/flatten/pkg/flatten/logging"
	"github.com/jamesainslie/flatten/pkg/flatten/plan"
	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

var logger = logging.Get("output")

// MoveInfo is one planned move prepared for display.
type MoveInfo struct {
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	FromRel   string `json:"from_rel" yaml:"from_rel"`
	ToRel     string `json:"to_rel" yaml:"to_rel"`
	IsDir     bool   `json:"is_dir" yaml:"is_dir"`
	Size      int64  `json:"size" yaml:"size"`
	SizeHuman string `json:"size_human" yaml:"size_human"`
}

// Result is everything a formatter needs to show a plan.
type Result struct {
	// Root is the directory being flattened.
	Root string

	// Create, Delete and Unchanged hold absolute paths.
	Create    []string
	Moves     []MoveInfo
	Delete    []string
	Unchanged []string

	// DryRun marks previews of runs that will not touch the disk.
	DryRun bool
}

// FromPlan converts a plan into a Result.
func FromPlan(p *plan.Plan, dryRun bool) *Result {
	r := &Result{
		Root:      p.Root,
		Create:    p.Create,
		Delete:    p.Delete,
		Unchanged: p.Unchanged,
		Moves:     make([]MoveInfo, 0, len(p.Moves)),
		DryRun:    dryRun,
	}
	for _, m := range p.Moves {
		r.Moves = append(r.Moves, MoveInfo{
			From:      m.From,
			To:        m.To,
			FromRel:   p.Rel(m.From),
			ToRel:     p.Rel(m.To),
			IsDir:     m.IsDir,
			Size:      m.Size,
			SizeHuman: types.FormatSize(m.Size),
		})
	}
	logger.Debug("prepared result", "root", p.Root, "moves", len(r.Moves))
	return r
}

// Empty reports whether there is nothing to do.
func (r *Result) Empty() bool {
	return len(r.Create) == 0 && len(r.Moves) == 0 && len(r.Delete) == 0
}

// TotalSize returns the sum of all moved sizes.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, m := range r.Moves {
		total += m.Size
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any existing
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
