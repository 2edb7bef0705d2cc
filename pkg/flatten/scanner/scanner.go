package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/flatten/pkg/flatten/logging"
	"github.com/jamesainslie/flatten/pkg/flatten/plan"
)

var logger = logging.Get("scanner")

// Scanner snapshots a directory using fastwalk.
type Scanner struct {
	opts Options

	// root is the resolved absolute path being scanned.
	root string

	mu       sync.Mutex
	entries  map[string]*plan.Entry
	children map[string][]plan.Child
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{
		opts:     opts,
		entries:  make(map[string]*plan.Entry),
		children: make(map[string][]plan.Child),
	}
}

// Scan walks opts.Root and returns its listing.
func Scan(ctx context.Context, opts Options) (*plan.Listing, error) {
	return New(opts).Scan(ctx)
}

// Scan performs the walk and returns the listing.
// It blocks until complete or the context is cancelled. Any directory that
// cannot be read fails the whole scan with a *plan.ScanError.
func (s *Scanner) Scan(ctx context.Context) (*plan.Listing, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root

	if err := s.executeWalk(ctx); err != nil {
		return nil, err
	}

	listing := s.listing()
	logger.Debug("scan complete", "root", root, "entries", len(listing.Entries))
	return listing, nil
}

// validateRoot resolves the root path to absolute and verifies it is a directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", &plan.ScanError{Path: s.opts.Root, Err: err}
	}
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return "", &plan.ScanError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &plan.ScanError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	return root, nil
}

// executeWalk runs fastwalk over the root.
func (s *Scanner) executeWalk(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		<-walkCtx.Done()
		close(done)
	}()

	err := fastwalk.Walk(&conf, s.root, s.walkCallback(done))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		var scanErr *plan.ScanError
		if errors.As(err, &scanErr) {
			return scanErr
		}
		return &plan.ScanError{Path: s.root, Err: err}
	}
	return nil
}

// depth returns 1 for entries directly under the root, 2 for their children.
func (s *Scanner) depth(path string) int {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *Scanner) walkCallback(done <-chan struct{}) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-done:
			return fastwalk.ErrSkipFiles
		default:
		}

		if err != nil {
			return &plan.ScanError{Path: path, Err: err}
		}

		switch s.depth(path) {
		case 0:
			return nil
		case 1:
			return s.handleEntry(path, d)
		case 2:
			s.handleChild(path, d)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		default:
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
	}
}

// handleEntry records a top-level entry.
func (s *Scanner) handleEntry(path string, d fs.DirEntry) error {
	if s.isExcluded(d.Name()) {
		logger.Debug("excluded", "path", path)
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	}

	entry := &plan.Entry{
		Path:  path,
		Name:  d.Name(),
		IsDir: d.IsDir(),
	}
	if !entry.IsDir {
		entry.Size = entrySize(d)
	}

	s.mu.Lock()
	s.entries[path] = entry
	s.mu.Unlock()
	return nil
}

// handleChild records an entry of a top-level directory.
func (s *Scanner) handleChild(path string, d fs.DirEntry) {
	child := plan.Child{
		Name:  d.Name(),
		IsDir: d.IsDir(),
	}
	if !child.IsDir {
		child.Size = entrySize(d)
	}

	parent := filepath.Dir(path)
	s.mu.Lock()
	s.children[parent] = append(s.children[parent], child)
	s.mu.Unlock()
}

// isExcluded checks if a top-level name matches any exclusion pattern.
func (s *Scanner) isExcluded(name string) bool {
	for _, pattern := range s.opts.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// listing assembles the collected entries in name order.
func (s *Scanner) listing() *plan.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &plan.Listing{Root: s.root, Entries: make([]plan.Entry, 0, len(s.entries))}
	for path, e := range s.entries {
		if e.IsDir {
			children := s.children[path]
			sort.Slice(children, func(i, j int) bool {
				return children[i].Name < children[j].Name
			})
			e.Children = children
		}
		out.Entries = append(out.Entries, *e)
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		return out.Entries[i].Name < out.Entries[j].Name
	})
	return out
}

func entrySize(d fs.DirEntry) int64 {
	if !d.Type().IsRegular() {
		return 0
	}
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}
