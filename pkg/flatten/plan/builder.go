package plan

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/flatten/pkg/flatten/logging"
)

// logger is the package-level logger for planning.
var logger = logging.Get("plan")

// Prober answers questions about paths on disk that the snapshot cannot.
type Prober interface {
	// Exists reports whether path is present.
	Exists(path string) bool

	// IsDir reports whether path is present and is a directory.
	IsDir(path string) bool

	// SameFile reports whether a and b are one directory entry, as they are
	// for differently cased names on case-insensitive filesystems.
	SameFile(a, b string) bool
}

// builder holds the plan under construction and the claims made so far.
type builder struct {
	root    string
	prober  Prober
	slugify SlugFunc

	plan *Plan

	// claimed maps every reserved destination to the path that owns it,
	// including identities that never become moves.
	claimed map[string]string
	// folded maps the lower-cased form of every claimed or created path to
	// the first spelling reserved for it.
	folded  map[string]string
	sources map[string]bool
	created map[string]bool
	deleted map[string]bool
}

// Build computes the flatten plan for listing.
//
// Directories are planned before files, and each group in name order, so the
// result does not depend on the order of listing.Entries. The earlier claimant
// of a name keeps it; later claimants get underscore suffixes.
func Build(listing Listing, prober Prober, slugify SlugFunc) (*Plan, error) {
	if slugify == nil {
		slugify = Slugify
	}

	root := filepath.Clean(listing.Root)
	b := &builder{
		root:    root,
		prober:  prober,
		slugify: slugify,
		plan:    &Plan{Root: root},
		claimed: make(map[string]string),
		folded:  make(map[string]string),
		sources: make(map[string]bool),
		created: make(map[string]bool),
		deleted: make(map[string]bool),
	}

	var dirs, files []Entry
	for _, e := range listing.Entries {
		if filepath.Clean(e.Path) == root {
			continue
		}
		if e.IsDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	sortEntries(dirs)
	sortEntries(files)

	for _, e := range dirs {
		if err := b.addDir(e); err != nil {
			return nil, err
		}
	}
	for _, e := range files {
		if err := b.addFile(e); err != nil {
			return nil, err
		}
	}

	logger.Debug("plan built",
		"root", root,
		"create", len(b.plan.Create),
		"moves", len(b.plan.Moves),
		"delete", len(b.plan.Delete),
		"unchanged", len(b.plan.Unchanged))

	return b.plan, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// target computes root/slug(stem)+ext for an entry.
func (b *builder) target(e Entry) (string, error) {
	name, ok := targetName(e.Name, b.slugify)
	if !ok {
		return "", &NameError{Path: e.Path, Reason: "name has no usable stem"}
	}
	return filepath.Join(b.root, name), nil
}

// claim reserves dest for src. Identity claims reserve the name without a move.
func (b *builder) claim(dest, src string, isDir bool, size int64) {
	b.claimed[dest] = src
	b.reserveFolded(dest)
	if dest == src {
		return
	}
	b.sources[src] = true
	b.plan.Moves = append(b.plan.Moves, Move{From: src, To: dest, IsDir: isDir, Size: size})
}

func (b *builder) reserveFolded(p string) {
	k := strings.ToLower(p)
	if _, ok := b.folded[k]; !ok {
		b.folded[k] = p
	}
}

// foldClash reports whether p differs only in case from a path already
// reserved. Such names are one file on a case-insensitive filesystem.
func (b *builder) foldClash(p string) bool {
	q, ok := b.folded[strings.ToLower(p)]
	return ok && q != p
}

// sameName reports whether x and y are two spellings of one entry. Hard links
// also share a file, but renaming one onto the other leaves both in place.
func (b *builder) sameName(x, y string) bool {
	return strings.EqualFold(x, y) && b.prober.SameFile(x, y)
}

// keep reports whether an entry may stay where it is: its current path is the
// target or a disambiguated form of it, and no one else holds that name.
func (b *builder) keep(target, current string) bool {
	if !inChain(target, current) {
		return false
	}
	if owner, ok := b.claimed[current]; ok && owner != current {
		return false
	}
	return !b.created[current] && !b.foldClash(current)
}

func (b *builder) addDir(e Entry) error {
	target, err := b.target(e)
	if err != nil {
		return err
	}

	// A directory can merge into another directory but never into a file,
	// and never into one that is about to be deleted.
	if b.keep(target, e.Path) {
		target = e.Path
	} else {
		target = disambiguate(target, func(p string) bool {
			if b.foldClash(p) {
				return true
			}
			if p == e.Path {
				return false
			}
			if owner, ok := b.claimed[p]; ok && owner != p {
				return true
			}
			if b.deleted[p] || b.sources[p] {
				return true
			}
			return b.prober.Exists(p) && !b.prober.IsDir(p)
		})
	}

	switch {
	case target == e.Path:
		b.claim(e.Path, e.Path, true, 0)
		for _, c := range e.Children {
			p := filepath.Join(e.Path, c.Name)
			b.claim(p, p, c.IsDir, c.Size)
		}
		b.plan.Unchanged = append(b.plan.Unchanged, e.Path)
		logger.Debug("directory unchanged", "path", e.Path)
		return nil

	case b.sameName(target, e.Path):
		// Only the spelling differs; deleting the old name would delete the target.
		b.claim(target, e.Path, true, dirSize(e))
		logger.Debug("directory renamed in place", "from", e.Path, "to", target)
		return nil
	}

	if !b.created[target] {
		b.created[target] = true
		b.reserveFolded(target)
		b.plan.Create = append(b.plan.Create, target)
	}
	if !b.deleted[e.Path] {
		b.deleted[e.Path] = true
		b.plan.Delete = append(b.plan.Delete, e.Path)
	}

	for _, c := range e.Children {
		src := filepath.Join(e.Path, c.Name)
		dest := disambiguate(filepath.Join(target, c.Name), func(p string) bool {
			if _, ok := b.claimed[p]; ok {
				return true
			}
			if b.foldClash(p) {
				return true
			}
			return b.prober.Exists(p) && !b.sameName(p, src)
		})
		b.claim(dest, src, c.IsDir, c.Size)
	}

	logger.Debug("directory flattened", "from", e.Path, "to", target, "children", len(e.Children))
	return nil
}

func (b *builder) addFile(e Entry) error {
	target, err := b.target(e)
	if err != nil {
		return err
	}

	if b.keep(target, e.Path) {
		target = e.Path
	} else {
		target = disambiguate(target, func(p string) bool {
			if _, ok := b.claimed[p]; ok {
				return true
			}
			if b.created[p] || b.foldClash(p) {
				return true
			}
			if p == e.Path {
				return false
			}
			return b.prober.Exists(p) && !b.sameName(p, e.Path)
		})
	}

	b.claim(target, e.Path, false, e.Size)
	if target == e.Path {
		b.plan.Unchanged = append(b.plan.Unchanged, e.Path)
	}
	return nil
}

func dirSize(e Entry) int64 {
	var total int64
	for _, c := range e.Children {
		total += c.Size
	}
	return total
}
