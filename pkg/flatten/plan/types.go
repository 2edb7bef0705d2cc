package plan

import (
	"path/filepath"
)

// Child is one entry inside a top-level directory.
type Child struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// Entry is one immediate child of the scan root.
type Entry struct {
	// Path is the absolute path of the entry.
	Path string `json:"path"`

	// Name is the base name of the entry.
	Name string `json:"name"`

	IsDir bool  `json:"is_dir"`
	Size  int64 `json:"size"`

	// Children lists the directory's own entries. Empty for files.
	Children []Child `json:"children,omitempty"`
}

// Listing is a snapshot of the scan root and its first two levels.
type Listing struct {
	Root    string  `json:"root"`
	Entries []Entry `json:"entries"`
}

// Move renames From to To.
type Move struct {
	From  string `json:"from"`
	To    string `json:"to"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// Plan is the complete, side-effect-free description of a flatten run.
// It must be applied as Create, then Moves, then Delete.
type Plan struct {
	Root string `json:"root"`

	// Create lists directories to create before any move.
	Create []string `json:"create"`

	// Moves lists renames in the order they were planned. No two share a destination.
	Moves []Move `json:"moves"`

	// Delete lists directories to remove once their contents have moved.
	Delete []string `json:"delete"`

	// Unchanged lists entries that are already correctly named.
	Unchanged []string `json:"unchanged,omitempty"`
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Moves) == 0 && len(p.Delete) == 0
}

// Destinations returns the mapping from destination to source.
func (p *Plan) Destinations() map[string]string {
	out := make(map[string]string, len(p.Moves))
	for _, m := range p.Moves {
		out[m.To] = m.From
	}
	return out
}

// TotalBytes returns the combined size of every moved file.
func (p *Plan) TotalBytes() int64 {
	var total int64
	for _, m := range p.Moves {
		total += m.Size
	}
	return total
}

// Rel returns path relative to the plan root, or path itself if it lies outside.
func (p *Plan) Rel(path string) string {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// Counts returns the number of directories to create, moves, and directories to delete.
func (p *Plan) Counts() (create, moves, remove int) {
	return len(p.Create), len(p.Moves), len(p.Delete)
}
