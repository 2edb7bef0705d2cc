// Package scanner takes the two-level snapshot of a directory that flatten
// plans against. It walks the root with fastwalk, records every top-level
// entry and, for directories, their immediate children, and never descends
// further.
package scanner

import (
	"fmt"
	"path/filepath"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the directory to snapshot.
	Root string

	// Exclude contains glob patterns matched against top-level entry names.
	// Excluded entries are left out of the listing entirely.
	Exclude []string
}

// DefaultOptions returns options that scan the current directory.
func DefaultOptions() Options {
	return Options{
		Root: ".",
	}
}

// Validate applies defaults and checks the exclude patterns.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	for _, pattern := range o.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}
