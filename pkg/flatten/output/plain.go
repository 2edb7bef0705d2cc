package output

import (
	"bytes"
	"fmt"
	"path/filepath"
)

// PlainFormatter prints the plan as unstyled text: a short config block,
// then each create, each move as a From/To pair, and each delete.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	fmt.Fprintln(w, "Config:")
	fmt.Fprintf(w, "  Scanning: %s\n", filepath.Join(r.Root, "*"))
	fmt.Fprintf(w, "  Move to:  %s\n", r.Root)
	if r.DryRun {
		fmt.Fprintln(w, "  Dry run:  yes")
	}
	fmt.Fprintln(w)

	if r.Empty() {
		return nil
	}

	for _, dir := range r.Create {
		fmt.Fprintf(w, "  Create: %s\n", dir)
	}
	if len(r.Create) > 0 {
		fmt.Fprintln(w)
	}

	for _, m := range r.Moves {
		fmt.Fprintf(w, "  From: %s\n  To:   %s\n\n", m.From, m.To)
	}

	for _, dir := range r.Delete {
		fmt.Fprintf(w, "  Delete: %s\n", dir)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
