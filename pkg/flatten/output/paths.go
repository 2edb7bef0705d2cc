package output

import (
	"bytes"
	"path/filepath"
)

// PathsFormatter prints one tab-separated action per line, for piping:
//
//	create	/data/my-pics
//	move	/data/My Pics/a.png	/data/my-pics/a.png
//	delete	/data/My Pics
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, dir := range r.Create {
		w.WriteString("create\t")
		w.WriteString(dir)
		w.WriteByte('\n')
	}
	for _, m := range r.Moves {
		w.WriteString("move\t")
		w.WriteString(m.From)
		w.WriteByte('\t')
		w.WriteString(m.To)
		w.WriteByte('\n')
	}
	for _, dir := range r.Delete {
		w.WriteString("delete\t")
		w.WriteString(dir)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)

// rel returns path relative to root, falling back to path.
func rel(root, path string) string {
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return r
}
