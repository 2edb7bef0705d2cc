package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

// document is the structure shared by the json and yaml formatters.
type document struct {
	Root      string     `json:"root" yaml:"root"`
	DryRun    bool       `json:"dry_run" yaml:"dry_run"`
	Create    []string   `json:"create" yaml:"create"`
	Moves     []MoveInfo `json:"moves" yaml:"moves"`
	Delete    []string   `json:"delete" yaml:"delete"`
	Unchanged []string   `json:"unchanged" yaml:"unchanged"`
	Summary   summary    `json:"summary" yaml:"summary"`
}

type summary struct {
	Creates    int    `json:"creates" yaml:"creates"`
	Moves      int    `json:"moves" yaml:"moves"`
	Deletes    int    `json:"deletes" yaml:"deletes"`
	Unchanged  int    `json:"unchanged" yaml:"unchanged"`
	Bytes      int64  `json:"bytes" yaml:"bytes"`
	BytesHuman string `json:"bytes_human" yaml:"bytes_human"`
}

func buildDocument(r *Result) document {
	nonNil := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	moves := r.Moves
	if moves == nil {
		moves = []MoveInfo{}
	}

	total := r.TotalSize()
	return document{
		Root:      r.Root,
		DryRun:    r.DryRun,
		Create:    nonNil(r.Create),
		Moves:     moves,
		Delete:    nonNil(r.Delete),
		Unchanged: nonNil(r.Unchanged),
		Summary: summary{
			Creates:    len(r.Create),
			Moves:      len(r.Moves),
			Deletes:    len(r.Delete),
			Unchanged:  len(r.Unchanged),
			Bytes:      total,
			BytesHuman: types.FormatSize(total),
		},
	}
}

// JSONFormatter formats the plan as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
