package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

// PrettyFormatter formats the plan with colors and boxes using lipgloss.
// Paths are shown relative to the root.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if r.Empty() {
		w.WriteString(MutedStyle.Render("Nothing to flatten."))
		w.WriteString("\n")
		return nil
	}

	f.writeCreates(w, r)
	f.writeMoves(w, r)
	f.writeDeletes(w, r)

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Result) string {
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Flatten:"), ValueStyle.Render(r.Root)),
	}
	if r.DryRun {
		lines = append(lines, ArrowStyle.Render("Dry run: nothing will be changed"))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) writeCreates(w *bytes.Buffer, r *Result) {
	if len(r.Create) == 0 {
		return
	}
	w.WriteString(TitleStyle.Render("Create"))
	w.WriteString("\n")
	for _, dir := range r.Create {
		fmt.Fprintf(w, "  %s %s\n", CreateStyle.Render("+"), PathStyle.Render(rel(r.Root, dir)+"/"))
	}
	w.WriteString("\n")
}

func (f *PrettyFormatter) writeMoves(w *bytes.Buffer, r *Result) {
	if len(r.Moves) == 0 {
		return
	}
	w.WriteString(TitleStyle.Render("Move"))
	w.WriteString("\n")
	for _, m := range r.Moves {
		size := m.SizeHuman
		from, to := m.FromRel, m.ToRel
		if m.IsDir {
			size = "dir"
			from += "/"
			to += "/"
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			SizeStyle.Render(size),
			PathStyle.Render(from),
			ArrowStyle.Render("->"),
			PathStyle.Render(to))
	}
	w.WriteString("\n")
}

func (f *PrettyFormatter) writeDeletes(w *bytes.Buffer, r *Result) {
	if len(r.Delete) == 0 {
		return
	}
	w.WriteString(TitleStyle.Render("Delete"))
	w.WriteString("\n")
	for _, dir := range r.Delete {
		fmt.Fprintf(w, "  %s %s\n", DeleteStyle.Render("-"), PathStyle.Render(rel(r.Root, dir)+"/"))
	}
}

func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", ValueStyle.Render(humanize.Comma(int64(len(r.Moves)))),
			LabelStyle.Render(types.Plural(len(r.Moves), "move", "moves"))),
		fmt.Sprintf("%s %s", ValueStyle.Render(humanize.Comma(int64(len(r.Create)))),
			LabelStyle.Render("to create")),
		fmt.Sprintf("%s %s", ValueStyle.Render(humanize.Comma(int64(len(r.Delete)))),
			LabelStyle.Render("to delete")),
		fmt.Sprintf("%s %s", ValueStyle.Render(types.FormatSize(r.TotalSize())),
			LabelStyle.Render("moved")),
	}
	if len(r.Unchanged) > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			ValueStyle.Render(humanize.Comma(int64(len(r.Unchanged)))),
			LabelStyle.Render("unchanged")))
	}
	return FooterBox.Render(strings.Join(parts, MutedStyle.Render("  ·  ")))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
