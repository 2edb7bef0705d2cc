package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/jamesainslie/flatten/pkg/flatten/types"
)

// Prompt describes the plan being confirmed.
type Prompt struct {
	Root   string
	Create int
	Moves  int
	Delete int
	Bytes  int64
	DryRun bool
}

// Summary returns a one-line description of the plan.
func (p Prompt) Summary() string {
	parts := []string{
		fmt.Sprintf("%s %s", types.FormatCount(p.Moves), types.Plural(p.Moves, "move", "moves")),
	}
	if p.Create > 0 {
		parts = append(parts, fmt.Sprintf("%s to create", types.FormatCount(p.Create)))
	}
	if p.Delete > 0 {
		parts = append(parts, fmt.Sprintf("%s to delete", types.FormatCount(p.Delete)))
	}
	if p.Bytes > 0 {
		parts = append(parts, types.FormatSize(p.Bytes))
	}
	return strings.Join(parts, ", ")
}

// keyMap holds the prompt's key bindings.
type keyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "flatten"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "q", "esc", "ctrl+c"),
			key.WithHelp("n", "cancel"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
	}
}

// Focus positions within the dialog.
const (
	focusCancel = iota
	focusConfirm
)

// ConfirmModel is a Bubble Tea model asking whether to apply a plan.
// Cancel is focused initially.
type ConfirmModel struct {
	prompt    Prompt
	keys      keyMap
	focused   int
	done      bool
	confirmed bool
}

// NewConfirmModel creates a confirmation model for p.
func NewConfirmModel(p Prompt) ConfirmModel {
	return ConfirmModel{
		prompt:  p,
		keys:    defaultKeyMap(),
		focused: focusCancel,
	}
}

// Confirmed reports whether the user chose to apply the plan.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Done reports whether the user has answered.
func (m ConfirmModel) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		return m.answer(true)
	case key.Matches(keyMsg, m.keys.No):
		return m.answer(false)
	case key.Matches(keyMsg, m.keys.Left):
		m.focused = focusCancel
	case key.Matches(keyMsg, m.keys.Right):
		m.focused = focusConfirm
	case key.Matches(keyMsg, m.keys.Toggle):
		m.focused = (m.focused + 1) % 2
	case key.Matches(keyMsg, m.keys.Submit):
		return m.answer(m.focused == focusConfirm)
	}
	return m, nil
}

func (m ConfirmModel) answer(yes bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.confirmed = yes
	return m, tea.Quit
}

// View renders the dialog, or the answer once given.
func (m ConfirmModel) View() string {
	if m.done {
		if m.confirmed {
			return answerStyle.Render("Flattening "+m.prompt.Root) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(dialogTitleStyle.Render("Flatten " + m.prompt.Root + "?"))
	b.WriteString("\n\n")
	b.WriteString(dialogTextStyle.Render(m.prompt.Summary()))
	b.WriteString("\n")
	if m.prompt.DryRun {
		b.WriteString(warningTextStyle.Render("(Dry run - nothing will be changed)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	cancelBtn := inactiveButtonStyle.Render("Cancel")
	confirmBtn := inactiveButtonStyle.Render("Flatten")
	if m.focused == focusCancel {
		cancelBtn = activeButtonStyle.Render("Cancel")
	} else {
		confirmBtn = activeButtonStyle.Render("Flatten")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, cancelBtn, "  ", confirmBtn))

	return dialogBoxStyle.Render(b.String()) + "\n" + m.renderHints() + "\n"
}

// renderHints renders the key bindings that carry help text.
func (m ConfirmModel) renderHints() string {
	bindings := []key.Binding{m.keys.Yes, m.keys.No, m.keys.Toggle, m.keys.Submit}
	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, keyStyle.Render(h.Key)+" "+keyDescStyle.Render(h.Desc))
	}
	return "  " + strings.Join(hints, "  ")
}

// Ensure ConfirmModel implements tea.Model.
var _ tea.Model = ConfirmModel{}

// Confirm runs the interactive prompt and reports the answer.
// Cancelling ctx aborts the prompt with a negative answer.
func Confirm(ctx context.Context, p Prompt, opts ...tea.ProgramOption) (bool, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	prog := tea.NewProgram(NewConfirmModel(p), opts...)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed(), nil
}

// AskLine writes "Continue? [y/N] " to out and reads one line from in.
// Only "y" or "Y" confirms; end of input declines.
func AskLine(in io.Reader, out io.Writer) (bool, error) {
	if _, err := fmt.Fprint(out, "Continue? [y/N] "); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y", nil
}

// IsInteractive reports whether both in and out are terminals.
func IsInteractive(in, out *os.File) bool {
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
