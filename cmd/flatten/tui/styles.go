// Package tui provides the interactive confirmation prompt shown before a
// flatten plan is applied. It uses Charmbracelet's Bubble Tea, Lip Gloss and
// Bubbles.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the TUI.
var (
	primaryColor = lipgloss.Color("#7D56F4")

	// Status colors
	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")

	// Neutral colors
	mutedColor  = lipgloss.Color("#666666")
	subtleColor = lipgloss.Color("#444444")
)

// Confirmation dialog styles.
var (
	// dialogBoxStyle for the prompt container.
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2).
			Width(dialogWidth)

	// dialogTitleStyle for the prompt title.
	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warningColor)

	// dialogTextStyle for the plan summary.
	dialogTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// warningTextStyle for the dry run notice.
	warningTextStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	// activeButtonStyle for the focused button.
	activeButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Margin(0, 1).
				Background(primaryColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	// inactiveButtonStyle for the other button.
	inactiveButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Margin(0, 1).
				Background(subtleColor).
				Foreground(lipgloss.Color("#CCCCCC"))
)

// Key hint styles.
var (
	keyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// answerStyle for the final answer line.
	answerStyle = lipgloss.NewStyle().
			Foreground(successColor)
)

// dialogWidth is the width of the confirmation box.
const dialogWidth = 56
