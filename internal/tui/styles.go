package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6B7280")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	linkColor      = lipgloss.Color("#3B82F6")

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)

	// Cards
	cardNameStyle = lipgloss.NewStyle().
			Bold(true)

	selectedNameStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	cardURLStyle = lipgloss.NewStyle().
			Foreground(linkColor).
			Underline(true)

	cardDescStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Italic(true)

	// Notices
	noticeStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// Input area
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(primaryColor)

	modeTagStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Padding(0, 1)

	// Modal
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)
