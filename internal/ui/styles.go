package ui

import "github.com/charmbracelet/lipgloss"

const (
	accent    = lipgloss.Color("#FF8C42")
	highlight = lipgloss.Color("#FFB84D")
	muted     = lipgloss.Color("#6B7280")
	danger    = lipgloss.Color("#FF4757")
	white     = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	PromptStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	// Grid cells. Every cell style carries the same horizontal padding so
	// columns do not shift when the cursor moves.
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(white)

	headerStyle = cellStyle.
			Bold(true).
			Foreground(accent)

	headerCursorStyle = headerStyle.
				Underline(true)

	rowNumberStyle = cellStyle.
			Foreground(muted)

	cursorRowStyle = cellStyle.
			Foreground(highlight)

	selectedRowStyle = cellStyle.
				Foreground(highlight).
				Bold(true)

	cursorCellStyle = cellStyle.
			Foreground(lipgloss.Color("#1F2937")).
			Background(accent).
			Bold(true)

	gridBorderStyle = lipgloss.NewStyle().
			Foreground(muted)
)
