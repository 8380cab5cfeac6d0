package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/txtgrid/internal/converter"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateLoading:
		return m.viewLoading()
	case stateError:
		return m.viewError()
	}
	return m.viewGrid()
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("txtgrid"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Select a delimited text file (delimiter: %s, encoding: %s)",
		converter.DelimiterLabel(m.delimiter), m.opts.Encoding)))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: open • n: new empty table • q: quit"))

	return s.String()
}

func (m Model) viewLoading() string {
	return BoxStyle.Render(TitleStyle.Render("Loading...") + "\n\n" + m.file)
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewGrid() string {
	var s strings.Builder

	name := "untitled"
	if m.file != "" {
		name = filepath.Base(m.file)
	}
	title := TitleStyle.Render("txtgrid • " + name)
	info := SubtitleStyle.Render(fmt.Sprintf("  %d rows × %d columns • delimiter: %s",
		m.table.NumRows(), m.table.NumCols(), converter.DelimiterLabel(m.delimiter)))
	if n := len(m.selected); n > 0 {
		info += SuccessStyle.Render(fmt.Sprintf(" • %d selected", n))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, title, info))
	s.WriteString("\n")
	s.WriteString(m.renderGrid())
	s.WriteString("\n")

	if prompt := m.viewPrompt(); prompt != "" {
		s.WriteString(prompt)
		s.WriteString("\n")
	}

	switch {
	case m.status == "":
	case m.statusErr:
		s.WriteString(ErrorStyle.Render(m.status))
	default:
		s.WriteString(SuccessStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

// viewPrompt renders the dialog line of the current state, if any.
func (m Model) viewPrompt() string {
	switch m.state {
	case stateEditCell:
		return m.inputPrompt(fmt.Sprintf("Edit row %d, %q", m.cursorRow+1, m.table.Headers()[m.cursorCol]))
	case stateRenameColumn:
		return m.inputPrompt(fmt.Sprintf("Rename column %q", m.table.Headers()[m.cursorCol]))
	case stateInsertColumn:
		return m.inputPrompt(fmt.Sprintf("Insert column after %q", m.table.Headers()[m.cursorCol]))
	case stateExportPath:
		return m.inputPrompt("Save as .xlsx")
	case stateConfirmDeleteRows:
		return PromptStyle.Render(fmt.Sprintf("Delete %d row(s)? (y/N)", len(m.pending)))
	case stateConfirmDeleteColumn:
		return PromptStyle.Render(fmt.Sprintf("Delete column %q? (y/N)", m.table.Headers()[m.cursorCol]))
	case stateExporting:
		return "Saving...\n" + m.progress.View()
	}
	return ""
}

func (m Model) inputPrompt(label string) string {
	return PromptStyle.Render(label) + SubtitleStyle.Render("  enter: confirm • esc: cancel") + "\n" + m.input.View()
}
