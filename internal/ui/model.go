// Package ui is the interactive grid: a Bubble Tea program that loads a
// delimited file into a table.Table, edits it in place and saves it as .xlsx.
package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nconklindev/txtgrid/internal/converter"
	"github.com/nconklindev/txtgrid/internal/logging"
	"github.com/nconklindev/txtgrid/internal/table"
	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateLoading
	stateGrid
	stateEditCell
	stateRenameColumn
	stateInsertColumn
	stateConfirmDeleteRows
	stateConfirmDeleteColumn
	stateExportPath
	stateExporting
	stateError
)

// Options configure a grid session. Zero values fall back to the same
// defaults the config package uses.
type Options struct {
	// File is loaded on start. When empty a file picker is shown.
	File      string
	Delimiter string
	Encoding  string
	OutputDir string
	Sheet     string
	Logger    *slog.Logger
}

type Model struct {
	state      state
	opts       Options
	logger     *slog.Logger
	keys       keyMap
	help       help.Model
	filepicker filepicker.Model
	input      textinput.Model
	progress   progress.Model

	table     *table.Table
	file      string
	delimiter string

	cursorRow int
	cursorCol int
	rowOffset int
	colOffset int
	selected  map[int]bool
	pending   []int

	status    string
	statusErr bool
	err       error
	width     int
	height    int

	progressChan chan float64
	resultChan   chan exportResultMsg

	writeClipboard func(string) error
	readClipboard  func() (string, error)
	now            func() time.Time
}

type fileLoadedMsg struct {
	path  string
	delim string
	data  *types.FileData
	err   error
}

type exportResultMsg struct {
	path   string
	result *types.ExportResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(opts Options) Model {
	if opts.Delimiter == "" {
		opts.Delimiter = converter.DelimiterPresets[0]
	}
	if opts.Encoding == "" {
		opts.Encoding = converter.DefaultEncoding
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt", ".csv", ".tsv", ".dat"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(white)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle

	m := Model{
		state:          stateFilePicker,
		opts:           opts,
		logger:         opts.Logger,
		keys:           defaultKeyMap(),
		help:           help.New(),
		filepicker:     fp,
		input:          ti,
		progress:       progress.New(progress.WithGradient("#FF8C42", "#FF9F5A")),
		delimiter:      opts.Delimiter,
		selected:       make(map[int]bool),
		writeClipboard: clipboard.WriteAll,
		readClipboard:  clipboard.ReadAll,
		now:            time.Now,
	}
	if opts.File != "" {
		m.state = stateLoading
		m.file = opts.File
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == stateLoading {
		return m.loadFile(m.file, m.delimiter)
	}
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filepicker.SetHeight(max(msg.Height-10, 5))
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-8, 10), 60)
		m.input.Width = max(msg.Width-8, 10)
		m.scrollToCursor()
		return m, nil

	case fileLoadedMsg:
		return m.handleLoaded(msg), nil

	case exportResultMsg:
		return m.handleExported(msg), nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateExporting {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "n":
				m.table = table.New()
				m.state = stateGrid
				m.setStatus("New empty table. Press a to add a row.")
				return m, nil
			}

		case stateGrid:
			return m.updateGrid(msg)

		case stateEditCell, stateRenameColumn, stateInsertColumn, stateExportPath:
			return m.updateInput(msg)

		case stateConfirmDeleteRows, stateConfirmDeleteColumn:
			return m.updateConfirm(msg), nil

		case stateError:
			return m, tea.Quit
		}
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.file = path
			m.state = stateLoading
			return m, m.loadFile(path, m.delimiter)
		}

		return m, cmd

	case stateEditCell, stateRenameColumn, stateInsertColumn, stateExportPath:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) loadFile(path, delim string) tea.Cmd {
	encoding := m.opts.Encoding
	return func() tea.Msg {
		data, err := converter.ReadFile(path, delim, encoding)
		return fileLoadedMsg{path: path, delim: delim, data: data, err: err}
	}
}

func (m Model) handleLoaded(msg fileLoadedMsg) Model {
	label := converter.DelimiterLabel(msg.delim)
	if msg.err != nil {
		m.logger.Error("load failed", "file", msg.path, "delimiter", label, "error", msg.err)
		if m.table == nil {
			m.err = msg.err
			m.state = stateError
			return m
		}
		// A failed reload keeps the current table and delimiter.
		m.state = stateGrid
		m.setError(fmt.Sprintf("Reload with delimiter %s failed: %v", label, msg.err))
		return m
	}

	m.table = table.FromData(msg.data)
	m.file = msg.path
	m.delimiter = msg.delim
	m.cursorRow, m.cursorCol = 0, 0
	m.rowOffset, m.colOffset = 0, 0
	m.selected = make(map[int]bool)
	m.state = stateGrid

	m.logger.Info("loaded file",
		"file", msg.path,
		"delimiter", label,
		"rows", m.table.NumRows(),
		"columns", m.table.NumCols(),
	)
	m.setStatus(fmt.Sprintf("Loaded %d rows from %s (delimiter: %s)", m.table.NumRows(), filepath.Base(msg.path), label))
	return m
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows, cols := m.table.NumRows(), m.table.NumCols()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursorRow > 0 {
			m.cursorRow--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursorRow < rows-1 {
			m.cursorRow++
		}

	case key.Matches(msg, m.keys.Left):
		if m.cursorCol > 0 {
			m.cursorCol--
		}

	case key.Matches(msg, m.keys.Right):
		if m.cursorCol < cols-1 {
			m.cursorCol++
		}

	case key.Matches(msg, m.keys.Edit):
		if rows == 0 {
			m.setError("No rows to edit. Press a to add one.")
			break
		}
		value, _ := m.table.Cell(m.cursorRow, m.cursorCol)
		return m.openInput(stateEditCell, value, "")

	case key.Matches(msg, m.keys.AddRow):
		r := m.table.AddRow()
		m.cursorRow = r
		m.logger.Info("added row", "row", r, "columns", m.table.NumCols())
		m.setStatus(fmt.Sprintf("Added row %d", r+1))

	case key.Matches(msg, m.keys.Select):
		if rows == 0 {
			break
		}
		if m.selected[m.cursorRow] {
			delete(m.selected, m.cursorRow)
		} else {
			m.selected[m.cursorRow] = true
		}

	case key.Matches(msg, m.keys.DeleteRow):
		m.pending = m.rowsToDelete()
		if len(m.pending) == 0 {
			m.setError("No rows to delete")
			break
		}
		m.state = stateConfirmDeleteRows

	case key.Matches(msg, m.keys.Rename):
		if cols == 0 {
			m.setError("No column to rename")
			break
		}
		return m.openInput(stateRenameColumn, m.table.Headers()[m.cursorCol], "column name")

	case key.Matches(msg, m.keys.InsertCol):
		if cols == 0 {
			m.setError("No column to insert after. Press a to add a row first.")
			break
		}
		return m.openInput(stateInsertColumn, "", "new column name")

	case key.Matches(msg, m.keys.DeleteCol):
		switch cols {
		case 0:
			m.setError("No column to delete")
		case 1:
			m.setError("At least one column must remain")
		default:
			m.state = stateConfirmDeleteColumn
		}

	case key.Matches(msg, m.keys.Copy):
		value, err := m.table.Cell(m.cursorRow, m.cursorCol)
		if err != nil {
			m.setError("Nothing to copy")
			break
		}
		if err := m.writeClipboard(value); err != nil {
			m.logger.Warn("clipboard write failed", "error", err)
			m.setError(fmt.Sprintf("Copy failed: %v", err))
			break
		}
		m.setStatus("Copied cell")

	case key.Matches(msg, m.keys.Paste):
		if rows == 0 {
			m.setError("No cell to paste into")
			break
		}
		text, err := m.readClipboard()
		if err != nil {
			m.logger.Warn("clipboard read failed", "error", err)
			m.setError(fmt.Sprintf("Paste failed: %v", err))
			break
		}
		if err := m.table.SetCell(m.cursorRow, m.cursorCol, singleLine(text)); err != nil {
			m.setError(err.Error())
			break
		}
		m.setStatus("Pasted into cell")

	case key.Matches(msg, m.keys.Delimiter):
		next := converter.NextDelimiter(m.delimiter)
		if m.file == "" {
			m.delimiter = next
			m.setStatus("Delimiter: " + converter.DelimiterLabel(next))
			break
		}
		m.setStatus(fmt.Sprintf("Reloading with delimiter %s...", converter.DelimiterLabel(next)))
		return m, m.loadFile(m.file, next)

	case key.Matches(msg, m.keys.Save):
		if rows == 0 {
			m.setError("No data to save")
			break
		}
		path := filepath.Join(m.opts.OutputDir, converter.DefaultOutputName(m.now()))
		return m.openInput(stateExportPath, path, "output.xlsx")
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) rowsToDelete() []int {
	if len(m.selected) > 0 {
		rows := make([]int, 0, len(m.selected))
		for r := range m.selected {
			rows = append(rows, r)
		}
		slices.Sort(rows)
		return rows
	}
	if m.table.NumRows() == 0 {
		return nil
	}
	return []int{m.cursorRow}
}

func (m Model) openInput(s state, value, placeholder string) (tea.Model, tea.Cmd) {
	m.state = s
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.state = stateGrid
		m.setStatus("Cancelled")
		return m, nil

	case tea.KeyEnter:
		m.input.Blur()
		return m.commitInput(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) commitInput(value string) (tea.Model, tea.Cmd) {
	s := m.state
	m.state = stateGrid

	switch s {
	case stateEditCell:
		if err := m.table.SetCell(m.cursorRow, m.cursorCol, value); err != nil {
			m.setError(err.Error())
			break
		}
		m.logger.Debug("edited cell", "row", m.cursorRow, "column", m.cursorCol)
		m.setStatus(fmt.Sprintf("Updated row %d, column %q", m.cursorRow+1, m.table.Headers()[m.cursorCol]))

	case stateRenameColumn:
		old := m.table.Headers()[m.cursorCol]
		changed, err := m.table.RenameColumn(m.cursorCol, value)
		switch {
		case err != nil:
			m.setError(err.Error())
		case !changed:
			m.setStatus("Column name unchanged")
		default:
			name := m.table.Headers()[m.cursorCol]
			m.logger.Info("renamed column", "column", m.cursorCol, "from", old, "to", name)
			m.setStatus(fmt.Sprintf("Renamed %q to %q", old, name))
		}

	case stateInsertColumn:
		changed, err := m.table.InsertColumn(m.cursorCol, value)
		switch {
		case err != nil:
			m.setError(err.Error())
		case !changed:
			m.setStatus("Column name required")
		default:
			m.cursorCol++
			name := m.table.Headers()[m.cursorCol]
			m.logger.Info("inserted column", "column", m.cursorCol, "name", name)
			m.setStatus(fmt.Sprintf("Inserted column %q", name))
		}

	case stateExportPath:
		path := strings.TrimSpace(value)
		if path == "" {
			m.setError("Output path required")
			break
		}
		if filepath.Ext(path) == "" {
			path += ".xlsx"
		}
		return m.startExport(path)
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) Model {
	s := m.state
	m.state = stateGrid

	if answer := msg.String(); answer != "y" && answer != "Y" {
		m.pending = nil
		m.setStatus("Cancelled")
		return m
	}

	switch s {
	case stateConfirmDeleteRows:
		if err := m.table.DeleteRows(m.pending); err != nil {
			m.setError(err.Error())
			break
		}
		m.logger.Info("deleted rows", "count", len(m.pending), "remaining", m.table.NumRows())
		m.setStatus(fmt.Sprintf("Deleted %d row(s)", len(m.pending)))
		m.selected = make(map[int]bool)

	case stateConfirmDeleteColumn:
		name := m.table.Headers()[m.cursorCol]
		if err := m.table.DeleteColumn(m.cursorCol); err != nil {
			if errors.Is(err, table.ErrLastColumn) {
				m.setError("At least one column must remain")
			} else {
				m.setError(err.Error())
			}
			break
		}
		m.logger.Info("deleted column", "column", m.cursorCol, "name", name)
		m.setStatus(fmt.Sprintf("Deleted column %q", name))
	}

	m.pending = nil
	m.clampCursor()
	m.scrollToCursor()
	return m
}

func (m Model) startExport(path string) (tea.Model, tea.Cmd) {
	m.state = stateExporting
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan exportResultMsg, 1)

	// Export works on a snapshot so the goroutine never shares the table.
	data := m.table.Data()
	opts := converter.ExportOptions{Sheet: m.opts.Sheet, Progress: m.progressChan}
	progressChan := m.progressChan
	resultChan := m.resultChan

	m.logger.Debug("exporting", "file", path, "rows", len(data.Rows), "sheet", opts.Sheet)

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := converter.Export(data, path, opts)
				resultChan <- exportResultMsg{path: path, result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		m.progress.SetPercent(0),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan exportResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) handleExported(msg exportResultMsg) Model {
	m.state = stateGrid
	m.progressChan = nil
	m.resultChan = nil

	if msg.err != nil {
		m.logger.Error("export failed", "file", msg.path, "error", msg.err)
		m.setError(fmt.Sprintf("Save failed: %v", msg.err))
		return m
	}

	m.logger.Info("exported workbook",
		"file", msg.result.OutputFile,
		"sheet", msg.result.Sheet,
		"rows", msg.result.RowsProcessed,
	)
	m.setStatus(fmt.Sprintf("Saved %d rows to %s", msg.result.RowsProcessed, msg.result.OutputFile))
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) clampCursor() {
	if m.table == nil {
		return
	}
	m.cursorRow = min(m.cursorRow, max(m.table.NumRows()-1, 0))
	m.cursorCol = min(m.cursorCol, max(m.table.NumCols()-1, 0))
}

// singleLine flattens pasted text so a cell never spans lines.
func singleLine(s string) string {
	s = strings.TrimRight(s, "\r\n")
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
