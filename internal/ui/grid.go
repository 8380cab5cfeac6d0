package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

const (
	maxCellWidth = 24
	minCellWidth = 3

	// Each rendered column adds one cell of padding on both sides plus a
	// border rune.
	columnChrome = 3

	// Lines outside the grid body: title, subtitle, table borders and
	// header, prompt, status and help.
	viewChrome = 12

	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) viewSize() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) visibleRows() int {
	_, h := m.viewSize()
	return max(h-viewChrome, 3)
}

// columnWidths returns the display width of every column, measured over the
// header and all cells and clamped to [minCellWidth, maxCellWidth].
func (m Model) columnWidths() []int {
	headers := m.table.Headers()
	widths := make([]int, len(headers))
	for c, h := range headers {
		widths[c] = runewidth.StringWidth(h)
	}
	for r := 0; r < m.table.NumRows(); r++ {
		row, _ := m.table.Row(r)
		for c, v := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(v))
		}
	}
	for c := range widths {
		widths[c] = min(max(widths[c], minCellWidth), maxCellWidth)
	}
	return widths
}

func (m Model) rowNumberWidth() int {
	return max(len(strconv.Itoa(m.table.NumRows())), 1) + 2
}

// lastVisibleColumn returns the last column that fits on screen when
// rendering starts at first. At least one column is always shown.
func (m Model) lastVisibleColumn(widths []int, first int) int {
	w, _ := m.viewSize()
	used := m.rowNumberWidth() + columnChrome + 1
	last := first
	for c := first; c < len(widths); c++ {
		used += widths[c] + columnChrome
		if used > w && c > first {
			break
		}
		last = c
	}
	return last
}

// scrollToCursor moves the row and column windows so the cursor is visible.
func (m *Model) scrollToCursor() {
	if m.table == nil {
		return
	}

	visible := m.visibleRows()
	if m.cursorRow < m.rowOffset {
		m.rowOffset = m.cursorRow
	}
	if m.cursorRow >= m.rowOffset+visible {
		m.rowOffset = m.cursorRow - visible + 1
	}
	m.rowOffset = max(min(m.rowOffset, m.table.NumRows()-visible), 0)

	if m.cursorCol < m.colOffset {
		m.colOffset = m.cursorCol
	}
	if m.table.NumCols() == 0 {
		m.colOffset = 0
		return
	}
	widths := m.columnWidths()
	m.colOffset = min(m.colOffset, len(widths)-1)
	for m.colOffset < m.cursorCol && m.lastVisibleColumn(widths, m.colOffset) < m.cursorCol {
		m.colOffset++
	}
}

func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// renderGrid draws the visible window of the table. The first column holds
// 1-based row numbers, with a check mark on selected rows.
func (m Model) renderGrid() string {
	if m.table.NumCols() == 0 {
		return SubtitleStyle.Render("Empty table. Press a to add a row.")
	}

	widths := m.columnWidths()
	first := m.colOffset
	last := m.lastVisibleColumn(widths, first)

	headers := []string{"#"}
	allHeaders := m.table.Headers()
	for c := first; c <= last; c++ {
		headers = append(headers, clip(allHeaders[c], widths[c]))
	}

	end := min(m.rowOffset+m.visibleRows(), m.table.NumRows())
	rows := make([][]string, 0, end-m.rowOffset)
	for r := m.rowOffset; r < end; r++ {
		row, _ := m.table.Row(r)
		mark := " "
		if m.selected[r] {
			mark = "✓"
		}
		cells := []string{mark + strconv.Itoa(r+1)}
		for c := first; c <= last; c++ {
			cells = append(cells, clip(row[c], widths[c]))
		}
		rows = append(rows, cells)
	}

	grid := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(gridBorderStyle).
		Wrap(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			r := m.rowOffset + row
			c := first + col - 1

			switch {
			case row == ltable.HeaderRow && c == m.cursorCol:
				return headerCursorStyle
			case row == ltable.HeaderRow:
				return headerStyle
			case col == 0 && m.selected[r]:
				return selectedRowStyle
			case col == 0:
				return rowNumberStyle
			case r == m.cursorRow && c == m.cursorCol:
				return cursorCellStyle
			case m.selected[r]:
				return selectedRowStyle
			case r == m.cursorRow:
				return cursorRowStyle
			}
			return cellStyle
		})

	return grid.String()
}
