// Package table holds the in-memory grid edited by txtgrid: a header line and
// rows of text cells, always kept the same width as the header.
//
// A Table is owned by a single session and is not safe for concurrent use.
// Every mutation either applies fully or returns an error and leaves the table
// as it was.
package table

import (
	"slices"
	"sort"
	"strings"

	"github.com/nconklindev/txtgrid/internal/types"
)

// DefaultHeaders are used when a row is added to a table without columns.
var DefaultHeaders = []string{"Column1", "Column2", "Column3"}

type Table struct {
	headers []string
	rows    [][]string
}

// New returns an empty table with no columns.
func New() *Table {
	return &Table{}
}

// FromData builds a table from a snapshot, normalizing every row to the
// header width.
func FromData(data *types.FileData) *Table {
	t := New()
	if data == nil {
		return t
	}
	t.headers = slices.Clone(data.Headers)
	t.rows = make([][]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		t.rows = append(t.rows, normalize(slices.Clone(row), len(t.headers)))
	}
	return t
}

// Load replaces the table contents with lines split on delim. The first
// non-blank line is the header; blank lines are skipped. Rows shorter than
// the header are padded with empty cells and longer rows are truncated.
func (t *Table) Load(lines []string, delim string) error {
	var (
		headers []string
		rows    [][]string
	)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := SplitLine(line, delim)
		if headers == nil {
			headers = fields
			continue
		}
		rows = append(rows, normalize(fields, len(headers)))
	}

	if headers == nil {
		return ErrEmptyInput
	}

	t.headers = headers
	t.rows = rows
	if t.rows == nil {
		t.rows = [][]string{}
	}
	return nil
}

// SplitLine splits a single line on delim. An empty delimiter yields the
// whole line as one field.
func SplitLine(line, delim string) []string {
	if delim == "" {
		return []string{line}
	}
	return strings.Split(line, delim)
}

func normalize(fields []string, width int) []string {
	if len(fields) >= width {
		return fields[:width:width]
	}
	out := make([]string, width)
	copy(out, fields)
	return out
}

func (t *Table) NumRows() int { return len(t.rows) }

func (t *Table) NumCols() int { return len(t.headers) }

// IsEmpty reports whether the table has no columns.
func (t *Table) IsEmpty() bool { return len(t.headers) == 0 }

// Headers returns a copy of the column names.
func (t *Table) Headers() []string {
	return slices.Clone(t.headers)
}

// Row returns a copy of row r.
func (t *Table) Row(r int) ([]string, error) {
	if r < 0 || r >= len(t.rows) {
		return nil, rowRangeError(r, len(t.rows))
	}
	return slices.Clone(t.rows[r]), nil
}

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// Data returns a snapshot of the table.
func (t *Table) Data() *types.FileData {
	return &types.FileData{
		Headers: t.Headers(),
		Rows:    t.Rows(),
	}
}

func (t *Table) Cell(r, c int) (string, error) {
	if err := t.checkCell(r, c); err != nil {
		return "", err
	}
	return t.rows[r][c], nil
}

// SetCell stores value at (r, c) as-is.
func (t *Table) SetCell(r, c int, value string) error {
	if err := t.checkCell(r, c); err != nil {
		return err
	}
	t.rows[r][c] = value
	return nil
}

func (t *Table) checkCell(r, c int) error {
	if r < 0 || r >= len(t.rows) {
		return rowRangeError(r, len(t.rows))
	}
	if c < 0 || c >= len(t.headers) {
		return colRangeError(c, len(t.headers))
	}
	return nil
}

// AddRow appends an empty row and returns its index. A table without
// columns first gets DefaultHeaders.
func (t *Table) AddRow() int {
	if len(t.headers) == 0 {
		t.headers = slices.Clone(DefaultHeaders)
	}
	t.rows = append(t.rows, make([]string, len(t.headers)))
	return len(t.rows) - 1
}

// DeleteRows removes the rows at the given pre-deletion indices. Duplicates
// are ignored. If any index is invalid nothing is removed.
func (t *Table) DeleteRows(indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(indices))
	targets := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(t.rows) {
			return rowRangeError(idx, len(t.rows))
		}
		if !seen[idx] {
			seen[idx] = true
			targets = append(targets, idx)
		}
	}

	// Highest first so earlier removals don't shift later targets.
	sort.Sort(sort.Reverse(sort.IntSlice(targets)))
	for _, idx := range targets {
		t.rows = slices.Delete(t.rows, idx, idx+1)
	}
	return nil
}

// RenameColumn sets the name of column c to the trimmed name. It returns
// false without changing anything when the name is blank or unchanged.
func (t *Table) RenameColumn(c int, name string) (bool, error) {
	if c < 0 || c >= len(t.headers) {
		return false, colRangeError(c, len(t.headers))
	}
	name = strings.TrimSpace(name)
	if name == "" || name == t.headers[c] {
		return false, nil
	}
	t.headers[c] = name
	return true, nil
}

// InsertColumn adds a column named name directly after column after, with an
// empty cell in every row. after must name an existing column. It returns
// false without changing anything when the name is blank.
func (t *Table) InsertColumn(after int, name string) (bool, error) {
	if after < 0 || after >= len(t.headers) {
		return false, colRangeError(after, len(t.headers))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	pos := after + 1
	t.headers = slices.Insert(t.headers, pos, name)
	for i := range t.rows {
		t.rows[i] = slices.Insert(t.rows[i], pos, "")
	}
	return true, nil
}

// DeleteColumn removes column c from the header and every row.
func (t *Table) DeleteColumn(c int) error {
	if c < 0 || c >= len(t.headers) {
		return colRangeError(c, len(t.headers))
	}
	if len(t.headers) == 1 {
		return ErrLastColumn
	}

	t.headers = slices.Delete(t.headers, c, c+1)
	for i := range t.rows {
		t.rows[i] = slices.Delete(t.rows[i], c, c+1)
	}
	return nil
}
