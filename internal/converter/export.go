package converter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nconklindev/txtgrid/internal/table"
	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	// DefaultSheet is the name of the single exported worksheet.
	DefaultSheet = "Data"

	// NumericThreshold is the share of parseable cells above which a column
	// is written as numbers.
	NumericThreshold = 0.8

	MaxColumnWidth = 50
	columnPadding  = 2
)

// WriteError reports that the destination spreadsheet could not be written.
// No file is left at Path when it is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type ExportOptions struct {
	Sheet string

	// Progress, when set, receives the fraction of rows streamed so far.
	// Sends never block; updates are dropped when the channel is full.
	Progress chan<- float64
}

func (o ExportOptions) report(done, total int) {
	if o.Progress == nil || total == 0 {
		return
	}
	select {
	case o.Progress <- float64(done) / float64(total):
	default:
	}
}

// DefaultOutputName returns output_YYYYMMDD_HHMMSS.xlsx for t.
func DefaultOutputName(t time.Time) string {
	return "output_" + t.Format("20060102_150405") + ".xlsx"
}

// ParseNumber reports whether s holds a finite number, ignoring
// surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64
}

// InferColumnKinds decides per column whether it is exported as text,
// integers or floats. A column is numeric when more than NumericThreshold of
// its cells parse as numbers; empty cells count as failures.
func InferColumnKinds(headers []string, rows [][]string) []types.ColumnKind {
	kinds := make([]types.ColumnKind, len(headers))
	if len(rows) == 0 {
		return kinds
	}

	for c := range headers {
		parsed := 0
		integral := true
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			if v, ok := ParseNumber(row[c]); ok {
				parsed++
				if !isIntegral(v) {
					integral = false
				}
			}
		}

		if float64(parsed)/float64(len(rows)) <= NumericThreshold {
			continue
		}
		if integral {
			kinds[c] = types.KindInteger
		} else {
			kinds[c] = types.KindFloat
		}
	}

	return kinds
}

// typedValue converts a cell for a column of the given kind. In a numeric
// column, cells that do not parse are written blank.
func typedValue(cell string, kind types.ColumnKind) interface{} {
	if kind == types.KindText {
		return cell
	}
	if kind == types.KindInteger {
		// Exact for integers beyond float64 precision, such as ID numbers.
		if n, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
			return n
		}
	}
	v, ok := ParseNumber(cell)
	if !ok {
		return nil
	}
	if kind == types.KindInteger {
		return int64(v)
	}
	return v
}

func renderedLen(v interface{}) int {
	switch v := v.(type) {
	case nil:
		return 0
	case string:
		return utf8.RuneCountInString(v)
	case int64:
		return len(strconv.FormatInt(v, 10))
	case float64:
		return len(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return utf8.RuneCountInString(fmt.Sprint(v))
	}
}

// ColumnWidths returns min(longest rendered cell + 2, MaxColumnWidth) for
// each column, measured over the header and every typed cell.
func ColumnWidths(headers []string, cells [][]interface{}) []float64 {
	longest := make([]int, len(headers))
	for i, h := range headers {
		longest[i] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for i, v := range row {
			if i < len(longest) {
				longest[i] = max(longest[i], renderedLen(v))
			}
		}
	}

	widths := make([]float64, len(headers))
	for i, n := range longest {
		widths[i] = float64(min(n+columnPadding, MaxColumnWidth))
	}
	return widths
}

// Export writes data to path as a single-sheet xlsx workbook with a bold,
// centered header row, fitted column widths and typed numeric columns. The
// file is written to a temporary name and renamed into place, so path either
// holds the complete workbook or is left untouched.
func Export(data *types.FileData, path string, opts ExportOptions) (*types.ExportResult, error) {
	if data == nil || len(data.Headers) == 0 {
		return nil, fmt.Errorf("nothing to export: %w", table.ErrEmptyInput)
	}

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	kinds := InferColumnKinds(data.Headers, data.Rows)
	cells := make([][]interface{}, len(data.Rows))
	for r, row := range data.Rows {
		cells[r] = make([]interface{}, len(data.Headers))
		for c := range data.Headers {
			if c < len(row) {
				cells[r][c] = typedValue(row[c], kinds[c])
			}
		}
	}
	widths := ColumnWidths(data.Headers, cells)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, &WriteError{Path: path, Err: fmt.Errorf("sheet name %q: %w", sheet, err)}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	// Column widths must be set before the first row is streamed.
	for i, w := range widths {
		if err := sw.SetColWidth(i+1, i+1, w); err != nil {
			return nil, &WriteError{Path: path, Err: err}
		}
	}

	headerRow := make([]interface{}, len(data.Headers))
	for i, h := range data.Headers {
		headerRow[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	for r, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, &WriteError{Path: path, Err: err}
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, &WriteError{Path: path, Err: err}
		}
		opts.report(r+1, len(cells))
	}

	if err := sw.Flush(); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}

	if err := writeAtomic(f, path); err != nil {
		return nil, err
	}

	return &types.ExportResult{
		OutputFile:    path,
		Sheet:         sheet,
		Columns:       append([]string(nil), data.Headers...),
		Kinds:         kinds,
		Widths:        widths,
		RowsProcessed: len(data.Rows),
	}, nil
}

func writeAtomic(f *excelize.File, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if werr := f.Write(tmp); werr != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Err: werr}
	}
	if cerr := tmp.Chmod(0o644); cerr != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Err: cerr}
	}
	if serr := tmp.Sync(); serr != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Err: serr}
	}
	if cerr := tmp.Close(); cerr != nil {
		return &WriteError{Path: path, Err: cerr}
	}
	if rerr := os.Rename(tmpName, path); rerr != nil {
		return &WriteError{Path: path, Err: rerr}
	}
	return nil
}
