package types

// ExportResult describes a finished spreadsheet export.
type ExportResult struct {
	OutputFile    string
	Sheet         string
	Columns       []string
	Kinds         []ColumnKind
	Widths        []float64
	RowsProcessed int
}

// FileData is a snapshot of a table: headers plus rows of equal length.
type FileData struct {
	Headers []string
	Rows    [][]string
}

// ColumnKind is the cell type a column is written with on export.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindFloat
)

func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}
