package table

import (
	"testing"

	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T, lines ...string) *Table {
	t.Helper()
	tbl := New()
	require.NoError(t, tbl.Load(lines, "|"))
	return tbl
}

func assertRectangular(t *testing.T, tbl *Table) {
	t.Helper()
	for i, row := range tbl.Rows() {
		assert.Len(t, row, tbl.NumCols(), "row %d width", i)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		delim    string
		wantHead []string
		wantRows [][]string
	}{
		{
			name:     "Pads short rows",
			lines:    []string{"a|b|c", "1|2|3", "4|5"},
			delim:    "|",
			wantHead: []string{"a", "b", "c"},
			wantRows: [][]string{{"1", "2", "3"}, {"4", "5", ""}},
		},
		{
			name:     "Truncates long rows",
			lines:    []string{"a,b", "1,2,3,4"},
			delim:    ",",
			wantHead: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "Skips blank lines",
			lines:    []string{"", "  ", "x;y", "", "1;2", "\t", "3;4"},
			delim:    ";",
			wantHead: []string{"x", "y"},
			wantRows: [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:     "Keeps empty header fields",
			lines:    []string{"a||c", "1|2|3"},
			delim:    "|",
			wantHead: []string{"a", "", "c"},
			wantRows: [][]string{{"1", "2", "3"}},
		},
		{
			name:     "Trims surrounding whitespace and carriage returns",
			lines:    []string{"  a\tb \r", " 1\t2\r"},
			delim:    "\t",
			wantHead: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "Multi-character delimiter",
			lines:    []string{"a::b", "1::2"},
			delim:    "::",
			wantHead: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "Header only",
			lines:    []string{"a|b"},
			delim:    "|",
			wantHead: []string{"a", "b"},
			wantRows: [][]string{},
		},
		{
			name:     "Empty delimiter keeps whole line",
			lines:    []string{"a|b", "1|2"},
			delim:    "",
			wantHead: []string{"a|b"},
			wantRows: [][]string{{"1|2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New()
			require.NoError(t, tbl.Load(tt.lines, tt.delim))
			assert.Equal(t, tt.wantHead, tbl.Headers())
			assert.Equal(t, tt.wantRows, tbl.Rows())
			assertRectangular(t, tbl)
		})
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {"", "   ", "\r"}} {
		tbl := loaded(t, "a|b", "1|2")
		err := tbl.Load(lines, "|")
		require.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, []string{"a", "b"}, tbl.Headers(), "failed load must not touch the table")
		assert.Equal(t, 1, tbl.NumRows())
	}
}

func TestSetCell(t *testing.T) {
	tbl := loaded(t, "a|b", "1|2", "3|4")

	for r := 0; r < tbl.NumRows(); r++ {
		for c := 0; c < tbl.NumCols(); c++ {
			require.NoError(t, tbl.SetCell(r, c, "v"))
			got, err := tbl.Cell(r, c)
			require.NoError(t, err)
			assert.Equal(t, "v", got)
			assertRectangular(t, tbl)
		}
	}

	require.NoError(t, tbl.SetCell(0, 0, "  12.50 "))
	got, _ := tbl.Cell(0, 0)
	assert.Equal(t, "  12.50 ", got, "values are stored verbatim")

	for _, pos := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 2}} {
		err := tbl.SetCell(pos[0], pos[1], "x")
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "SetCell(%d, %d)", pos[0], pos[1])
	}
}

func TestAddRow(t *testing.T) {
	t.Run("Empty table gets default headers", func(t *testing.T) {
		tbl := New()
		assert.True(t, tbl.IsEmpty())

		idx := tbl.AddRow()
		assert.Equal(t, 0, idx)
		assert.Equal(t, DefaultHeaders, tbl.Headers())
		assert.Equal(t, [][]string{{"", "", ""}}, tbl.Rows())
	})

	t.Run("Appends to populated table", func(t *testing.T) {
		tbl := loaded(t, "a|b", "1|2")
		idx := tbl.AddRow()
		assert.Equal(t, 1, idx)
		row, err := tbl.Row(1)
		require.NoError(t, err)
		assert.Equal(t, []string{"", ""}, row)
	})
}

func TestDeleteRows(t *testing.T) {
	lines := []string{"n", "r0", "r1", "r2", "r3", "r4"}

	tests := []struct {
		name    string
		indices []int
		want    [][]string
	}{
		{"Unordered set", []int{2, 0, 3}, [][]string{{"r1"}, {"r4"}}},
		{"Ascending set", []int{0, 2, 3}, [][]string{{"r1"}, {"r4"}}},
		{"Duplicates", []int{4, 4, 1, 4}, [][]string{{"r0"}, {"r2"}, {"r3"}}},
		{"Empty set", nil, [][]string{{"r0"}, {"r1"}, {"r2"}, {"r3"}, {"r4"}}},
		{"All rows", []int{0, 1, 2, 3, 4}, [][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := loaded(t, lines...)
			require.NoError(t, tbl.DeleteRows(tt.indices))
			assert.Equal(t, tt.want, tbl.Rows())
		})
	}

	t.Run("Invalid index removes nothing", func(t *testing.T) {
		tbl := loaded(t, lines...)
		err := tbl.DeleteRows([]int{0, 5})
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, 5, tbl.NumRows())

		err = tbl.DeleteRows([]int{-1})
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, 5, tbl.NumRows())
	})
}

func TestRenameColumn(t *testing.T) {
	tbl := loaded(t, "a|b", "1|2")

	ok, err := tbl.RenameColumn(1, "  beta ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "beta"}, tbl.Headers())

	for _, name := range []string{"", "   ", "beta", " beta"} {
		ok, err := tbl.RenameColumn(1, name)
		require.NoError(t, err)
		assert.False(t, ok, "rename to %q should be rejected", name)
	}
	assert.Equal(t, []string{"a", "beta"}, tbl.Headers())

	_, err = tbl.RenameColumn(2, "c")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = New().RenameColumn(0, "c")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestInsertColumn(t *testing.T) {
	t.Run("Middle", func(t *testing.T) {
		tbl := loaded(t, "a|b", "1|2", "3|4")
		ok, err := tbl.InsertColumn(0, "new")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "new", "b"}, tbl.Headers())
		assert.Equal(t, [][]string{{"1", "", "2"}, {"3", "", "4"}}, tbl.Rows())
		assertRectangular(t, tbl)
	})

	t.Run("Append after last", func(t *testing.T) {
		tbl := loaded(t, "a|b", "1|2")
		ok, err := tbl.InsertColumn(1, "c")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, tbl.Headers())
		assert.Equal(t, [][]string{{"1", "2", ""}}, tbl.Rows())
	})

	t.Run("Blank name is a no-op", func(t *testing.T) {
		tbl := loaded(t, "a|b", "1|2")
		ok, err := tbl.InsertColumn(0, " \t")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 2, tbl.NumCols())
	})

	t.Run("Invalid positions", func(t *testing.T) {
		tbl := loaded(t, "a|b", "1|2")
		for _, after := range []int{-1, 2} {
			_, err := tbl.InsertColumn(after, "x")
			assert.ErrorIs(t, err, ErrIndexOutOfRange, "after=%d", after)
		}
		_, err := New().InsertColumn(-1, "x")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Equal(t, []string{"a", "b"}, tbl.Headers())
	})
}

func TestDeleteColumn(t *testing.T) {
	tbl := loaded(t, "a|b|c", "1|2|3", "4|5|6")

	require.NoError(t, tbl.DeleteColumn(1))
	assert.Equal(t, []string{"a", "c"}, tbl.Headers())
	assert.Equal(t, [][]string{{"1", "3"}, {"4", "6"}}, tbl.Rows())

	require.NoError(t, tbl.DeleteColumn(0))
	assert.Equal(t, []string{"c"}, tbl.Headers())

	err := tbl.DeleteColumn(0)
	require.ErrorIs(t, err, ErrLastColumn)
	assert.Equal(t, []string{"c"}, tbl.Headers())
	assert.Equal(t, [][]string{{"3"}, {"6"}}, tbl.Rows())

	assert.ErrorIs(t, tbl.DeleteColumn(3), ErrIndexOutOfRange)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl := loaded(t, "a|b", "1|2")

	tbl.Headers()[0] = "changed"
	tbl.Rows()[0][0] = "changed"
	row, _ := tbl.Row(0)
	row[1] = "changed"
	data := tbl.Data()
	data.Rows[0][0] = "changed"

	assert.Equal(t, []string{"a", "b"}, tbl.Headers())
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows())
}

func TestFromData(t *testing.T) {
	data := &types.FileData{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1"}, {"1", "2", "3"}},
	}
	tbl := FromData(data)
	assert.Equal(t, [][]string{{"1", ""}, {"1", "2"}}, tbl.Rows())

	data.Headers[0] = "changed"
	assert.Equal(t, "a", tbl.Headers()[0])

	assert.True(t, FromData(nil).IsEmpty())
}
