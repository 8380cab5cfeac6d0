package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/txtgrid/internal/table"
	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		delim    string
		expected *types.FileData
	}{
		{
			name:  "Pipe with short row",
			text:  "a|b|c\n1|2|3\n4|5\n",
			delim: "|",
			expected: &types.FileData{
				Headers: []string{"a", "b", "c"},
				Rows:    [][]string{{"1", "2", "3"}, {"4", "5", ""}},
			},
		},
		{
			name:  "Windows line endings",
			text:  "name,qty\r\nbolt,3\r\n\r\nnut,7,extra\r\n",
			delim: ",",
			expected: &types.FileData{
				Headers: []string{"name", "qty"},
				Rows:    [][]string{{"bolt", "3"}, {"nut", "7"}},
			},
		},
		{
			name:  "Leading blank lines before header",
			text:  "\n\n  \nx;y\n1;2",
			delim: ";",
			expected: &types.FileData{
				Headers: []string{"x", "y"},
				Rows:    [][]string{{"1", "2"}},
			},
		},
		{
			name:  "Space delimiter",
			text:  "a b\n1 2",
			delim: " ",
			expected: &types.FileData{
				Headers: []string{"a", "b"},
				Rows:    [][]string{{"1", "2"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.delim)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "   \r\n\t"} {
		_, err := Parse(text, "|")
		assert.ErrorIs(t, err, table.ErrEmptyInput, "Parse(%q)", text)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	headers := []string{"id", "name", "", "price"}
	rows := [][]string{
		{"1", "widget", "", "2.50"},
		{"2", "gadget, large", "x", "10"},
		{"3", "", "", ""},
		{"4", "a;b", "y", "0"},
	}

	for _, delim := range []string{"|", "\t", "::"} {
		t.Run(DelimiterLabel(delim), func(t *testing.T) {
			got, err := Parse(Serialize(headers, rows, delim), delim)
			require.NoError(t, err)
			assert.Equal(t, headers, got.Headers)
			assert.Equal(t, rows, got.Rows)
		})
	}
}

func TestResolveDelimiter(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"pipe", "|"},
		{"comma", ","},
		{"Semicolon", ";"},
		{"tab", "\t"},
		{`\t`, "\t"},
		{"space", " "},
		{"|", "|"},
		{"~~", "~~"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ResolveDelimiter(tt.input), "ResolveDelimiter(%q)", tt.input)
	}
}

func TestNextDelimiter(t *testing.T) {
	assert.Equal(t, ",", NextDelimiter("|"))
	assert.Equal(t, "|", NextDelimiter(" "))
	assert.Equal(t, "|", NextDelimiter("#"))
}

func TestReadFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("UTF-8 with byte order mark", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bom.txt")
		require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfname|qty\n螺栓|3\n"), 0o644))

		data, err := ReadFile(path, "|", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "qty"}, data.Headers)
		assert.Equal(t, [][]string{{"螺栓", "3"}}, data.Rows)
	})

	t.Run("GBK", func(t *testing.T) {
		path := filepath.Join(tmpDir, "gbk.txt")
		// "名称|数量\n螺栓|3\n" encoded as GBK.
		raw := []byte{
			0xc3, 0xfb, 0xb3, 0xc6, '|', 0xca, 0xfd, 0xc1, 0xbf, '\n',
			0xc2, 0xdd, 0xcb, 0xa8, '|', '3', '\n',
		}
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		data, err := ReadFile(path, "|", "gbk")
		require.NoError(t, err)
		assert.Equal(t, []string{"名称", "数量"}, data.Headers)
		assert.Equal(t, [][]string{{"螺栓", "3"}}, data.Rows)
	})

	t.Run("Unknown encoding", func(t *testing.T) {
		path := filepath.Join(tmpDir, "plain.txt")
		require.NoError(t, os.WriteFile(path, []byte("a|b\n"), 0o644))

		_, err := ReadFile(path, "|", "no-such-encoding")
		assert.Error(t, err)
		assert.False(t, ValidEncoding("no-such-encoding"))
		assert.True(t, ValidEncoding("gb18030"))
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(tmpDir, "missing.txt"), "|", "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Empty file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := ReadFile(path, "|", "")
		assert.ErrorIs(t, err, table.ErrEmptyInput)
	})
}
