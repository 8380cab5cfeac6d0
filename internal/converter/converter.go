package converter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nconklindev/txtgrid/internal/table"
	"github.com/nconklindev/txtgrid/internal/types"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is assumed for input files when none is configured.
const DefaultEncoding = "utf-8"

// Delimiter presets offered by the UI, in cycling order.
var DelimiterPresets = []string{"|", ",", ";", "\t", " "}

var delimiterNames = map[string]string{
	"pipe":      "|",
	"comma":     ",",
	"semicolon": ";",
	"tab":       "\t",
	`\t`:        "\t",
	"space":     " ",
}

// ResolveDelimiter maps a delimiter name such as "tab" to its literal.
// Anything that is not a known name is used verbatim.
func ResolveDelimiter(name string) string {
	if lit, ok := delimiterNames[strings.ToLower(name)]; ok {
		return lit
	}
	return name
}

// DelimiterLabel returns a printable name for a delimiter.
func DelimiterLabel(delim string) string {
	switch delim {
	case "\t":
		return "tab"
	case " ":
		return "space"
	case "":
		return "none"
	}
	return delim
}

// NextDelimiter returns the preset following delim, wrapping around. A
// delimiter that is not a preset moves to the first preset.
func NextDelimiter(delim string) string {
	for i, p := range DelimiterPresets {
		if p == delim {
			return DelimiterPresets[(i+1)%len(DelimiterPresets)]
		}
	}
	return DelimiterPresets[0]
}

// Parse splits text into a header and rows using delim. Rows are padded or
// truncated to the header width and blank lines are dropped.
func Parse(text, delim string) (*types.FileData, error) {
	t := table.New()
	if err := t.Load(strings.Split(text, "\n"), delim); err != nil {
		return nil, err
	}
	return t.Data(), nil
}

// Serialize joins headers and rows back into delimited text.
func Serialize(headers []string, rows [][]string, delim string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, delim))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, delim))
		b.WriteByte('\n')
	}
	return b.String()
}

// ReadFile reads a delimited text file in the named encoding and parses it.
func ReadFile(path, delim, encoding string) (*types.FileData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text, err := Decode(raw, encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := Parse(text, delim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Decode converts raw bytes in the named encoding to a string. A leading
// byte order mark is honored and removed.
func Decode(raw []byte, encoding string) (string, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", encoding, err)
	}

	r := transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(enc.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", encoding, err)
	}
	return string(out), nil
}

// ValidEncoding reports whether name is an encoding Decode understands.
func ValidEncoding(name string) bool {
	_, err := htmlindex.Get(name)
	return err == nil
}
