// Package csvimport reads spreadsheet exports row by row and checks each
// row against a column schema, collecting row-level errors instead of
// stopping at the first bad cell.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile       = errors.New("csv file is empty")
	ErrInvalidEncoding = errors.New("csv file is not valid UTF-8")
	ErrMissingHeader   = errors.New("csv file has no header row")
)

const sniffSize = 4096

// Reader yields rows keyed by their lower-cased header name
type Reader struct {
	csv    *csv.Reader
	header []string
	index  map[string]int
	line   int
}

// Option configures the underlying csv.Reader
type Option func(*csv.Reader)

// WithDelimiter sets the field delimiter; the default is a comma
func WithDelimiter(d rune) Option {
	return func(r *csv.Reader) { r.Comma = d }
}

// NewReader reads the header row. A UTF-8 or UTF-16 byte order mark is
// honoured; without one the content must be UTF-8.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	buf := bufio.NewReaderSize(r, sniffSize)
	head, err := buf.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, ErrEmptyFile
	}
	if !hasUTF16BOM(head) && !validPrefix(head) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(transform.NewReader(buf, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(cr)
	}

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	reader := &Reader{csv: cr, index: make(map[string]int, len(record)), line: 1}
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		reader.header = append(reader.header, name)
		if name != "" {
			reader.index[name] = i
		}
	}
	if len(reader.index) == 0 {
		return nil, ErrMissingHeader
	}
	return reader, nil
}

// Header returns the normalised column names in file order
func (r *Reader) Header() []string {
	return r.header
}

// Missing lists the required columns absent from the header
func (r *Reader) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := r.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Next returns the next non-blank row, or io.EOF
func (r *Reader) Next() (Row, error) {
	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		r.line++
		if err != nil {
			return Row{Line: r.line}, fmt.Errorf("line %d: %w", r.line, err)
		}

		row := Row{Line: r.line, values: make(map[string]string, len(r.index))}
		for name, i := range r.index {
			if i < len(record) {
				row.values[name] = strings.TrimSpace(record[i])
			}
		}
		if !row.blank() {
			return row, nil
		}
	}
}

// Row is one data line; Line counts the header as line 1
type Row struct {
	Line   int
	values map[string]string
}

// NewRow builds a row from column values
func NewRow(line int, values map[string]string) Row {
	return Row{Line: line, values: values}
}

// Get returns the trimmed cell for a column, or "" when absent
func (r Row) Get(col string) string {
	return r.values[col]
}

func (r Row) blank() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

func hasUTF16BOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFF, 0xFE}) || bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}

// validPrefix checks b as UTF-8, tolerating a rune cut off by the peek window
func validPrefix(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			return !utf8.FullRune(b[i:]) && utf8.Valid(b[:i])
		}
	}
	return false
}
