// Package tabular decodes uploaded CSV and XLSX sheets into a header row
// plus string records.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format of an uploaded sheet
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat chooses the decoder from the file name. Anything without an
// .xlsx extension is read as CSV; .xls is refused.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	default:
		return FormatCSV, nil
	}
}

// Table is a decoded sheet. Headers are trimmed; every row has exactly
// len(Headers) cells, padded or truncated as needed. Blank rows are dropped.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Has reports whether header is present, matched case-sensitively
func (t *Table) Has(header string) bool {
	return t.Index(header) >= 0
}

// Index returns the column of header or -1
func (t *Table) Index(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Missing lists the required headers absent from the table, in order
func (t *Table) Missing(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !t.Has(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Record returns row i keyed by header with trimmed values. A repeated
// header keeps its first column.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Headers))
	for j, h := range t.Headers {
		if _, dup := rec[h]; h == "" || dup {
			continue
		}
		rec[h] = strings.TrimSpace(t.Rows[i][j])
	}
	return rec
}

// Decode reads a whole upload in the format implied by fileName
func Decode(fileName string, r io.Reader) (*Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if format == FormatXLSX {
		return DecodeXLSX(data)
	}
	return DecodeCSV(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses comma separated text. A header line containing ';' but no
// ',' switches the delimiter to ';'. A leading UTF-8 BOM is ignored.
func DecodeCSV(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return newTable(records), nil
}

func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.IndexByte(header, ';') >= 0 && bytes.IndexByte(header, ',') < 0 {
		return ';'
	}
	return ','
}

// DecodeXLSX reads the first sheet of a workbook
func DecodeXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows), nil
}

func newTable(records [][]string) *Table {
	t := &Table{}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if t.Headers == nil {
			t.Headers = make([]string, len(rec))
			for i, h := range rec {
				t.Headers[i] = strings.TrimSpace(h)
			}
			continue
		}
		row := make([]string, len(t.Headers))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
