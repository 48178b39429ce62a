package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sheet is an immutable snapshot of one worksheet: a header row plus data
// rows in document order. Headers are normalized once at construction so
// lookups elsewhere never worry about case or stray whitespace.
type Sheet struct {
	headers []string // normalized, in column order
	display []string // headers as they appeared in the source
	rows    []Row
	colIdx  map[string]int
}

// Row is one data line of a sheet. Cell lookup is by normalized header.
type Row struct {
	// Number is the 1-based position within the source worksheet,
	// counting the header row. The first data row is 2, matching how
	// spreadsheet UIs and cell-update APIs address rows.
	Number int

	cells  []string
	colIdx map[string]int
}

// New builds a Sheet from raw records, where records[0] is the header row.
// Duplicate headers after normalization are a configuration error in the
// source document and are rejected rather than silently merged.
func New(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet has no header row")
	}

	display := records[0]
	headers := make([]string, len(display))
	colIdx := make(map[string]int, len(display))
	for i, h := range display {
		key := NormalizeKey(h)
		if prev, dup := colIdx[key]; dup {
			return nil, fmt.Errorf("duplicate header %q (columns %d and %d)", key, prev+1, i+1)
		}
		headers[i] = key
		colIdx[key] = i
	}

	s := &Sheet{
		headers: headers,
		display: display,
		colIdx:  colIdx,
	}
	for i, rec := range records[1:] {
		cells := make([]string, len(headers))
		copy(cells, rec)
		s.rows = append(s.rows, Row{
			Number: i + 2,
			cells:  cells,
			colIdx: colIdx,
		})
	}
	return s, nil
}

// Headers returns the normalized column headers in column order.
func (s *Sheet) Headers() []string {
	return s.headers
}

// DisplayHeaders returns the headers exactly as the source document had them.
func (s *Sheet) DisplayHeaders() []string {
	return s.display
}

func (s *Sheet) Rows() []Row {
	return s.rows
}

func (s *Sheet) RowCount() int {
	return len(s.rows)
}

// HasColumn reports whether a column exists, by normalized header.
func (s *Sheet) HasColumn(header string) bool {
	_, ok := s.colIdx[NormalizeKey(header)]
	return ok
}

// ColumnIndex returns the 0-based column position for a header.
func (s *Sheet) ColumnIndex(header string) (int, bool) {
	i, ok := s.colIdx[NormalizeKey(header)]
	return i, ok
}

// Get returns the cell under the given header. Missing columns and short
// rows both read as the empty string.
func (r Row) Get(header string) string {
	i, ok := r.colIdx[NormalizeKey(header)]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Has reports whether the row's sheet carries the given column at all.
func (r Row) Has(header string) bool {
	_, ok := r.colIdx[NormalizeKey(header)]
	return ok
}

// ParseCSV reads an entire CSV document into a Sheet. Ragged rows are
// tolerated; sheet exports routinely omit trailing empty cells.
func ParseCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return New(records)
}

// ParseCSVString is a convenience wrapper for already-downloaded content.
func ParseCSVString(content string) (*Sheet, error) {
	return ParseCSV(strings.NewReader(content))
}

// LoadCSVFile reads a local CSV export from disk.
func LoadCSVFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f)
}
