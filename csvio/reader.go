// Package csvio implements a CSV reader over stdlib encoding/csv, used by
// the cmd/simcoredemo loader and by tests. Grounded on averisera's
// core/csv_file_reader.hpp and the teacher's LoadCSVToTimeSeries (io.go).
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"microsimcore/simerr"
)

// Delimiter is the field separator character.
type Delimiter rune

const (
	DelimiterComma Delimiter = ','
	DelimiterTab   Delimiter = '\t'
	DelimiterSemi  Delimiter = ';'
)

// QuoteCharacter selects how quoted fields are parsed. encoding/csv only
// ever recognizes double quotes, so None/DoubleQuote are the only two
// meaningful settings; None enables the reader's LazyQuotes relaxation,
// DoubleQuote parses quotes strictly.
type QuoteCharacter int

const (
	QuoteNone QuoteCharacter = iota
	QuoteDoubleQuote
)

// Options configures a Reader. The zero value is comma-delimited, uses
// QuoteNone, and has no header row.
type Options struct {
	Delimiter Delimiter
	Quote     QuoteCharacter
	HasNames  bool
}

// Reader reads a CSV file row by row: an optional header row of column
// names, followed by data rows. Mirrors averisera's CSVFileReader, reduced
// to the operations the core's loaders and tests actually use.
type Reader struct {
	r          *csv.Reader
	closer     io.Closer
	names      []string
	atEOF      bool
	nextRecord []string
	nextErr    error
	hasNext    bool
}

// NewReader opens path and reads its header row (if Options.HasNames),
// leaving the reader positioned at the first data row.
func NewReader(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	rd, err := newReaderFrom(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.closer = f
	return rd, nil
}

func newReaderFrom(rc io.Reader, opts Options) (*Reader, error) {
	cr := csv.NewReader(rc)
	cr.Comma = rune(opts.Delimiter)
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = opts.Quote == QuoteNone
	cr.FieldsPerRecord = -1

	rd := &Reader{r: cr}
	if opts.HasNames {
		header, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("csvio: read header: %w", err)
		}
		rd.names = header
	}
	rd.advance()
	return rd, nil
}

// Close releases the underlying file, if any.
func (rd *Reader) Close() error {
	if rd.closer != nil {
		return rd.closer.Close()
	}
	return nil
}

// ColumnNames returns the header row, or nil if the reader has none.
func (rd *Reader) ColumnNames() []string {
	return rd.names
}

func (rd *Reader) advance() {
	for {
		record, err := rd.r.Read()
		if err == io.EOF {
			rd.atEOF = true
			rd.hasNext = false
			return
		}
		if err != nil {
			rd.hasNext = true
			rd.nextErr = fmt.Errorf("csvio: read row: %w", err)
			rd.nextRecord = nil
			return
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		rd.hasNext = true
		rd.nextRecord = record
		rd.nextErr = nil
		return
	}
}

// HasNextDataRow reports whether another data row is available.
func (rd *Reader) HasNextDataRow() bool {
	return rd.hasNext
}

// ReadDataRow parses the selected columns (by index into the row as read
// from the file) of the current row into out as float64s, advancing to the
// next row. indices nil or empty reads every column in file order. A
// missing (short) column is filled with NaN if allowMissing, otherwise
// produces an error. Returns false once there is no row left to read.
func (rd *Reader) ReadDataRow(indices []int, allowMissing bool, out *[]float64) (bool, error) {
	if !rd.hasNext {
		return false, nil
	}
	record := rd.nextRecord
	err := rd.nextErr
	rd.advance()
	if err != nil {
		return false, err
	}

	sel := indices
	if len(sel) == 0 {
		sel = make([]int, len(record))
		for i := range record {
			sel[i] = i
		}
	}

	result := (*out)[:0]
	for _, idx := range sel {
		if idx < 0 || idx >= len(record) {
			if !allowMissing {
				return false, fmt.Errorf("csvio: column index %d out of range (row has %d columns): %w", idx, len(record), simerr.ErrOutOfRange)
			}
			result = append(result, math.NaN())
			continue
		}
		v, perr := strconv.ParseFloat(record[idx], 64)
		if perr != nil {
			if !allowMissing {
				return false, fmt.Errorf("csvio: parse float %q at column %d: %w", record[idx], idx, simerr.ErrInvalidArgument)
			}
			result = append(result, math.NaN())
			continue
		}
		result = append(result, v)
	}
	*out = result
	return true, nil
}

// MapNamesToIndices builds a name->column-index lookup, erroring if any
// name repeats.
func MapNamesToIndices(names []string) (map[string]int, error) {
	m := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := m[n]; dup {
			return nil, fmt.Errorf("csvio: duplicate column name %q: %w", n, simerr.ErrInvalidArgument)
		}
		m[n] = i
	}
	return m, nil
}

// Indices resolves column names to indices using ColumnNames, erroring on
// any name not present in the header.
func (rd *Reader) Indices(names []string) ([]int, error) {
	byName, err := MapNamesToIndices(rd.names)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("csvio: unknown column %q: %w", n, simerr.ErrInvalidArgument)
		}
		out[i] = idx
	}
	return out, nil
}
