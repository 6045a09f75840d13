// Package sheet is the row-oriented adapter to the spreadsheet that holds all
// inventory state. Tables are worksheets; row 1 of every table is the header
// and data rows start at row 2. Row and column numbers are 1-based, ranges use
// A1 notation ("G5:I5").
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrRateLimited means the backend refused the call because of its quota.
	// It is the only error the resilient wrapper retries.
	ErrRateLimited = errors.New("sheet: rate limited")
	// ErrUnavailable wraps any other transport or I/O failure.
	ErrUnavailable = errors.New("sheet: store unavailable")
	// ErrRowNotFound is returned when a row reference points past the table.
	ErrRowNotFound = errors.New("sheet: row not found")
)

// Store is the minimal surface the inventory core needs from a spreadsheet.
type Store interface {
	// ReadAllRows returns every row of table, header included, in sheet order.
	ReadAllRows(ctx context.Context, table string) ([][]string, error)
	// AppendRow writes row after the last used row in a single call and
	// returns the row number it landed on.
	AppendRow(ctx context.Context, table string, row []string) (int, error)
	// WriteCells writes a rectangular block of values starting at rangeRef.
	WriteCells(ctx context.Context, table, rangeRef string, values [][]string) error
	ReadCell(ctx context.Context, table string, row, col int) (string, error)
	DeleteRow(ctx context.Context, table string, row int) error
	// EnsureHeaders creates table if needed and writes headers to row 1 when
	// the row is empty.
	EnsureHeaders(ctx context.Context, table string, headers []string) error
}

// IsTransportFailure reports whether err should count against the store's
// health. Quota refusals and bad row references do not.
func IsTransportFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrRowNotFound)
}

// Option configures a Workbook or Memory store.
type Option func(*options)

type sequence struct {
	col    int // 0-based index into the appended row
	prefix string
}

type options struct {
	sequences map[string]sequence
	kinds     map[string]map[int]Kind
}

func newOptions(opts []Option) options {
	o := options{sequences: map[string]sequence{}, kinds: map[string]map[int]Kind{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Kind is the cell type a backend writes for a column. Values are always
// exchanged as strings; the kind only decides how they are stored.
type Kind int

const (
	// Text cells are stored verbatim, even when they look like numbers.
	Text Kind = iota
	// Number cells hold a decimal written digit for digit, never through
	// float64. Values that do not parse fall back to Text.
	Number
	// Bool cells hold TRUE/FALSE checkboxes.
	Bool
)

// WithColumnKinds declares the cell type of columns of table, keyed by
// 1-based column number. Undeclared columns are Text.
func WithColumnKinds(table string, kinds map[int]Kind) Option {
	return func(o *options) {
		m := make(map[int]Kind, len(kinds))
		for col, k := range kinds {
			m[col] = k
		}
		o.kinds[table] = m
	}
}

// kind returns the declared type of 1-based col in table.
func (o options) kind(table string, col int) Kind {
	return o.kinds[table][col]
}

// WithOrderSequence makes the store assign an identifier to column col
// (1-based) of every row appended to table with that cell left empty.
// The identifier is prefix followed by the zero-padded data row index, so
// the first data row gets prefix+"00001".
func WithOrderSequence(table string, col int, prefix string) Option {
	return func(o *options) {
		o.sequences[table] = sequence{col: col - 1, prefix: prefix}
	}
}

// assign fills the sequence cell of row in place if one is configured.
func (o options) assign(table string, row []string, rowNum int) []string {
	seq, ok := o.sequences[table]
	if !ok {
		return row
	}
	for len(row) <= seq.col {
		row = append(row, "")
	}
	if strings.TrimSpace(row[seq.col]) == "" {
		row[seq.col] = fmt.Sprintf("%s%05d", seq.prefix, rowNum-1)
	}
	return row
}

// parseRange converts "G5:I5" or "J5" into 1-based inclusive bounds.
func parseRange(rangeRef string) (col1, row1, col2, row2 int, err error) {
	first, last, found := strings.Cut(rangeRef, ":")
	col1, row1, err = excelize.CellNameToCoordinates(first)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("sheet: bad range %q: %w", rangeRef, err)
	}
	if !found {
		return col1, row1, col1, row1, nil
	}
	col2, row2, err = excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("sheet: bad range %q: %w", rangeRef, err)
	}
	if col2 < col1 || row2 < row1 {
		return 0, 0, 0, 0, fmt.Errorf("sheet: inverted range %q", rangeRef)
	}
	return col1, row1, col2, row2, nil
}

// RowRange returns the A1 range spanning columns from..to of a single row.
func RowRange(from, to string, row int) string {
	if from == to {
		return from + strconv.Itoa(row)
	}
	return from + strconv.Itoa(row) + ":" + to + strconv.Itoa(row)
}
