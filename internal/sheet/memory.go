package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and by the CLI dry-run mode.
// It keeps the same row numbering as a real sheet and can be told to fail.
type Memory struct {
	mu     sync.Mutex
	tables map[string][][]string
	opts   options

	failures []error
	appendTo map[string]error
	calls    map[string]int
}

func NewMemory(opts ...Option) *Memory {
	return &Memory{
		tables:   make(map[string][][]string),
		opts:     newOptions(opts),
		appendTo: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailNext queues errors returned, in order, by the next store calls.
func (m *Memory) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

// FailAppendTo makes the next AppendRow to table return err.
func (m *Memory) FailAppendTo(table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendTo[table] = err
}

// Calls returns how many times op ("AppendRow", "WriteCells", ...) was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Seed replaces table with a copy of rows (header included).
func (m *Memory) Seed(table string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = copyRows(rows)
}

// enter must be called with mu held.
func (m *Memory) enter(op string) error {
	m.calls[op]++
	if len(m.failures) == 0 {
		return nil
	}
	err := m.failures[0]
	m.failures = m.failures[1:]
	return err
}

func (m *Memory) ReadAllRows(_ context.Context, table string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ReadAllRows"); err != nil {
		return nil, err
	}
	return copyRows(m.tables[table]), nil
}

func (m *Memory) AppendRow(_ context.Context, table string, row []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AppendRow"); err != nil {
		return 0, err
	}
	if err, ok := m.appendTo[table]; ok {
		delete(m.appendTo, table)
		return 0, err
	}
	rows, ok := m.tables[table]
	if !ok {
		return 0, fmt.Errorf("%w: table %q does not exist", ErrUnavailable, table)
	}
	if len(rows) == 0 {
		rows = append(rows, nil)
	}
	next := len(rows) + 1
	row = m.opts.assign(table, append([]string(nil), row...), next)
	m.tables[table] = append(rows, row)
	return next, nil
}

func (m *Memory) WriteCells(_ context.Context, table, rangeRef string, values [][]string) error {
	col1, row1, col2, row2, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	if err := checkBlock(values, col2-col1+1, row2-row1+1); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("WriteCells"); err != nil {
		return err
	}
	rows := m.tables[table]
	for r, line := range values {
		idx := row1 + r - 1
		for len(rows) <= idx {
			rows = append(rows, nil)
		}
		for c, v := range line {
			ci := col1 + c - 1
			for len(rows[idx]) <= ci {
				rows[idx] = append(rows[idx], "")
			}
			rows[idx][ci] = v
		}
	}
	m.tables[table] = rows
	return nil
}

func (m *Memory) ReadCell(_ context.Context, table string, row, col int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ReadCell"); err != nil {
		return "", err
	}
	rows := m.tables[table]
	if row < 1 || row > len(rows) || col < 1 || col > len(rows[row-1]) {
		return "", nil
	}
	return rows[row-1][col-1], nil
}

func (m *Memory) DeleteRow(_ context.Context, table string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteRow"); err != nil {
		return err
	}
	rows := m.tables[table]
	if row < 2 || row > len(rows) {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, table, row)
	}
	m.tables[table] = append(rows[:row-1], rows[row:]...)
	return nil
}

func (m *Memory) EnsureHeaders(_ context.Context, table string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("EnsureHeaders"); err != nil {
		return err
	}
	rows := m.tables[table]
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	if len(rows) == 0 {
		rows = append(rows, nil)
	}
	rows[0] = append([]string(nil), headers...)
	m.tables[table] = rows
	return nil
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
