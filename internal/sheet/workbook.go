package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// lockRetry is how often a blocked call polls the workbook lock.
const lockRetry = 25 * time.Millisecond

// Workbook is a Store backed by a single .xlsx file that other processes
// (the stockctl CLI, a person with a spreadsheet program) may change too.
//
// Every call takes an OS lock on a sidecar "<path>.lock" file, shared for
// reads and exclusive for writes, and reloads the file when its size or
// modification time moved since this handle last saw it. Writes are saved
// before the lock is released, so a read-modify-save never loses rows
// another handle wrote in between.
type Workbook struct {
	mu    sync.Mutex
	path  string
	lock  *flock.Flock
	file  *excelize.File
	stamp fileStamp
	opts  options
}

// fileStamp identifies the on-disk version the in-memory copy was read from.
type fileStamp struct {
	mod  int64
	size int64
}

func stampOf(fi fs.FileInfo) fileStamp {
	return fileStamp{mod: fi.ModTime().UnixNano(), size: fi.Size()}
}

// OpenWorkbook opens path, or starts an empty workbook that is created on the
// first write when path does not exist yet.
func OpenWorkbook(path string, opts ...Option) (*Workbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create workbook dir: %v", ErrUnavailable, err)
	}
	w := &Workbook{
		path: path,
		lock: flock.New(path + ".lock"),
		file: excelize.NewFile(),
		opts: newOptions(opts),
	}
	err := w.withLock(context.Background(), false, func() (bool, error) { return false, nil })
	if err != nil {
		return nil, err
	}
	if w.stamp == (fileStamp{}) {
		log.Warn().Str("path", path).Msg("workbook does not exist, starting an empty one")
	}
	return w, nil
}

// Close releases the in-memory copy and the lock file handle.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.file.Close()
	if cerr := w.lock.Close(); err == nil {
		err = cerr
	}
	return err
}

// withLock runs fn against an up-to-date copy of the file. fn reports
// whether it changed the copy; changed copies are saved before unlocking.
func (w *Workbook) withLock(ctx context.Context, write bool, fn func() (bool, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		ok  bool
		err error
	)
	if write {
		ok, err = w.lock.TryLockContext(ctx, lockRetry)
	} else {
		ok, err = w.lock.TryRLockContext(ctx, lockRetry)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: lock workbook: %v", ErrUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: workbook is locked", ErrUnavailable)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			log.Error().Err(err).Str("path", w.path).Msg("failed to release workbook lock")
		}
	}()

	if err := w.reload(); err != nil {
		return err
	}
	dirty, err := fn()
	if err != nil || !dirty {
		return err
	}
	return w.save()
}

// reload replaces the in-memory copy when the file on disk changed. Must be
// called with the lock held.
func (w *Workbook) reload() error {
	fi, err := os.Stat(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		if w.stamp != (fileStamp{}) {
			log.Warn().Str("path", w.path).Msg("workbook was removed, starting an empty one")
			_ = w.file.Close()
			w.file, w.stamp = excelize.NewFile(), fileStamp{}
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: stat workbook %s: %v", ErrUnavailable, w.path, err)
	}
	stamp := stampOf(fi)
	if stamp == w.stamp {
		return nil
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("%w: open workbook %s: %v", ErrUnavailable, w.path, err)
	}
	_ = w.file.Close()
	w.file, w.stamp = f, stamp
	log.Debug().Str("path", w.path).Int64("size", stamp.size).Msg("workbook reloaded")
	return nil
}

func (w *Workbook) save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("%w: save workbook: %v", ErrUnavailable, err)
	}
	fi, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("%w: stat workbook %s: %v", ErrUnavailable, w.path, err)
	}
	w.stamp = stampOf(fi)
	return nil
}

func (w *Workbook) hasSheet(table string) (bool, error) {
	idx, err := w.file.GetSheetIndex(table)
	if err != nil {
		return false, err
	}
	return idx >= 0, nil
}

func (w *Workbook) rows(table string) ([][]string, error) {
	ok, err := w.hasSheet(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return nil, nil
	}
	rows, err := w.file.GetRows(table, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, table, err)
	}
	for _, row := range rows {
		for i, v := range row {
			row[i] = w.fromCell(table, i+1, v)
		}
	}
	return rows, nil
}

func (w *Workbook) ReadAllRows(ctx context.Context, table string) ([][]string, error) {
	var rows [][]string
	err := w.withLock(ctx, false, func() (bool, error) {
		var err error
		rows, err = w.rows(table)
		return false, err
	})
	return rows, err
}

func (w *Workbook) AppendRow(ctx context.Context, table string, row []string) (int, error) {
	var next int
	err := w.withLock(ctx, true, func() (bool, error) {
		ok, err := w.hasSheet(table)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if !ok {
			return false, fmt.Errorf("%w: table %q does not exist", ErrUnavailable, table)
		}
		rows, err := w.rows(table)
		if err != nil {
			return false, err
		}
		next = max(len(rows)+1, 2)
		row = w.opts.assign(table, append([]string(nil), row...), next)
		for i, v := range row {
			if err := w.setCell(table, i+1, next, v); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (w *Workbook) WriteCells(ctx context.Context, table, rangeRef string, values [][]string) error {
	col1, row1, col2, row2, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	if err := checkBlock(values, col2-col1+1, row2-row1+1); err != nil {
		return err
	}
	return w.withLock(ctx, true, func() (bool, error) {
		for r, line := range values {
			for c, v := range line {
				if err := w.setCell(table, col1+c, row1+r, v); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	})
}

func (w *Workbook) ReadCell(ctx context.Context, table string, row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	var v string
	err = w.withLock(ctx, false, func() (bool, error) {
		raw, err := w.file.GetCellValue(table, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return false, fmt.Errorf("%w: read %s!%s: %v", ErrUnavailable, table, cell, err)
		}
		v = w.fromCell(table, col, raw)
		return false, nil
	})
	return v, err
}

func (w *Workbook) DeleteRow(ctx context.Context, table string, row int) error {
	return w.withLock(ctx, true, func() (bool, error) {
		rows, err := w.rows(table)
		if err != nil {
			return false, err
		}
		if row < 2 || row > len(rows) {
			return false, fmt.Errorf("%w: %s row %d", ErrRowNotFound, table, row)
		}
		if err := w.file.RemoveRow(table, row); err != nil {
			return false, fmt.Errorf("%w: delete %s row %d: %v", ErrUnavailable, table, row, err)
		}
		return true, nil
	})
}

func (w *Workbook) EnsureHeaders(ctx context.Context, table string, headers []string) error {
	return w.withLock(ctx, true, func() (bool, error) {
		ok, err := w.hasSheet(table)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if !ok {
			if _, err := w.file.NewSheet(table); err != nil {
				return false, fmt.Errorf("%w: create %s: %v", ErrUnavailable, table, err)
			}
		}
		rows, err := w.rows(table)
		if err != nil {
			return false, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			return !ok, nil
		}
		vals := make([]interface{}, len(headers))
		for i, h := range headers {
			vals[i] = h
		}
		if err := w.file.SetSheetRow(table, "A1", &vals); err != nil {
			return false, fmt.Errorf("%w: write headers %s: %v", ErrUnavailable, table, err)
		}
		return true, nil
	})
}

// setCell writes v to (col, row) with the type declared for the column.
func (w *Workbook) setCell(table string, col, row int, v string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	s := strings.TrimSpace(v)
	switch w.opts.kind(table, col) {
	case Number:
		if _, perr := decimal.NewFromString(s); perr == nil {
			// Written as-is into the cell XML so no digit is lost.
			err = w.file.SetCellDefault(table, cell, s)
		} else {
			err = w.file.SetCellStr(table, cell, v)
		}
	case Bool:
		switch strings.ToUpper(s) {
		case "TRUE":
			err = w.file.SetCellBool(table, cell, true)
		case "FALSE":
			err = w.file.SetCellBool(table, cell, false)
		default:
			err = w.file.SetCellStr(table, cell, v)
		}
	default:
		err = w.file.SetCellStr(table, cell, v)
	}
	if err != nil {
		return fmt.Errorf("%w: write %s!%s: %v", ErrUnavailable, table, cell, err)
	}
	return nil
}

// fromCell turns a raw cell value back into the string callers wrote.
// Raw boolean cells read as "1"/"0".
func (w *Workbook) fromCell(table string, col int, raw string) string {
	if w.opts.kind(table, col) != Bool {
		return raw
	}
	switch raw {
	case "1":
		return "TRUE"
	case "0":
		return "FALSE"
	}
	return raw
}

func checkBlock(values [][]string, cols, rows int) error {
	if len(values) > rows {
		return fmt.Errorf("sheet: %d rows do not fit a range of %d", len(values), rows)
	}
	for _, line := range values {
		if len(line) > cols {
			return fmt.Errorf("sheet: %d values do not fit a range of %d columns", len(line), cols)
		}
	}
	return nil
}
