package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheet is a Store backed by a Google Sheets spreadsheet, one tab per
// table. HTTP 429 from the API becomes ErrRateLimited; every other failure
// becomes ErrUnavailable.
type GoogleSheet struct {
	srv  *sheets.Service
	id   string
	opts options
}

// OpenGoogleSheet authenticates with a service-account key file and binds
// the spreadsheet spreadsheetID.
func OpenGoogleSheet(ctx context.Context, credentialsFile, spreadsheetID string, opts ...Option) (*GoogleSheet, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: google sheets client: %v", ErrUnavailable, err)
	}
	return NewGoogleSheet(srv, spreadsheetID, opts...), nil
}

// NewGoogleSheet binds an existing client to spreadsheetID.
func NewGoogleSheet(srv *sheets.Service, spreadsheetID string, opts ...Option) *GoogleSheet {
	return &GoogleSheet{srv: srv, id: spreadsheetID, opts: newOptions(opts)}
}

// Close is a no-op; the client holds no resources of its own.
func (g *GoogleSheet) Close() error { return nil }

// a1 prefixes ref with the quoted tab name; an empty ref means the whole tab.
func a1(table, ref string) string {
	tab := "'" + strings.ReplaceAll(table, "'", "''") + "'"
	if ref == "" {
		return tab
	}
	return tab + "!" + ref
}

// classify maps an API error onto the store's sentinel errors.
func classify(op, table string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s %s: %v", ErrRateLimited, op, table, err)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, op, table, err)
}

// isMissingTab reports the 400 the API answers for a range on a tab that
// does not exist.
func isMissingTab(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "Unable to parse range")
}

func (g *GoogleSheet) get(ctx context.Context, rangeRef string) ([][]interface{}, error) {
	vr, err := g.srv.Spreadsheets.Values.Get(g.id, rangeRef).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (g *GoogleSheet) ReadAllRows(ctx context.Context, table string) ([][]string, error) {
	values, err := g.get(ctx, a1(table, ""))
	if isMissingTab(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("read", table, err)
	}
	rows := make([][]string, len(values))
	for i, line := range values {
		rows[i] = make([]string, len(line))
		for j, v := range line {
			rows[i][j] = fromValue(v)
		}
	}
	return rows, nil
}

func (g *GoogleSheet) AppendRow(ctx context.Context, table string, row []string) (int, error) {
	resp, err := g.srv.Spreadsheets.Values.Append(g.id, a1(table, "A1"), &sheets.ValueRange{
		Values: [][]interface{}{g.toValues(table, 1, row)},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, classify("append", table, err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("%w: append %s: no updated range in response", ErrUnavailable, table)
	}
	n, err := rangeRow(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("%w: append %s: %v", ErrUnavailable, table, err)
	}

	// The sequence id depends on the row the API chose, so it is written after.
	if seq, ok := g.opts.sequences[table]; ok && (seq.col >= len(row) || strings.TrimSpace(row[seq.col]) == "") {
		filled := g.opts.assign(table, append([]string(nil), row...), n)
		ref, err := excelize.CoordinatesToCellName(seq.col+1, n)
		if err != nil {
			return 0, err
		}
		if err := g.WriteCells(ctx, table, ref, [][]string{{filled[seq.col]}}); err != nil {
			log.Error().Err(err).Str("table", table).Int("row", n).Msg("sheet: order id not written")
			return 0, err
		}
	}
	return n, nil
}

func (g *GoogleSheet) WriteCells(ctx context.Context, table, rangeRef string, values [][]string) error {
	col1, row1, col2, row2, err := parseRange(rangeRef)
	if err != nil {
		return err
	}
	if err := checkBlock(values, col2-col1+1, row2-row1+1); err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: make([][]interface{}, len(values))}
	for i, line := range values {
		vr.Values[i] = g.toValues(table, col1, line)
	}
	_, err = g.srv.Spreadsheets.Values.Update(g.id, a1(table, rangeRef), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return classify("write", table, err)
	}
	return nil
}

func (g *GoogleSheet) ReadCell(ctx context.Context, table string, row, col int) (string, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	values, err := g.get(ctx, a1(table, ref))
	if err != nil {
		return "", classify("read", table, err)
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return "", nil
	}
	return fromValue(values[0][0]), nil
}

func (g *GoogleSheet) DeleteRow(ctx context.Context, table string, row int) error {
	rows, err := g.ReadAllRows(ctx, table)
	if err != nil {
		return err
	}
	if row < 2 || row > len(rows) {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, table, row)
	}
	tabID, ok, err := g.tabID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s row %d", ErrRowNotFound, table, row)
	}
	_, err = g.srv.Spreadsheets.BatchUpdate(g.id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    tabID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return classify("delete", table, err)
	}
	return nil
}

func (g *GoogleSheet) EnsureHeaders(ctx context.Context, table string, headers []string) error {
	_, ok, err := g.tabID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		_, err := g.srv.Spreadsheets.BatchUpdate(g.id, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: table}},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return classify("create", table, err)
		}
		log.Info().Str("table", table).Msg("sheet: tab created")
	}

	first, err := g.get(ctx, a1(table, "1:1"))
	if err != nil {
		return classify("read", table, err)
	}
	if len(first) > 0 && len(first[0]) > 0 {
		return nil
	}
	vals := make([]interface{}, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	_, err = g.srv.Spreadsheets.Values.Update(g.id, a1(table, "A1"), &sheets.ValueRange{
		Values: [][]interface{}{vals},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return classify("write headers", table, err)
	}
	return nil
}

// tabID looks up the numeric id of the tab titled table.
func (g *GoogleSheet) tabID(ctx context.Context, table string) (int64, bool, error) {
	ss, err := g.srv.Spreadsheets.Get(g.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, classify("describe", table, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == table {
			return s.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

// toValues converts line, whose first cell sits in 1-based column col1, to
// API values typed by the declared column kinds.
func (g *GoogleSheet) toValues(table string, col1 int, line []string) []interface{} {
	out := make([]interface{}, len(line))
	for i, v := range line {
		s := strings.TrimSpace(v)
		switch g.opts.kind(table, col1+i) {
		case Number:
			if d, err := decimal.NewFromString(s); err == nil {
				out[i] = json.Number(d.String())
				continue
			}
		case Bool:
			switch strings.ToUpper(s) {
			case "TRUE":
				out[i] = true
				continue
			case "FALSE":
				out[i] = false
				continue
			}
		}
		out[i] = v
	}
	return out
}

func fromValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// rangeRow returns the first row of an A1 range such as "'RP-PO'!A5:K5".
func rangeRow(rangeRef string) (int, error) {
	ref := rangeRef[strings.LastIndex(rangeRef, "!")+1:]
	first, _, _ := strings.Cut(ref, ":")
	_, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(first, "$", ""))
	if err != nil {
		return 0, fmt.Errorf("bad updated range %q: %w", rangeRef, err)
	}
	return row, nil
}
