package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTripThroughDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "stock.xlsx")

	wb, err := OpenWorkbook(path, WithOrderSequence("RP-PO", 2, "PO-"))
	require.NoError(t, err)
	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Code", "Name", "Qty"}))
	require.NoError(t, wb.EnsureHeaders(ctx, "RP-PO", []string{"Approve", "Order", "Code"}))

	row, err := wb.AppendRow(ctx, "Items", []string{"MT-0001", "Pork belly", "15"})
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	row, err = wb.AppendRow(ctx, "RP-PO", []string{"TRUE", "", "MT-0001"})
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	require.NoError(t, wb.WriteCells(ctx, "Items", "C2", [][]string{{"3"}}))
	require.NoError(t, wb.Close())

	reopened, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.ReadAllRows(ctx, "Items")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"MT-0001", "Pork belly", "3"}, items[1])

	txs, err := reopened.ReadAllRows(ctx, "RP-PO")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "TRUE", txs[1][0])
	assert.Equal(t, "PO-00001", txs[1][1])
}

func TestWorkbookEnsureHeadersKeepsExistingHeader(t *testing.T) {
	ctx := context.Background()
	wb, err := OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"))
	require.NoError(t, err)
	defer wb.Close()

	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Code", "Name"}))
	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Other", "Header"}))

	rows, err := wb.ReadAllRows(ctx, "Items")
	require.NoError(t, err)
	assert.Equal(t, []string{"Code", "Name"}, rows[0])
}

func TestWorkbookDeleteRow(t *testing.T) {
	ctx := context.Background()
	wb, err := OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"))
	require.NoError(t, err)
	defer wb.Close()

	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Code"}))
	_, err = wb.AppendRow(ctx, "Items", []string{"MT-0001"})
	require.NoError(t, err)
	_, err = wb.AppendRow(ctx, "Items", []string{"MT-0002"})
	require.NoError(t, err)

	require.NoError(t, wb.DeleteRow(ctx, "Items", 2))
	rows, err := wb.ReadAllRows(ctx, "Items")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "MT-0002", rows[1][0])

	assert.ErrorIs(t, wb.DeleteRow(ctx, "Items", 5), ErrRowNotFound)
}

func TestWorkbookAppendToMissingTable(t *testing.T) {
	wb, err := OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.AppendRow(context.Background(), "Nope", []string{"x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWorkbookSeesRowsWrittenByAnotherHandle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	opt := WithOrderSequence("RP-PO", 2, "PO-")

	server, err := OpenWorkbook(path, opt)
	require.NoError(t, err)
	defer server.Close()
	require.NoError(t, server.EnsureHeaders(ctx, "RP-PO", []string{"Approve", "Order", "Date", "Code"}))

	cli, err := OpenWorkbook(path, opt)
	require.NoError(t, err)
	row, err := cli.AppendRow(ctx, "RP-PO", []string{"TRUE", "", "01/01/25", "MT-0001"})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	require.NoError(t, cli.Close())

	rows, err := server.ReadAllRows(ctx, "RP-PO")
	require.NoError(t, err)
	require.Len(t, rows, 2, "server must see the row the CLI appended")

	row, err = server.AppendRow(ctx, "RP-PO", []string{"TRUE", "", "01/01/25", "MT-0002"})
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	onDisk, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer onDisk.Close()
	rows, err = onDisk.ReadAllRows(ctx, "RP-PO")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "MT-0001", rows[1][3])
	assert.Equal(t, "PO-00001", rows[1][1])
	assert.Equal(t, "MT-0002", rows[2][3])
	assert.Equal(t, "PO-00002", rows[2][1])
}

func TestWorkbookReadCellAfterOutOfBandWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.xlsx")

	a, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.EnsureHeaders(ctx, "Items", []string{"Code", "Name"}))
	_, err = a.AppendRow(ctx, "Items", []string{"MT-0001", "Pork belly"})
	require.NoError(t, err)

	b, err := OpenWorkbook(path)
	require.NoError(t, err)
	require.NoError(t, b.WriteCells(ctx, "Items", "B2", [][]string{{"Pork shoulder"}}))
	require.NoError(t, b.Close())

	v, err := a.ReadCell(ctx, "Items", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "Pork shoulder", v)
}

func TestWorkbookKeepsTextAndExactDecimals(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	kinds := WithColumnKinds("Items", map[int]Kind{3: Number, 4: Bool})

	wb, err := OpenWorkbook(path, kinds)
	require.NoError(t, err)
	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Code", "Name", "Qty", "Active"}))
	_, err = wb.AppendRow(ctx, "Items", []string{"MT-0001", "1e3", "12345678901234567.25", "TRUE"})
	require.NoError(t, err)
	_, err = wb.AppendRow(ctx, "Items", []string{"MT-0002", "0001", "n/a", "false"})
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	reopened, err := OpenWorkbook(path, kinds)
	require.NoError(t, err)
	defer reopened.Close()
	rows, err := reopened.ReadAllRows(ctx, "Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"MT-0001", "1e3", "12345678901234567.25", "TRUE"}, rows[1])
	assert.Equal(t, []string{"MT-0002", "0001", "n/a", "FALSE"}, rows[2])

	v, err := reopened.ReadCell(ctx, "Items", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", v)
}

func TestWorkbookStoresDeclaredColumnsTyped(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	wb, err := OpenWorkbook(path, WithColumnKinds("Items", map[int]Kind{2: Number, 3: Bool}))
	require.NoError(t, err)
	require.NoError(t, wb.EnsureHeaders(ctx, "Items", []string{"Code", "Qty", "Active"}))
	_, err = wb.AppendRow(ctx, "Items", []string{"15", "15", "TRUE"})
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType("Items", "A2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, typ, "undeclared columns stay text")
	typ, err = f.GetCellType("Items", "B2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeUnset, typ, "numbers carry no type attribute")
	typ, err = f.GetCellType("Items", "C2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeBool, typ)
}
