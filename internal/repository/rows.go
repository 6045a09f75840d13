package repository

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Headers written to row 1 of each table when the sheet is initialised.
var (
	ItemHeaders = []string{
		"Code", "Name", "Category", "Unit",
		"Unit Price", "Min Stock", "Quantity",
		"Status", "Value", "Shelf Life (days)",
	}
	TransactionHeaders = []string{
		"Approve", "Order", "Date", "Code", "Name",
		"Type", "Quantity", "Shelf Life", "Expiry", "Remaining Days", "Requester",
	}
	RetiredHeaders = []string{"Code", "Retired On", "Retired By"}
)

// Item columns (1-based).
const (
	itemColCode = iota + 1
	itemColName
	itemColCategory
	itemColUnit
	itemColUnitPrice
	itemColMinStock
	itemColQuantity
	itemColStatus
	itemColValue
	itemColShelfLife
)

// Transaction columns (1-based).
const (
	txColApprove = iota + 1
	txColOrder
	txColDate
	txColCode
	txColName
	txColType
	txColQuantity
	txColShelfLife
	txColExpiry
	txColRemaining
	txColRequester
)

// templateRowName marks the sample row shipped in the sheet template.
const templateRowName = "ตัวอย่าง"

// cell returns the trimmed value at 1-based col, or "" for short rows.
func cell(row []string, col int) string {
	if col-1 < len(row) {
		return strings.TrimSpace(row[col-1])
	}
	return ""
}

// parseDecimal reads a numeric cell the lenient way the sheet needs:
// blanks, #N/A and garbage become zero, thousands separators are dropped.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "#N/A" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(s string) int {
	return int(parseDecimal(s).IntPart())
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func itoa(n int) string { return strconv.Itoa(n) }
