package infra

// pdf.go renders the printable restock report with go-pdf/fpdf: a header
// with the generation time, one row per item below its minimum, and the
// estimated purchase cost at current unit prices.

import (
	"bytes"
	"fmt"
	"time"

	"sukiism/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateRestockPDF returns an A4 restock report for entries.
func GenerateRestockPDF(entries []model.RestockEntry, currency string, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Restock report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, generatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(contentW, 8, "All items are at or above their minimum stock.", "", 1, "L", false, 0, "")
		return output(pdf)
	}

	// ── Table ────────────────────────────────────────────────────────────────
	widths := []float64{contentW * 0.13, contentW * 0.33, contentW * 0.11, contentW * 0.11, contentW * 0.11, contentW * 0.21}
	headers := []string{"Code", "Item", "Qty", "Min", "Needed", "Est. cost"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, e := range entries {
		cost := e.Needed.Mul(e.UnitPrice)
		total = total.Add(cost)
		pdf.CellFormat(widths[0], 6, e.Code, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(e.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, e.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, e.MinStock.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%s %s", e.Needed.String(), tr(e.Unit)), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, tr(FormatMoney(cost, currency)), "", 1, "R", false, 0, "")
	}

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW-widths[5], 7, "Estimated total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 7, tr(FormatMoney(total, currency)), "T", 1, "R", false, 0, "")

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
