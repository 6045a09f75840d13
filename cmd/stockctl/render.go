package main

import (
	"fmt"
	"strings"
	"time"

	"sukiism/internal/infra"
	"sukiism/internal/model"
)

// mdEscape keeps user text from breaking a markdown table row.
func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func itemsMarkdown(items []model.Item, currency string) string {
	var b strings.Builder
	b.WriteString("# Items\n\n")
	if len(items) == 0 {
		b.WriteString("_No items._\n")
		return b.String()
	}
	b.WriteString("| Code | Name | Category | Qty | Min | Status | Value |\n")
	b.WriteString("|---|---|---|--:|--:|---|--:|\n")
	for _, it := range items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s %s | %s | %s | %s |\n",
			it.Code, mdEscape(it.Name), mdEscape(it.Category),
			it.Quantity.String(), mdEscape(it.Unit), it.MinStock.String(),
			it.Status, infra.FormatMoney(it.Value, currency))
	}
	return b.String()
}

func restockMarkdown(entries []model.RestockEntry, currency string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Restock list, %s\n\n", at.Format("02 Jan 2006"))
	if len(entries) == 0 {
		b.WriteString("_Everything is above its minimum stock._\n")
		return b.String()
	}
	b.WriteString("| Code | Name | In stock | Minimum | To buy | Est. cost |\n")
	b.WriteString("|---|---|--:|--:|--:|--:|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s %s | %s |\n",
			e.Code, mdEscape(e.Name), e.Quantity.String(), e.MinStock.String(),
			e.Needed.String(), mdEscape(e.Unit), infra.FormatMoney(e.Needed.Mul(e.UnitPrice), currency))
	}
	return b.String()
}

func transactionsMarkdown(txs []model.Transaction) string {
	var b strings.Builder
	b.WriteString("# Transactions\n\n")
	if len(txs) == 0 {
		b.WriteString("_No transactions._\n")
		return b.String()
	}
	b.WriteString("| Row | Order | Date | Item | Type | Qty | Expiry | Approved | By |\n")
	b.WriteString("|--:|---|---|---|---|--:|---|---|---|\n")
	for _, tx := range txs {
		approved := "no"
		if tx.Approved {
			approved = "yes"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s %s | %s | %s | %s | %s | %s |\n",
			tx.Row, tx.Order, tx.Date, tx.ItemCode, mdEscape(tx.ItemName),
			tx.Type, tx.Quantity.String(), tx.Expiry, approved, mdEscape(tx.Requester))
	}
	return b.String()
}
