package infra

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in currency code with its symbol and the
// currency's minor-unit precision, e.g. "฿1,250.50".
func FormatMoney(amount decimal.Decimal, code string) string {
	fraction := int32(2)
	if c := money.GetCurrency(code); c != nil {
		fraction = int32(c.Fraction)
	}
	minor := amount.Shift(fraction).Round(0).IntPart()
	return money.New(minor, code).Display()
}
