package worker

// restock_worker.go
// Mails a restock alert when an item drops below its minimum stock.

import (
	"context"
	"encoding/json"
	"fmt"

	"sukiism/internal/infra"
	"sukiism/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RestockAlert is the payload queued on QueueRestock.
type RestockAlert struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Needed    decimal.Decimal `json:"needed"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func NewRestockAlert(e model.RestockEntry) RestockAlert {
	return RestockAlert{
		Code:      e.Code,
		Name:      e.Name,
		Unit:      e.Unit,
		Quantity:  e.Quantity,
		MinStock:  e.MinStock,
		Needed:    e.Needed,
		UnitPrice: e.UnitPrice,
	}
}

// Sender delivers one email. *infra.Mailer satisfies it.
type Sender interface {
	Send(to, subject, body string, pdf []byte, pdfName string) error
}

// RestockAlertWorker formats and sends restock alerts.
type RestockAlertWorker struct {
	sender   Sender
	to       string
	currency string
}

// NewRestockAlertWorker mails alerts to to. An empty to only logs them.
func NewRestockAlertWorker(sender Sender, to, currency string) *RestockAlertWorker {
	return &RestockAlertWorker{sender: sender, to: to, currency: currency}
}

func (w *RestockAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var a RestockAlert
	if err := json.Unmarshal(raw, &a); err != nil {
		// A malformed payload will never succeed; drop it
		log.Error().Err(err).Msg("restock_worker: invalid payload")
		return nil
	}
	log.Warn().
		Str("item_code", a.Code).
		Str("quantity", a.Quantity.String()).
		Str("min_stock", a.MinStock.String()).
		Msg("item needs restock")

	if w.to == "" || w.sender == nil {
		return nil
	}
	subject, body := w.Render(a)
	if err := w.sender.Send(w.to, subject, body, nil, ""); err != nil {
		return fmt.Errorf("restock_worker: send: %w", err)
	}
	log.Info().Str("to", w.to).Str("item_code", a.Code).Msg("restock alert sent")
	return nil
}

// Render builds the subject and plain-text body of an alert.
func (w *RestockAlertWorker) Render(a RestockAlert) (string, string) {
	subject := fmt.Sprintf("Restock needed: %s %s", a.Code, a.Name)
	body := fmt.Sprintf(
		"%s (%s) is below its minimum stock.\n\nOn hand: %s %s\nMinimum: %s %s\nTo order: %s %s\nEstimated cost: %s\n",
		a.Name, a.Code,
		a.Quantity.String(), a.Unit,
		a.MinStock.String(), a.Unit,
		a.Needed.String(), a.Unit,
		infra.FormatMoney(a.Needed.Mul(a.UnitPrice), w.currency),
	)
	return subject, body
}
