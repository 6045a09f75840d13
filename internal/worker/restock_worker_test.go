package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sukiism/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ to, subject, body string }

type stubSender struct {
	sent []sentMail
	err  error
}

func (s *stubSender) Send(to, subject, body string, _ []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, body})
	return nil
}

func shortPork() model.RestockEntry {
	return model.RestockEntry{
		Item: model.Item{
			Code: "MT-0001", Name: "Pork belly", Unit: "kg",
			UnitPrice: decimal.NewFromInt(120), MinStock: decimal.NewFromInt(10), Quantity: decimal.NewFromInt(3),
		},
		Needed: decimal.NewFromInt(7),
	}
}

func TestRestockAlertWorker_SendsMail(t *testing.T) {
	sender := &stubSender{}
	w := NewRestockAlertWorker(sender, "kitchen@example.com", "USD")

	require.NoError(t, NewInline(w).NotifyRestock(context.Background(), shortPork()))
	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, "kitchen@example.com", m.to)
	assert.Equal(t, "Restock needed: MT-0001 Pork belly", m.subject)
	assert.Contains(t, m.body, "To order: 7 kg")
	assert.Contains(t, m.body, "$840.00")
}

func TestRestockAlertWorker_NoRecipientOnlyLogs(t *testing.T) {
	sender := &stubSender{}
	w := NewRestockAlertWorker(sender, "", "USD")
	require.NoError(t, NewInline(w).NotifyRestock(context.Background(), shortPork()))
	assert.Empty(t, sender.sent)
}

func TestRestockAlertWorker_SendFailureIsReturned(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	w := NewRestockAlertWorker(sender, "kitchen@example.com", "USD")
	err := NewInline(w).NotifyRestock(context.Background(), shortPork())
	assert.ErrorContains(t, err, "smtp down")
}

func TestRestockAlertWorker_DropsMalformedPayload(t *testing.T) {
	sender := &stubSender{}
	w := NewRestockAlertWorker(sender, "kitchen@example.com", "USD")
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"quantity":`)))
	assert.Empty(t, sender.sent)
}
