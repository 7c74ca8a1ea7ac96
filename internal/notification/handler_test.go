package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	to      string
	kind    string
	product string
	number  int
}

type fakeSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeSender) SendLowStockAlert(to, productName string, stock, _ int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, kind: TypeLowStock, product: productName, number: stock})
	return nil
}

func (f *fakeSender) SendRestockRequest(to, productName string, quantity int, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, kind: TypeRestockRequest, product: productName, number: quantity})
	return nil
}

func TestHandler_HandleMessage_LowStock(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, []string{"ops@example.com", "owner@example.com"})

	n := Notification{
		ID:   "n1",
		Type: TypeLowStock,
		Data: map[string]any{"product_name": "Widget", "stock": 3, "threshold": 10},
	}
	raw, err := json.Marshal(n)
	require.NoError(t, err)

	require.NoError(t, handler.HandleMessage(context.Background(), []byte("n1"), raw))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "ops@example.com", sender.sent[0].to)
	assert.Equal(t, "Widget", sender.sent[0].product)
	assert.Equal(t, 3, sender.sent[0].number)
}

func TestHandler_Handle_RestockRequest(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, []string{"ops@example.com"})

	err := handler.Handle(context.Background(), &Notification{
		ID:   "n2",
		Type: TypeRestockRequest,
		Data: map[string]any{"product_name": "Widget", "requested_quantity": 50, "priority": "urgent"},
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, TypeRestockRequest, sender.sent[0].kind)
	assert.Equal(t, 50, sender.sent[0].number)
}

func TestHandler_Handle_UnknownTypeSkipped(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, []string{"ops@example.com"})

	err := handler.Handle(context.Background(), &Notification{ID: "n3", Type: "mystery"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandler_Handle_SenderFailureIsSoft(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	handler := NewHandler(sender, []string{"ops@example.com"})

	err := handler.Handle(context.Background(), &Notification{ID: "n4", Type: TypeLowStock})
	assert.NoError(t, err, "delivery failures are logged, not returned")
}

func TestHandler_Handle_NoRecipients(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, nil)

	err := handler.Handle(context.Background(), &Notification{ID: "n5", Type: TypeLowStock})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandler_HandleMessage_MalformedPayload(t *testing.T) {
	handler := NewHandler(&fakeSender{}, []string{"ops@example.com"})
	err := handler.HandleMessage(context.Background(), nil, []byte("not json"))
	assert.Error(t, err)
}
