package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"invoicing-app/internal/infra/logger"
	"invoicing-app/internal/infra/mailer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	exchange, key string
	body          any
	err           error
}

func (p *capturePublisher) Publish(_ context.Context, exchange, routingKey string, body any) error {
	p.exchange, p.key, p.body = exchange, routingKey, body
	return p.err
}

func (p *capturePublisher) Close() {}

type captureMail struct {
	msgs []mailer.Message
	err  error
}

func (m *captureMail) Send(_ context.Context, msg mailer.Message) error {
	m.msgs = append(m.msgs, msg)
	return m.err
}

func TestSendSMSQueuesOutbound(t *testing.T) {
	pub := &capturePublisher{}
	s := NewService(&captureMail{}, pub, "notifications", logger.Discard())
	tenantID := uuid.New()

	require.NoError(t, s.SendSMS(context.Background(), tenantID, "+2348000000000", "hello"))
	assert.Equal(t, "notifications", pub.exchange)
	assert.Equal(t, "notify.sms", pub.key)

	raw, err := json.Marshal(pub.body)
	require.NoError(t, err)
	var out Outbound
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, ChannelSMS, out.Channel)
	assert.Equal(t, tenantID, out.TenantID)
	assert.NotEqual(t, uuid.Nil, out.ID)
}

func TestSendWhatsAppWithDocument(t *testing.T) {
	pub := &capturePublisher{}
	s := NewService(&captureMail{}, pub, "notifications", logger.Discard())

	doc := &Document{Name: "INV-0001.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}
	require.NoError(t, s.SendWhatsApp(context.Background(), uuid.New(), "+2348000000000", "invoice", doc))
	assert.Equal(t, "notify.whatsapp", pub.key)
	assert.Equal(t, doc, pub.body.(Outbound).Document)
}

func TestSendRequiresRecipient(t *testing.T) {
	s := NewService(&captureMail{}, &capturePublisher{}, "n", logger.Discard())
	assert.ErrorIs(t, s.SendSMS(context.Background(), uuid.New(), " ", "x"), ErrNoRecipient)
}

func TestSendErrorsPropagate(t *testing.T) {
	boom := errors.New("broker down")
	s := NewService(&captureMail{err: boom}, &capturePublisher{err: boom}, "n", logger.Discard())

	assert.ErrorIs(t, s.SendEmail(context.Background(), mailer.Message{To: "a@b.c"}), boom)
	assert.ErrorIs(t, s.SendSMS(context.Background(), uuid.New(), "+1", "x"), boom)
}

func TestPaymentConfirmationMessage(t *testing.T) {
	msg, err := PaymentConfirmation{
		To:            "payer@example.com",
		CustomerName:  "Ada <Lovelace>",
		BusinessName:  "Acme",
		InvoiceNumber: "INV-0001",
		ReceiptNumber: "REC-0001",
		Reference:     "INV-123",
		Amount:        decimal.NewFromInt(16125),
		Currency:      "NGN",
		PaidAt:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}.Message()
	require.NoError(t, err)

	assert.Equal(t, "Payment received - REC-0001", msg.Subject)
	assert.Contains(t, msg.HTML, "NGN 16125.00")
	assert.Contains(t, msg.HTML, "INV-0001")
	assert.Contains(t, msg.HTML, "Ada &lt;Lovelace&gt;")
	assert.NoError(t, msg.Validate())
}

func TestInvoiceNoticeText(t *testing.T) {
	due := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	n := InvoiceNotice{BusinessName: "Acme", InvoiceNumber: "INV-0002", Amount: decimal.RequireFromString("99.5"), Currency: "NGN", DueDate: &due, PayURL: "https://pay/x"}

	assert.Equal(t, "Acme: invoice INV-0002 for NGN 99.50, due 30 Jun 2026. Pay: https://pay/x", n.Text())
}
