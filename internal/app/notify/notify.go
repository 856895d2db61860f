// Package notify delivers documents and confirmations to customers. Email
// goes straight to Postmark; SMS and WhatsApp are queued on RabbitMQ for the
// messaging workers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invoicing-app/internal/infra/mailer"
	"invoicing-app/internal/infra/rabbitmq"

	"github.com/google/uuid"
)

const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"

	routingSMS      = "notify.sms"
	routingWhatsApp = "notify.whatsapp"
)

var ErrNoRecipient = errors.New("notify: recipient is required")

type Document struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Notifier is the delivery contract the billing core depends on. Callers
// treat every method as best effort.
type Notifier interface {
	SendEmail(ctx context.Context, msg mailer.Message) error
	SendSMS(ctx context.Context, tenantID uuid.UUID, to, body string) error
	SendWhatsApp(ctx context.Context, tenantID uuid.UUID, to, body string, doc *Document) error
}

// Outbound is the queued job consumed by the SMS/WhatsApp workers.
type Outbound struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Channel   string    `json:"channel"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Document  *Document `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	mail     mailer.Sender
	pub      rabbitmq.Publisher
	exchange string
	log      *slog.Logger
}

var _ Notifier = (*Service)(nil)

func NewService(mail mailer.Sender, pub rabbitmq.Publisher, exchange string, log *slog.Logger) *Service {
	return &Service{mail: mail, pub: pub, exchange: exchange, log: log}
}

func (s *Service) SendEmail(ctx context.Context, msg mailer.Message) error {
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	s.log.Info("email sent", slog.String("to", msg.To), slog.String("tag", msg.Tag))
	return nil
}

func (s *Service) SendSMS(ctx context.Context, tenantID uuid.UUID, to, body string) error {
	return s.enqueue(ctx, routingSMS, Outbound{TenantID: tenantID, Channel: ChannelSMS, To: to, Body: body})
}

func (s *Service) SendWhatsApp(ctx context.Context, tenantID uuid.UUID, to, body string, doc *Document) error {
	return s.enqueue(ctx, routingWhatsApp, Outbound{TenantID: tenantID, Channel: ChannelWhatsApp, To: to, Body: body, Document: doc})
}

func (s *Service) enqueue(ctx context.Context, routingKey string, msg Outbound) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().UTC()

	if err := s.pub.Publish(ctx, s.exchange, routingKey, msg); err != nil {
		return fmt.Errorf("queue %s: %w", msg.Channel, err)
	}
	s.log.Info("message queued",
		slog.String("channel", msg.Channel),
		slog.String("tenant_id", msg.TenantID.String()),
		slog.String("message_id", msg.ID.String()),
	)
	return nil
}
