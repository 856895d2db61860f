// Package notifytest records notifications instead of sending them.
package notifytest

import (
	"context"
	"sync"

	"invoicing-app/internal/app/notify"
	"invoicing-app/internal/infra/mailer"

	"github.com/google/uuid"
)

type Sent struct {
	Channel string
	To      string
	Subject string
	Body    string
}

type Recorder struct {
	mu   sync.Mutex
	sent []Sent

	// Err, when set, is returned by every send after recording it.
	Err error
}

var _ notify.Notifier = (*Recorder)(nil)

func (r *Recorder) record(s Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, s)
	return r.Err
}

func (r *Recorder) SendEmail(_ context.Context, msg mailer.Message) error {
	return r.record(Sent{Channel: notify.ChannelEmail, To: msg.To, Subject: msg.Subject, Body: msg.HTML})
}

func (r *Recorder) SendSMS(_ context.Context, _ uuid.UUID, to, body string) error {
	return r.record(Sent{Channel: notify.ChannelSMS, To: to, Body: body})
}

func (r *Recorder) SendWhatsApp(_ context.Context, _ uuid.UUID, to, body string, _ *notify.Document) error {
	return r.record(Sent{Channel: notify.ChannelWhatsApp, To: to, Body: body})
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
