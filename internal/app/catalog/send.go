package catalog

import (
	"context"
	"log/slog"
	"strings"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/notify"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

var channelFeature = map[string]plans.Feature{
	notify.ChannelSMS:      plans.FeatureSMS,
	notify.ChannelWhatsApp: plans.FeatureWhatsApp,
}

// SendInvoice delivers the invoice to its customer and advances a DRAFT to
// SENT. SMS and WhatsApp are plan features.
func (s *Service) SendInvoice(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id uuid.UUID, channel string) (*invoices.Invoice, error) {
	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		channel = notify.ChannelEmail
	}
	if channel != notify.ChannelEmail {
		feature, ok := channelFeature[channel]
		if !ok {
			return nil, apperr.Newf(apperr.Validation, "unknown channel %q", channel)
		}
		if err := s.entitlement.RequireFeature(ctx, tenantID, feature); err != nil {
			return nil, err
		}
	}

	tenant, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inv, err := s.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == invoices.StatusCanceled {
		return nil, apperr.New(apperr.Conflict, "Canceled invoices cannot be sent")
	}
	if inv.Customer == nil {
		return nil, apperr.New(apperr.Validation, "invoice has no customer")
	}

	if err := s.deliver(ctx, tenant, inv, channel); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.LockInvoice(ctx, tenantID, id)
		if err != nil {
			return notFound(err, "Invoice")
		}
		before := current.Status
		if current.Status == invoices.StatusDraft {
			current.Status = invoices.StatusSent
			if err := tx.SaveInvoice(ctx, current); err != nil {
				return err
			}
		}
		inv = current

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionInvoiceSent,
			EntityType: "invoice",
			EntityID:   id.String(),
			Metadata: map[string]any{
				"invoiceNumber": current.InvoiceNumber,
				"channel":       channel,
				"before":        string(before),
				"after":         string(current.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) deliver(ctx context.Context, tenant *tenants.Tenant, inv *invoices.Invoice, channel string) error {
	notice := notify.InvoiceNotice{
		To:            inv.Customer.Email,
		CustomerName:  inv.Customer.Name,
		BusinessName:  tenant.Name,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Total,
		Currency:      inv.Currency,
		DueDate:       inv.DueDate,
	}
	if !inv.IsPaid() && s.appURL != "" {
		notice.PayURL = strings.TrimRight(s.appURL, "/") + "/pay/" + inv.ID.String()
	}

	var err error
	switch channel {
	case notify.ChannelEmail:
		if inv.Customer.Email == "" {
			return apperr.New(apperr.Validation, "customer has no email address")
		}
		msg, mErr := notice.Message()
		if mErr != nil {
			return mErr
		}
		err = s.notifier.SendEmail(ctx, msg)
	case notify.ChannelSMS:
		if inv.Customer.Phone == "" {
			return apperr.New(apperr.Validation, "customer has no phone number")
		}
		err = s.notifier.SendSMS(ctx, tenant.ID, inv.Customer.Phone, notice.Text())
	case notify.ChannelWhatsApp:
		if inv.Customer.Phone == "" {
			return apperr.New(apperr.Validation, "customer has no phone number")
		}
		err = s.notifier.SendWhatsApp(ctx, tenant.ID, inv.Customer.Phone, notice.Text(), nil)
	}
	if err != nil {
		s.log.Error("invoice delivery failed",
			slog.String("invoice_id", inv.ID.String()),
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return apperr.Wrap(apperr.Internal, "Could not deliver the invoice, try again", err)
	}
	return nil
}
