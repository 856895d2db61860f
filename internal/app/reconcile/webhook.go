package reconcile

import (
	"context"
	"log/slog"
	"strings"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/infra/gateway"
)

// HandleWebhook authenticates and applies a gateway event. Once the
// signature and body check out, every returned error is an infrastructure
// failure the gateway should retry; unknown references and unrecognized
// events are acknowledged.
func (r *Reconciler) HandleWebhook(ctx context.Context, body []byte, signature string) (*Result, error) {
	if strings.TrimSpace(signature) == "" || !r.gateway.VerifyWebhookSignature(body, signature) {
		r.log.Warn("webhook signature rejected", slog.String("gateway", r.gateway.Name()))
		return nil, apperr.New(apperr.SignatureInvalid, "invalid webhook signature")
	}

	ev, err := r.gateway.ParseWebhook(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "malformed webhook payload", err)
	}

	log := r.log.With(slog.String("event", ev.Name), slog.String("reference", ev.Data.Reference))

	if ev.Name != gateway.EventChargeSuccess && ev.Name != gateway.EventChargeFailed {
		log.Debug("webhook event ignored")
		return &Result{Outcome: OutcomeIgnored}, nil
	}
	if strings.TrimSpace(ev.Data.Reference) == "" {
		log.Warn("webhook event without reference")
		return &Result{Outcome: OutcomeUnknownReference}, nil
	}

	if r.dedupe != nil {
		seen, err := r.dedupe.Seen(ctx, ev.Name, ev.Data.Reference)
		if err != nil {
			log.Warn("webhook dedupe lookup failed", slog.String("error", err.Error()))
		} else if seen {
			log.Debug("webhook redelivery skipped")
			return &Result{Outcome: OutcomeAlreadyReconciled}, nil
		}
	}

	var res *Result
	if ev.Name == gateway.EventChargeSuccess {
		res, err = r.ApplySuccessfulPayment(ctx, ev.Data)
	} else {
		res, err = r.ApplyFailedPayment(ctx, ev.Data)
	}
	if err != nil {
		if apperr.Is(err, apperr.PaymentRecordNotFound) {
			log.Warn("webhook for unknown payment reference")
			return &Result{Outcome: OutcomeUnknownReference}, nil
		}
		return nil, err
	}

	if r.dedupe != nil {
		if _, err := r.dedupe.MarkApplied(ctx, ev.Name, ev.Data.Reference); err != nil {
			log.Warn("webhook dedupe mark failed", slog.String("error", err.Error()))
		}
	}
	log.Info("webhook processed", slog.String("outcome", string(res.Outcome)))
	return res, nil
}
