package stripe

import (
	"strings"

	"invoicing-app/internal/infra/gateway"

	stripego "github.com/stripe/stripe-go/v75"
)

// NormalizePaymentIntentStatus folds Stripe's payment intent states into the
// gateway's success|failed|pending vocabulary.
func NormalizePaymentIntentStatus(s stripego.PaymentIntentStatus) string {
	switch stripego.PaymentIntentStatus(strings.TrimSpace(string(s))) {
	case stripego.PaymentIntentStatusSucceeded:
		return gateway.StatusSuccess
	case stripego.PaymentIntentStatusCanceled:
		return gateway.StatusFailed
	case "":
		return gateway.StatusAbandoned
	default:
		return gateway.StatusPending
	}
}

// eventName maps Stripe event types onto the gateway's charge events.
// Anything else is passed through and ends up ignored.
func eventName(t stripego.EventType) string {
	switch t {
	case "payment_intent.succeeded":
		return gateway.EventChargeSuccess
	case "payment_intent.payment_failed", "payment_intent.canceled":
		return gateway.EventChargeFailed
	default:
		return string(t)
	}
}
