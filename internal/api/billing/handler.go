// Package billing serves the tenant's subscription, plan upgrades, invoice
// payment links and payment verification.
package billing

import (
	"log/slog"

	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/app/payments"
	"invoicing-app/internal/app/subscription"
)

type Handler struct {
	subs        *subscription.Service
	payments    *payments.Service
	entitlement *entitlement.Engine
	log         *slog.Logger
}

func NewHandler(subs *subscription.Service, p *payments.Service, e *entitlement.Engine, log *slog.Logger) *Handler {
	return &Handler{subs: subs, payments: p, entitlement: e, log: log}
}
