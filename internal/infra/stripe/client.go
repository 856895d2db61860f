// Package stripe adapts Stripe Checkout and PaymentIntents to gateway.Gateway.
// The payment reference travels in the payment intent metadata.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"invoicing-app/internal/infra/gateway"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

const (
	signatureHeader = "Stripe-Signature"
	metaReference   = "reference"
)

type Client struct {
	api           *client.API
	webhookSecret string
}

var _ gateway.Gateway = (*Client)(nil)

func New(secretKey, webhookSecret string, timeout time.Duration) *Client {
	cfg := &stripego.BackendConfig{HTTPClient: &http.Client{Timeout: timeout}}
	backends := &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, cfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, cfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, cfg),
	}
	return &Client{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (c *Client) Name() string { return "stripe" }

func (c *Client) SignatureHeader() string { return signatureHeader }

func (c *Client) InitializeTransaction(ctx context.Context, req gateway.InitializeRequest) (*gateway.Checkout, error) {
	meta := map[string]string{metaReference: req.Reference}
	for k, v := range req.Metadata {
		meta[k] = v
	}

	description := req.Description
	if description == "" {
		description = req.Reference
	}

	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(withReference(req.CallbackURL, req.Reference)),
		CancelURL:         stripego.String(withReference(req.CallbackURL, req.Reference) + "&canceled=1"),
		ClientReferenceID: stripego.String(req.Reference),
		LineItems: []*stripego.CheckoutSessionLineItemParams{{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripego.String(strings.ToLower(req.Currency)),
				UnitAmount: stripego.Int64(req.AmountMinor),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripego.String(description),
				},
			},
			Quantity: stripego.Int64(1),
		}},
		PaymentIntentData: &stripego.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripego.String(req.Email)
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &gateway.Checkout{
		AuthorizationURL: s.URL,
		AccessCode:       s.ID,
		Reference:        req.Reference,
	}, nil
}

func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*gateway.Transaction, error) {
	params := &stripego.PaymentIntentSearchParams{}
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", metaReference, strings.ReplaceAll(reference, "'", ""))
	params.Context = ctx

	iter := c.api.PaymentIntents.Search(params)
	var found *stripego.PaymentIntent
	for iter.Next() {
		pi := iter.PaymentIntent()
		if found == nil || pi.Status == stripego.PaymentIntentStatusSucceeded {
			found = pi
		}
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no payment for reference %s", gateway.ErrRejected, reference)
	}
	return fromPaymentIntent(found), nil
}

func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c.webhookSecret == "" || signature == "" {
		return false
	}
	return webhook.ValidatePayload(body, signature, c.webhookSecret) == nil
}

func (c *Client) ParseWebhook(body []byte) (*gateway.Event, error) {
	var ev stripego.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("stripe: decode event: %w", err)
	}
	if ev.Type == "" {
		return nil, errors.New("stripe: event without type")
	}

	out := &gateway.Event{Name: eventName(ev.Type)}
	if out.Name != gateway.EventChargeSuccess && out.Name != gateway.EventChargeFailed {
		return out, nil
	}
	if ev.Data == nil {
		return nil, errors.New("stripe: event without data")
	}

	var pi stripego.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: decode payment intent: %w", err)
	}
	out.Data = *fromPaymentIntent(&pi)
	return out, nil
}

func fromPaymentIntent(pi *stripego.PaymentIntent) *gateway.Transaction {
	meta := gateway.Metadata{}
	for k, v := range pi.Metadata {
		meta[k] = v
	}

	tx := &gateway.Transaction{
		Reference:   pi.Metadata[metaReference],
		Status:      NormalizePaymentIntentStatus(pi.Status),
		AmountMinor: pi.Amount,
		Currency:    strings.ToUpper(string(pi.Currency)),
		Metadata:    meta,
	}
	if pi.PaymentMethod != nil {
		tx.Channel = string(pi.PaymentMethod.Type)
	}
	if pi.LastPaymentError != nil {
		tx.GatewayResponse = pi.LastPaymentError.Msg
		if tx.Status == gateway.StatusPending {
			tx.Status = gateway.StatusFailed
		}
	} else if tx.Status == gateway.StatusSuccess {
		tx.GatewayResponse = "Successful"
	}
	if tx.Status == gateway.StatusSuccess && pi.Created > 0 {
		paid := time.Unix(pi.Created, 0).UTC()
		tx.PaidAt = &paid
	}
	return tx
}

// classify separates answers from Stripe (rejected) from transport failures.
func classify(err error) error {
	var serr *stripego.Error
	if errors.As(err, &serr) && serr.HTTPStatusCode > 0 && serr.HTTPStatusCode < 500 {
		return fmt.Errorf("%w: %s", gateway.ErrRejected, serr.Msg)
	}
	return fmt.Errorf("%w: %v", gateway.ErrUnreachable, err)
}

func withReference(callbackURL, reference string) string {
	sep := "?"
	if strings.Contains(callbackURL, "?") {
		sep = "&"
	}
	return callbackURL + sep + "reference=" + reference
}
