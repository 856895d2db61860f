// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"invoicing-app/internal/infra/gateway"
)

const SignatureHeader = "X-Fake-Signature"

type Fake struct {
	Secret string

	mu           sync.Mutex
	transactions map[string]gateway.Transaction
	initialized  []gateway.InitializeRequest
	verifyCalls  map[string]int

	// InitErr and VerifyErr, when set, are returned by the matching call.
	InitErr   error
	VerifyErr error
}

var _ gateway.Gateway = (*Fake)(nil)

func New(secret string) *Fake {
	return &Fake{
		Secret:       secret,
		transactions: map[string]gateway.Transaction{},
		verifyCalls:  map[string]int{},
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) SignatureHeader() string { return SignatureHeader }

func (f *Fake) InitializeTransaction(_ context.Context, req gateway.InitializeRequest) (*gateway.Checkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.InitErr != nil {
		return nil, f.InitErr
	}
	f.initialized = append(f.initialized, req)
	f.transactions[req.Reference] = gateway.Transaction{
		Reference:   req.Reference,
		Status:      gateway.StatusPending,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Metadata:    req.Metadata,
	}
	return &gateway.Checkout{
		AuthorizationURL: "https://checkout.example.test/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (f *Fake) VerifyTransaction(_ context.Context, reference string) (*gateway.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.verifyCalls[reference]++
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	tx, ok := f.transactions[reference]
	if !ok {
		return nil, fmt.Errorf("%w: transaction reference not found", gateway.ErrRejected)
	}
	return &tx, nil
}

func (f *Fake) VerifyWebhookSignature(body []byte, signature string) bool {
	return gateway.VerifyHMACSHA512(f.Secret, body, signature)
}

func (f *Fake) ParseWebhook(body []byte) (*gateway.Event, error) {
	var raw struct {
		Event string              `json:"event"`
		Data  gateway.Transaction `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &gateway.Event{Name: raw.Event, Data: raw.Data}, nil
}

// Settle records the provider-side outcome for reference.
func (f *Fake) Settle(tx gateway.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions[tx.Reference] = tx
}

func (f *Fake) Initialized() []gateway.InitializeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.InitializeRequest(nil), f.initialized...)
}

func (f *Fake) VerifyCalls(reference string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls[reference]
}

// SignedWebhook builds a body and its signature.
func (f *Fake) SignedWebhook(event string, tx gateway.Transaction) ([]byte, string) {
	body, _ := json.Marshal(map[string]any{"event": event, "data": tx})
	return body, gateway.SignHMACSHA512(f.Secret, body)
}
