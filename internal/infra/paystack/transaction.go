package paystack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoicing-app/internal/infra/gateway"
)

type transaction struct {
	Reference       string         `json:"reference"`
	Status          string         `json:"status"`
	Amount          int64          `json:"amount"`
	Currency        string         `json:"currency"`
	Channel         string         `json:"channel"`
	Fees            int64          `json:"fees"`
	GatewayResponse string         `json:"gateway_response"`
	PaidAt          *time.Time     `json:"paid_at"`
	Authorization   map[string]any `json:"authorization"`
	Metadata        metadata       `json:"metadata"`
}

func (t transaction) toGateway() *gateway.Transaction {
	return &gateway.Transaction{
		Reference:       t.Reference,
		Status:          strings.ToLower(t.Status),
		AmountMinor:     t.Amount,
		Currency:        strings.ToUpper(t.Currency),
		Channel:         t.Channel,
		FeesMinor:       t.Fees,
		GatewayResponse: t.GatewayResponse,
		Authorization:   t.Authorization,
		Metadata:        gateway.Metadata(t.Metadata),
		PaidAt:          t.PaidAt,
	}
}

// metadata accepts what Paystack echoes back: an object, a JSON-encoded
// string, an empty string, 0 or null. Non-string scalars are stringified and
// nested values are dropped.
type metadata map[string]string

func (m *metadata) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("0")) {
		*m = nil
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = nil
			return nil
		}
		b = []byte(s)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("paystack: metadata: %w", err)
	}

	out := make(metadata, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64, bool:
			out[k] = fmt.Sprint(val)
		}
	}
	*m = out
	return nil
}
