package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRecalculate(t *testing.T) {
	inv := &Invoice{
		Lines: []LineItem{
			{Description: "Design", Quantity: dec("2"), UnitPrice: dec("5000"), TaxRate: dec("7.5")},
			{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("5000"), TaxRate: dec("7.5")},
		},
	}

	inv.Recalculate()

	assert.True(t, dec("10000").Equal(inv.Lines[0].Amount))
	assert.Equal(t, 1, inv.Lines[1].Position)
	assert.True(t, dec("15000").Equal(inv.Subtotal))
	assert.True(t, dec("1125").Equal(inv.TaxTotal))
	assert.True(t, dec("16125").Equal(inv.Total), inv.Total.String())
}

func TestMarkPaid(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	draft := &Invoice{Status: StatusDraft, PaymentStatus: PaymentUnpaid}
	draft.MarkPaid(now)
	assert.Equal(t, StatusSent, draft.Status)
	assert.True(t, draft.IsPaid())
	require.NotNil(t, draft.PaidAt)
	assert.Equal(t, now, *draft.PaidAt)

	overdue := &Invoice{Status: StatusOverdue, PaymentStatus: PaymentPartiallyPaid}
	overdue.MarkPaid(now)
	assert.Equal(t, StatusOverdue, overdue.Status)
	assert.True(t, overdue.IsPaid())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatNumber(1))
	assert.Equal(t, "INV-12345", FormatNumber(12345))
}
