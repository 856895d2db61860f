package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurposeRoundTrip(t *testing.T) {
	invoiceID := uuid.New()
	planID := uuid.New()

	var p Payment
	p.SetPurpose(InvoicePurpose{InvoiceID: invoiceID})
	assert.Equal(t, PurposeInvoice, p.PurposeKind)
	assert.Equal(t, InvoicePurpose{InvoiceID: invoiceID}, p.Purpose())

	p.SetPurpose(UpgradePurpose{PlanID: planID})
	assert.Nil(t, p.InvoiceID)
	require.NotNil(t, p.PlanID)
	assert.Equal(t, UpgradePurpose{PlanID: planID}, p.Purpose())
}

func TestPurposeMissingTarget(t *testing.T) {
	p := Payment{PurposeKind: PurposeAdhoc}
	assert.Nil(t, p.Purpose())
}

func TestNewReference(t *testing.T) {
	now := time.Unix(1715000000, 0)
	a := NewReference("inv", now)
	b := NewReference("inv", now)

	assert.True(t, strings.HasPrefix(a, "INV-1715000000-"))
	assert.NotEqual(t, a, b)
}

func TestFormatReceiptNumber(t *testing.T) {
	assert.Equal(t, "REC-0001", FormatReceiptNumber(1))
	assert.Equal(t, "REC-0042", FormatReceiptNumber(42))
}
