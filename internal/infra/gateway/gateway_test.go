package gateway

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1612500), ToMinorUnits(decimal.NewFromInt(16125)))
	assert.Equal(t, int64(16125), ToMinorUnits(decimal.RequireFromString("161.25")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.005")))

	assert.True(t, decimal.RequireFromString("16125").Equal(FromMinorUnits(1612500)))
	assert.True(t, decimal.RequireFromString("161.25").Equal(FromMinorUnits(16125)))
}

func TestHMACSHA512(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := SignHMACSHA512("sk_test", body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifyHMACSHA512("sk_test", body, sig))
	assert.True(t, VerifyHMACSHA512("sk_test", body, strings.ToUpper(sig)))
	assert.False(t, VerifyHMACSHA512("sk_other", body, sig))
	assert.False(t, VerifyHMACSHA512("sk_test", []byte(`{"event":"charge.failed"}`), sig))
	assert.False(t, VerifyHMACSHA512("sk_test", body, ""))
	assert.False(t, VerifyHMACSHA512("", body, sig))
}

func TestTransactionSuccessful(t *testing.T) {
	var nilTx *Transaction
	assert.False(t, nilTx.Successful())
	assert.True(t, (&Transaction{Status: StatusSuccess}).Successful())
	assert.False(t, (&Transaction{Status: StatusAbandoned}).Successful())
}
