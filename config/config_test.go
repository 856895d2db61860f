package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/invoicing")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test")
	t.Setenv("GATEWAY_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, GatewayPaystack, cfg.PaymentGateway)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 24*time.Hour, cfg.WebhookDedupeTTL)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			PaymentGateway:    "Paystack",
			PaystackSecretKey: "sk_test",
			GatewayTimeout:    time.Second,
			AppURL:            "https://app.example.com/",
		}
	}

	t.Run("normalizes gateway name", func(t *testing.T) {
		cfg := base()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, GatewayPaystack, cfg.PaymentGateway)
		assert.Equal(t, "https://app.example.com/payments/callback", cfg.PaymentCallbackURL())
	})

	t.Run("paystack needs secret", func(t *testing.T) {
		cfg := base()
		cfg.PaystackSecretKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("stripe needs both keys", func(t *testing.T) {
		cfg := base()
		cfg.PaymentGateway = GatewayStripe
		cfg.StripeSecretKey = "sk_test"
		assert.Error(t, cfg.Validate())

		cfg.StripeWebhookKey = "whsec_test"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown gateway", func(t *testing.T) {
		cfg := base()
		cfg.PaymentGateway = "cash"
		assert.Error(t, cfg.Validate())
	})

	t.Run("timeout must be positive", func(t *testing.T) {
		cfg := base()
		cfg.GatewayTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}
