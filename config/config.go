package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	GatewayPaystack = "paystack"
	GatewayStripe   = "stripe"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	DBURL      string `env:"DB_URL,required,notEmpty"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	AppURL     string `env:"APP_URL" envDefault:"http://localhost:5173"`

	PaymentGateway    string        `env:"PAYMENT_GATEWAY" envDefault:"paystack"`
	PaystackSecretKey string        `env:"PAYSTACK_SECRET_KEY"`
	PaystackBaseURL   string        `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	StripeSecretKey   string        `env:"STRIPE_SECRET_KEY"`
	StripeWebhookKey  string        `env:"STRIPE_WEBHOOK_SECRET"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"billing@localhost"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@localhost"`

	RabbitMQURL    string `env:"RABBITMQ_URL"`
	NotifyExchange string `env:"NOTIFY_EXCHANGE" envDefault:"notifications"`

	RedisURL         string        `env:"REDIS_URL"`
	WebhookDedupeTTL time.Duration `env:"WEBHOOK_DEDUPE_TTL" envDefault:"24h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.PaymentGateway = strings.ToLower(strings.TrimSpace(c.PaymentGateway))

	switch c.PaymentGateway {
	case GatewayPaystack:
		if c.PaystackSecretKey == "" {
			return errors.New("config: PAYSTACK_SECRET_KEY is required for the paystack gateway")
		}
	case GatewayStripe:
		if c.StripeSecretKey == "" || c.StripeWebhookKey == "" {
			return errors.New("config: STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required for the stripe gateway")
		}
	default:
		return fmt.Errorf("config: unknown PAYMENT_GATEWAY %q", c.PaymentGateway)
	}

	if c.GatewayTimeout <= 0 {
		return errors.New("config: GATEWAY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PaymentCallbackURL is where the hosted checkout redirects the payer.
func (c *Config) PaymentCallbackURL() string {
	return strings.TrimRight(c.AppURL, "/") + "/payments/callback"
}
