package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"invoicing-app/config"
	"invoicing-app/database"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/catalog"
	"invoicing-app/internal/app/entitlement"
	routes "invoicing-app/internal/app/http"
	"invoicing-app/internal/app/notify"
	"invoicing-app/internal/app/payments"
	"invoicing-app/internal/app/receipts"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/app/subscription"
	"invoicing-app/internal/app/tenancy"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/infra/logger"
	"invoicing-app/internal/infra/mailer"
	"invoicing-app/internal/infra/paystack"
	"invoicing-app/internal/infra/rabbitmq"
	"invoicing-app/internal/infra/redisdedupe"
	"invoicing-app/internal/infra/stripe"
	"invoicing-app/internal/store/gormstore"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, logger.WithAttr(slog.String("env", cfg.AppEnv)))

	if err := run(cfg, log); err != nil {
		log.Error("shutting down", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	s := gormstore.New(db)
	if err := database.SeedPlans(ctx, s, log); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}

	var gw gateway.Gateway
	switch cfg.PaymentGateway {
	case config.GatewayStripe:
		gw = stripe.New(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.GatewayTimeout)
	default:
		gw = paystack.New(cfg.PaystackSecretKey, cfg.PaystackBaseURL, cfg.GatewayTimeout)
	}
	log.Info("payment gateway", slog.String("name", gw.Name()))

	mail := mailer.NewLogOnly(log)
	if cfg.PostmarkServerToken != "" {
		mail, err = mailer.NewPostmark(mailer.Config{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			SenderEmail:  cfg.SenderEmail,
			SupportEmail: cfg.SupportEmail,
		})
		if err != nil {
			return fmt.Errorf("mailer: %w", err)
		}
	}

	var pub rabbitmq.Publisher = &rabbitmq.Fallback{Log: log}
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events will be dropped", slog.Any("err", err))
		} else {
			pub = producer
		}
	}
	defer pub.Close()

	var opts []reconcile.Option
	if cfg.RedisURL != "" {
		dedupe, err := redisdedupe.NewFromURL(ctx, cfg.RedisURL, cfg.WebhookDedupeTTL)
		if err != nil {
			log.Warn("redis unavailable, webhook dedupe relies on the database", slog.Any("err", err))
		} else {
			defer dedupe.Close()
			opts = append(opts, reconcile.WithDeduper(dedupe))
		}
	}

	notifier := notify.NewService(mail, pub, cfg.NotifyExchange, log)
	rec := audit.NewRecorder(s)
	issuer := receipts.NewIssuer()
	tenants := tenancy.NewService(s, rec, log)
	eng := entitlement.New(s)
	reconciler := reconcile.New(s, gw, issuer, rec, notifier, log, opts...)
	callback := cfg.PaymentCallbackURL()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:     cfg.JWTSecret,
		Log:           log,
		Tenants:       tenants,
		Entitlement:   eng,
		Subscriptions: subscription.NewService(s, gw, reconciler, rec, callback, log),
		Catalog: catalog.NewService(catalog.Deps{
			Store:       s,
			Tenants:     tenants,
			Entitlement: eng,
			Audit:       rec,
			Notifier:    notifier,
			AppURL:      cfg.AppURL,
			Log:         log,
		}),
		Payments:   payments.NewService(s, gw, reconciler, tenants, callback, log),
		Receipts:   receipts.NewService(s, issuer, rec, log),
		Reconciler: reconciler,
		Audit:      rec,
	})

	log.Info("listening", slog.String("port", cfg.Port))
	return r.Run(":" + cfg.Port)
}
