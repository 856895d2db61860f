package database

import (
	"context"
	"fmt"
	"log/slog"

	"invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to Postgres. TranslateError is required by the store so
// unique violations surface as duplicates.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate creates the extension and tables the models need.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		// core
		&tenants.Tenant{},
		&plans.Plan{},
		&subscriptions.Subscription{},

		// invoicing
		&invoices.Customer{},
		&invoices.Item{},
		&invoices.Invoice{},
		&invoices.LineItem{},

		// billing
		&billing.Payment{},
		&billing.Receipt{},
		&billing.ReceiptSequence{},

		&audit.Log{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// DefaultPlans is the catalog a fresh database starts with. Pro is the
// trial plan new tenants onboard on.
func DefaultPlans() []plans.Plan {
	return []plans.Plan{
		{
			Code:          "free",
			Name:          "Free",
			Price:         decimal.Zero,
			Currency:      "NGN",
			BillingPeriod: plans.BillingMonthly,

			MaxInvoices:  5,
			MaxCustomers: 5,
			MaxItems:     10,
			MaxUsers:     1,

			IsActive: true,
		},
		{
			Code:          "starter",
			Name:          "Starter",
			Price:         decimal.NewFromInt(5000),
			Currency:      "NGN",
			BillingPeriod: plans.BillingMonthly,

			MaxInvoices:  50,
			MaxCustomers: 50,
			MaxItems:     100,
			MaxUsers:     2,

			CanUseReporting: true,
			IsActive:        true,
		},
		{
			Code:          "pro",
			Name:          "Pro",
			Price:         decimal.NewFromInt(15000),
			Currency:      "NGN",
			BillingPeriod: plans.BillingMonthly,
			TrialDays:     14,

			MaxInvoices:  500,
			MaxCustomers: 500,
			MaxItems:     plans.Unlimited,
			MaxUsers:     5,

			CanUsePremiumTemplates: true,
			CanCustomizeTemplates:  true,
			CanUseReporting:        true,
			CanExportData:          true,
			CanUseWhatsApp:         true,
			IsDefault:              true,
			IsActive:               true,
		},
		{
			Code:          "business",
			Name:          "Business",
			Price:         decimal.NewFromInt(40000),
			Currency:      "NGN",
			BillingPeriod: plans.BillingMonthly,

			MaxInvoices:  plans.Unlimited,
			MaxCustomers: plans.Unlimited,
			MaxItems:     plans.Unlimited,
			MaxUsers:     20,

			CanUsePremiumTemplates: true,
			CanCustomizeTemplates:  true,
			CanUseReporting:        true,
			CanExportData:          true,
			CanRemoveBranding:      true,
			CanUseWhatsApp:         true,
			CanUseSMS:              true,
			IsActive:               true,
		},
	}
}

// SeedPlans inserts DefaultPlans when the plans table is empty. An existing
// catalog is never touched.
func SeedPlans(ctx context.Context, s store.Store, log *slog.Logger) error {
	return s.Transaction(ctx, func(tx store.Store) error {
		n, err := tx.CountPlans(ctx)
		if err != nil {
			return fmt.Errorf("count plans: %w", err)
		}
		if n > 0 {
			return nil
		}
		catalog := DefaultPlans()
		for i := range catalog {
			p := &catalog[i]
			if err := tx.CreatePlan(ctx, p); err != nil {
				return fmt.Errorf("seed plan %s: %w", p.Code, err)
			}
		}
		log.Info("seeded plan catalog", slog.Int("plans", len(catalog)))
		return nil
	})
}
