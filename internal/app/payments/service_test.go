package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/apptest"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/notify/notifytest"
	"invoicing-app/internal/app/receipts"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/app/tenancy"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/infra/gateway/gatewaytest"
	"invoicing-app/internal/infra/logger"
	"invoicing-app/internal/store"
	"invoicing-app/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *Service
	store  *memstore.Store
	gw     *gatewaytest.Fake
	tenant apptest.Tenant
	inv    *invoices.Invoice
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	gw := gatewaytest.New("whsec")
	rec := audit.NewRecorder(s)
	r := reconcile.New(s, gw, receipts.NewIssuer(), rec, &notifytest.Recorder{}, logger.Discard())
	plan := apptest.SeedPlan(t, s, apptest.Plan("starter", 5000))
	tenant := apptest.SeedTenant(t, s, plan)
	customer := apptest.SeedCustomer(t, s, tenant.ID(), "payer@example.com")

	return &fixture{
		svc:    NewService(s, gw, r, tenancy.NewService(s, rec, logger.Discard()), "https://app.test/payments/callback", logger.Discard()),
		store:  s,
		gw:     gw,
		tenant: tenant,
		inv:    apptest.SeedInvoice(t, s, tenant.ID(), customer.ID, "INV-0001", 16125),
	}
}

func TestCreateInvoiceLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	link, err := f.svc.CreateInvoiceLink(ctx, f.tenant.ID(), &f.tenant.Owner, f.inv.ID)
	require.NoError(t, err)
	assert.Contains(t, link.AuthorizationURL, link.Reference)

	inits := f.gw.Initialized()
	require.Len(t, inits, 1)
	assert.Equal(t, "payer@example.com", inits[0].Email)
	assert.Equal(t, int64(1612500), inits[0].AmountMinor)
	assert.Equal(t, gateway.TypeInvoice, inits[0].Metadata[gateway.MetaType])

	p, err := f.store.GetPaymentByReference(ctx, link.Reference)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentPending, p.Status)
	assert.Equal(t, billing.InvoicePurpose{InvoiceID: f.inv.ID}, p.Purpose())
}

func TestCreateInvoiceLinkForPaidInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.store.GetInvoice(ctx, f.tenant.ID(), f.inv.ID)
	require.NoError(t, err)
	inv.MarkPaid(time.Now())
	require.NoError(t, f.store.SaveInvoice(ctx, inv))

	_, err = f.svc.CreateInvoiceLink(ctx, f.tenant.ID(), nil, f.inv.ID)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Empty(t, f.gw.Initialized())
}

func TestCreateInvoiceLinkGatewayDown(t *testing.T) {
	f := newFixture(t)
	f.gw.InitErr = fmt.Errorf("%w: timeout", gateway.ErrUnreachable)

	_, err := f.svc.CreateInvoiceLink(context.Background(), f.tenant.ID(), nil, f.inv.ID)
	assert.Equal(t, apperr.GatewayUnreachable, apperr.KindOf(err))

	list, err := f.svc.List(context.Background(), f.tenant.ID(), store.Page{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLinkThenVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, err := f.svc.CreateInvoiceLink(ctx, f.tenant.ID(), nil, f.inv.ID)
	require.NoError(t, err)

	f.gw.Settle(gateway.Transaction{Reference: link.Reference, Status: gateway.StatusSuccess, AmountMinor: 1612500, Currency: "NGN", Channel: "bank"})

	res, err := f.svc.VerifyInvoicePayment(ctx, f.tenant.ID(), f.inv.ID, link.Reference)
	require.NoError(t, err)
	assert.Equal(t, reconcile.OutcomeApplied, res.Outcome)
	assert.Equal(t, invoices.PaymentPaid, res.Invoice.PaymentStatus)
	assert.Equal(t, "REC-0001", res.Receipt.ReceiptNumber)

	res, err = f.svc.VerifyCallback(ctx, link.Reference)
	require.NoError(t, err)
	assert.Equal(t, reconcile.OutcomeAlreadyReconciled, res.Outcome)
	assert.Equal(t, 1, f.gw.VerifyCalls(link.Reference))
}
