package invoicing_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	appinvoicing "github.com/facturar/backend/internal/application/invoicing"
	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/report"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/facturar/backend/internal/infrastructure/config"
	"github.com/facturar/backend/internal/infrastructure/persistence"
	"github.com/facturar/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledger struct {
	db       *gorm.DB
	invoices *appinvoicing.InvoiceService
	payments *appinvoicing.PaymentService
	tenantID uuid.UUID
}

func newLedger(t *testing.T) *ledger {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	scope := persistence.NewGormTransactionScope(db.DB)
	return &ledger{
		db: db.DB,
		invoices: appinvoicing.NewInvoiceService(scope,
			persistence.NewGormInvoiceRepository(db.DB),
			persistence.NewGormCustomerRepository(db.DB), nil),
		payments: appinvoicing.NewPaymentService(scope,
			appinvoicing.RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}, nil),
		tenantID: uuid.New(),
	}
}

var ledgerFixtures = testutil.NewFixtures(23)

func (l *ledger) product(t *testing.T, opts ...testutil.ProductOption) *catalog.Product {
	t.Helper()
	p := ledgerFixtures.Product(l.tenantID, opts...)
	require.NoError(t, persistence.NewGormProductRepository(l.db).Create(context.Background(), p))
	return p
}

func (l *ledger) stockOf(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, err := persistence.NewGormProductRepository(l.db).FindByID(context.Background(), l.tenantID, id)
	require.NoError(t, err)
	return p.OnHand()
}

func (l *ledger) invoice(t *testing.T, id uuid.UUID) *invoicing.Invoice {
	t.Helper()
	inv, err := persistence.NewGormInvoiceRepository(l.db).FindWithDetails(context.Background(), l.tenantID, id)
	require.NoError(t, err)
	return inv
}

func (l *ledger) create(t *testing.T, terms string, items ...appinvoicing.CartItemRequest) uuid.UUID {
	t.Helper()
	resp, err := l.invoices.CreateInvoice(context.Background(), l.tenantID, appinvoicing.CreateInvoiceRequest{
		PaymentTerms: terms,
		Items:        items,
	})
	require.NoError(t, err)
	return resp.ID
}

func (l *ledger) pay(id uuid.UUID, amount string) (*appinvoicing.PaymentAppliedResponse, error) {
	return l.payments.AddPayment(context.Background(), l.tenantID, id,
		appinvoicing.AddPaymentRequest{Amount: decimal.RequireFromString(amount)})
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_InvoiceAndPaymentScenario(t *testing.T) {
	l := newLedger(t)
	p1 := l.product(t, testutil.WithPrices("50.00", "30.00"))

	id := l.create(t, "credit", appinvoicing.CartItemRequest{ProductID: p1.ID, Quantity: 2})

	inv := l.invoice(t, id)
	assert.True(t, inv.Total.Equal(money("100.00")))
	assert.True(t, inv.TotalCost.Equal(money("60.00")))
	assert.True(t, inv.TotalProfit.Equal(money("40.00")))
	assert.True(t, inv.TotalPaid.IsZero())
	assert.True(t, inv.Pending.Equal(money("100.00")))
	assert.Equal(t, invoicing.StatusPending, inv.Status)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, p1.Name, inv.Lines[0].ProductName)

	resp, err := l.pay(id, "100.00")
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.True(t, resp.Pending.IsZero())

	_, err = l.pay(id, "0.01")
	assert.ErrorIs(t, err, invoicing.ErrOverpayment)

	inv = l.invoice(t, id)
	require.NoError(t, inv.CheckInvariants())
	assert.Len(t, inv.Payments, 1)
}

func TestLedger_PartialPayment(t *testing.T) {
	l := newLedger(t)
	p := l.product(t, testutil.WithPrices("25.00", "10.00"))
	id := l.create(t, "plazo", appinvoicing.CartItemRequest{ProductID: p.ID, Quantity: 4})

	resp, err := l.pay(id, "40.00")

	require.NoError(t, err)
	assert.Equal(t, "partial", resp.Status)
	assert.True(t, resp.Pending.Equal(money("60.00")))
	require.NoError(t, l.invoice(t, id).CheckInvariants())
}

func TestLedger_SnapshotSurvivesProductChange(t *testing.T) {
	l := newLedger(t)
	p := l.product(t, testutil.WithPrices("9.99", "5.00"))
	id := l.create(t, "cash", appinvoicing.CartItemRequest{ProductID: p.ID, Quantity: 1})

	require.NoError(t, l.db.Table("products").Where("id = ?", p.ID).
		Updates(map[string]any{"name": "Renamed", "sale_price": 20}).Error)

	line := l.invoice(t, id).Lines[0]
	assert.Equal(t, p.Name, line.ProductName)
	assert.True(t, line.UnitSalePrice.Equal(money("9.99")))
}

func TestLedger_InsufficientStockLeavesNoTrace(t *testing.T) {
	l := newLedger(t)
	plenty := l.product(t, testutil.WithStock(10))
	scarce := l.product(t, testutil.WithStock(1))

	_, err := l.invoices.CreateInvoice(context.Background(), l.tenantID, appinvoicing.CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items: []appinvoicing.CartItemRequest{
			{ProductID: plenty.ID, Quantity: 4},
			{ProductID: scarce.ID, Quantity: 2},
		},
	})

	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, int64(10), l.stockOf(t, plenty.ID))
	assert.Equal(t, int64(1), l.stockOf(t, scarce.ID))
	var count int64
	require.NoError(t, l.db.Table("invoices").Count(&count).Error)
	assert.Zero(t, count)
}

func TestLedger_OutOfRangeCartsLeaveNoTrace(t *testing.T) {
	l := newLedger(t)
	free := l.product(t, testutil.WithPrices("0.00", "0.00"), testutil.WithStock(5))
	cheap := l.product(t, testutil.WithPrices("0.07", "0.03"), testutil.WithStock(5))

	_, err := l.invoices.CreateInvoice(context.Background(), l.tenantID, appinvoicing.CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items: []appinvoicing.CartItemRequest{
			{ProductID: free.ID, Quantity: math.MaxInt64},
			{ProductID: free.ID, Quantity: math.MaxInt64},
		},
	})
	require.ErrorIs(t, err, invoicing.ErrInvalidQuantity)

	_, err = l.invoices.CreateInvoice(context.Background(), l.tenantID, appinvoicing.CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items:        []appinvoicing.CartItemRequest{{ProductID: cheap.ID, Quantity: 123456789012345678}},
	})
	require.ErrorIs(t, err, invoicing.ErrInvalidTotal)

	assert.Equal(t, int64(5), l.stockOf(t, free.ID))
	assert.Equal(t, int64(5), l.stockOf(t, cheap.ID))
	var count int64
	require.NoError(t, l.db.Table("invoices").Count(&count).Error)
	assert.Zero(t, count)
}

func TestLedger_ConcurrentSalesNeverOversell(t *testing.T) {
	l := newLedger(t)
	p := l.product(t, testutil.WithStock(5))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.invoices.CreateInvoice(context.Background(), l.tenantID, appinvoicing.CreateInvoiceRequest{
				PaymentTerms: "cash",
				Items:        []appinvoicing.CartItemRequest{{ProductID: p.ID, Quantity: 3}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, shared.ErrInsufficientStock):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(2), l.stockOf(t, p.ID))
}

func TestLedger_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	l := newLedger(t)
	p := l.product(t, testutil.WithPrices("100.00", "70.00"))
	id := l.create(t, "credit", appinvoicing.CartItemRequest{ProductID: p.ID, Quantity: 1})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		success   int
		overpayed int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.pay(id, "60.00")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, invoicing.ErrOverpayment):
				overpayed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, overpayed)
	inv := l.invoice(t, id)
	assert.True(t, inv.Pending.Equal(money("40.00")))
	assert.Equal(t, invoicing.StatusPartial, inv.Status)
	require.NoError(t, inv.CheckInvariants())
}

func TestLedger_DashboardOverScenarioInvoices(t *testing.T) {
	l := newLedger(t)
	p := l.product(t, testutil.WithPrices("50.00", "30.00"))
	from := time.Now().UTC().Add(-time.Hour)

	first := l.create(t, "credit", appinvoicing.CartItemRequest{ProductID: p.ID, Quantity: 2})
	second := l.create(t, "credit", appinvoicing.CartItemRequest{ProductID: p.ID, Quantity: 2})
	_, err := l.pay(first, "100.00")
	require.NoError(t, err)
	_, err = l.pay(second, "40.00")
	require.NoError(t, err)

	summary, err := persistence.NewGormDashboardRepository(l.db).Summarize(context.Background(), report.DashboardFilter{
		TenantID: l.tenantID,
		From:     from,
		To:       time.Now().UTC().Add(time.Hour),
	})

	require.NoError(t, err)
	assert.True(t, summary.Billed.Equal(money("200.00")), summary.Billed.String())
	assert.True(t, summary.Collected.Equal(money("140.00")), summary.Collected.String())
	assert.True(t, summary.Pending.Equal(money("60.00")), summary.Pending.String())
	assert.Equal(t, int64(2), summary.InvoiceCount)
}
