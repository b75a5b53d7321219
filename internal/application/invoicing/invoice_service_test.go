package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/partner"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/facturar/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invoiceServiceSetup struct {
	scope    *fakeTransactionScope
	reads    *MockInvoiceRepository
	readCust *MockCustomerRepository
	events   *MockEventPublisher
	recorder *countingRecorder
	service  *InvoiceService
}

func newInvoiceServiceSetup() *invoiceServiceSetup {
	s := &invoiceServiceSetup{
		scope:    newFakeTransactionScope(),
		reads:    new(MockInvoiceRepository),
		readCust: new(MockCustomerRepository),
		events:   &MockEventPublisher{},
		recorder: &countingRecorder{},
	}
	s.service = NewInvoiceService(s.scope, s.reads, s.readCust, zap.NewNop())
	s.service.SetEventPublisher(s.events)
	s.service.SetRecorder(s.recorder)
	return s
}

func TestCreateInvoice_BuildsInvoiceFromCart(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	p1 := fixtures.Product(tenantID, testutil.WithPrices("50.00", "30.00"))

	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{p1.ID}).
		Return([]catalog.Product{*p1}, nil)
	var stored *invoicing.Invoice
	s.scope.invoices.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*invoicing.Invoice) }).
		Return(nil)

	resp, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items:        []CartItemRequest{{ProductID: p1.ID, Quantity: 2}},
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, stored.ID, resp.ID)
	assert.False(t, resp.Replayed)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, stored.TotalCost.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, stored.TotalProfit.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, stored.TotalPaid.IsZero())
	assert.True(t, stored.Pending.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, invoicing.StatusPending, stored.Status)
	assert.Nil(t, stored.CustomerID)
	require.NoError(t, stored.CheckInvariants())

	events := s.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, invoicing.EventTypeInvoiceCreated, events[0].EventType())
	assert.Empty(t, stored.GetDomainEvents())
	s.scope.stock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvoice_KeepsCartOrderAndDecrementsTrackedStock(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	tracked := fixtures.Product(tenantID, testutil.WithStock(10))
	untracked := fixtures.Product(tenantID)
	customer := fixtures.Customer(tenantID)

	s.scope.customers.On("Exists", mock.Anything, tenantID, customer.ID).Return(true, nil)
	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{tracked.ID, untracked.ID}).
		Return([]catalog.Product{*untracked, *tracked}, nil)
	s.scope.stock.On("DecrementStock", mock.Anything, tenantID, tracked.ID, int64(5)).Return(true, nil).Once()
	var stored *invoicing.Invoice
	s.scope.invoices.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*invoicing.Invoice) }).
		Return(nil)

	_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		CustomerID:   &customer.ID,
		PaymentTerms: "credito",
		Items: []CartItemRequest{
			{ProductID: tracked.ID, Quantity: 2},
			{ProductID: untracked.ID, Quantity: 1},
			{ProductID: tracked.ID, Quantity: 3},
		},
	})

	require.NoError(t, err)
	s.scope.stock.AssertExpectations(t)
	require.Len(t, stored.Lines, 3)
	assert.Equal(t, invoicing.PaymentTermsCredit, stored.PaymentTerms)
	assert.Equal(t, customer.ID, *stored.CustomerID)
	for i, line := range stored.Lines {
		assert.Equal(t, i+1, line.Position)
	}
	assert.Equal(t, tracked.Code, stored.Lines[0].ProductCode)
	assert.Equal(t, untracked.Code, stored.Lines[1].ProductCode)
	assert.Equal(t, int64(3), stored.Lines[2].Quantity)
}

func TestCreateInvoice_RejectsBadInputBeforeTransaction(t *testing.T) {
	tests := []struct {
		name string
		req  CreateInvoiceRequest
		want error
	}{
		{
			name: "empty cart",
			req:  CreateInvoiceRequest{PaymentTerms: "cash"},
			want: invoicing.ErrEmptyCart,
		},
		{
			name: "zero quantity",
			req:  CreateInvoiceRequest{PaymentTerms: "cash", Items: []CartItemRequest{{ProductID: uuid.New(), Quantity: 0}}},
			want: invoicing.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			req:  CreateInvoiceRequest{PaymentTerms: "cash", Items: []CartItemRequest{{ProductID: uuid.New(), Quantity: -2}}},
			want: invoicing.ErrInvalidQuantity,
		},
		{
			name: "unknown terms",
			req:  CreateInvoiceRequest{PaymentTerms: "barter", Items: []CartItemRequest{{ProductID: uuid.New(), Quantity: 1}}},
			want: invoicing.ErrInvalidPaymentTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newInvoiceServiceSetup()
			_, err := s.service.CreateInvoice(context.Background(), testutil.TestTenantID(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, s.scope.Calls())
			assert.Empty(t, s.events.Events())
		})
	}
}

func TestCreateInvoice_UnknownCustomer(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	customerID := uuid.New()
	s.scope.customers.On("Exists", mock.Anything, tenantID, customerID).Return(false, nil)

	_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		CustomerID:   &customerID,
		PaymentTerms: "cash",
		Items:        []CartItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.ErrorIs(t, err, partner.ErrCustomerNotFound)
	s.scope.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoice_UnknownProduct(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	known := fixtures.Product(tenantID)
	missing := uuid.New()
	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{known.ID, missing}).
		Return([]catalog.Product{*known}, nil)

	_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items: []CartItemRequest{
			{ProductID: known.ID, Quantity: 1},
			{ProductID: missing, Quantity: 1},
		},
	})

	require.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.Contains(t, err.Error(), missing.String())
	s.scope.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoice_InsufficientStockIsRecorded(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	p := fixtures.Product(tenantID, testutil.WithStock(2))
	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{p.ID}).
		Return([]catalog.Product{*p}, nil)

	_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		PaymentTerms: "cash",
		Items:        []CartItemRequest{{ProductID: p.ID, Quantity: 3}},
	})

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 1, s.recorder.insufficientStock)
	assert.Empty(t, s.events.Events())
	s.scope.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoice_StorageErrorSurfaces(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	p := fixtures.Product(tenantID)
	dbErr := errors.New("disk full")
	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{p.ID}).
		Return([]catalog.Product{*p}, nil)
	s.scope.invoices.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
		PaymentTerms: "installment",
		Items:        []CartItemRequest{{ProductID: p.ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, s.events.Events())
}

func TestCreateInvoice_IdenticalCartsProduceDistinctInvoices(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	p := fixtures.Product(tenantID)
	s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{p.ID}).
		Return([]catalog.Product{*p}, nil)
	s.scope.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := CreateInvoiceRequest{PaymentTerms: "cash", Items: []CartItemRequest{{ProductID: p.ID, Quantity: 1}}}
	first, err := s.service.CreateInvoice(context.Background(), tenantID, req)
	require.NoError(t, err)
	second, err := s.service.CreateInvoice(context.Background(), tenantID, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	s.scope.invoices.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateInvoice_Idempotency(t *testing.T) {
	tenantID := testutil.TestTenantID()
	key := idempotencyKey(tenantID, "checkout-1")

	t.Run("first request completes the key", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		p := fixtures.Product(tenantID)
		s.scope.products.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{p.ID}).
			Return([]catalog.Product{*p}, nil)
		s.scope.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

		store.On("Lookup", mock.Anything, key).Return("", false, nil).Once()
		store.On("Reserve", mock.Anything, key, DefaultIdempotencyTTL).Return(true, nil).Once()
		store.On("Complete", mock.Anything, key, mock.AnythingOfType("string"), DefaultIdempotencyTTL).Return(nil).Once()

		req := CreateInvoiceRequest{
			PaymentTerms:   "cash",
			Items:          []CartItemRequest{{ProductID: p.ID, Quantity: 1}},
			IdempotencyKey: "checkout-1",
		}
		resp, err := s.service.CreateInvoice(context.Background(), tenantID, req)

		require.NoError(t, err)
		store.AssertExpectations(t)
		store.AssertCalled(t, "Complete", mock.Anything, key, resp.ID.String()+" "+requestFingerprint(req), DefaultIdempotencyTTL)
	})

	t.Run("replay with the same cart returns the stored id", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		existing := uuid.New()
		req := CreateInvoiceRequest{
			PaymentTerms:   "credito",
			Items:          []CartItemRequest{{ProductID: uuid.New(), Quantity: 2}},
			IdempotencyKey: "checkout-1",
		}
		store.On("Lookup", mock.Anything, key).Return(existing.String()+" "+requestFingerprint(req), true, nil).Once()

		req.PaymentTerms = "credit"
		resp, err := s.service.CreateInvoice(context.Background(), tenantID, req)

		require.NoError(t, err)
		assert.Equal(t, existing, resp.ID)
		assert.True(t, resp.Replayed)
		assert.Zero(t, s.scope.Calls())
	})

	t.Run("replay with a different cart is rejected", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		productID := uuid.New()
		first := CreateInvoiceRequest{
			PaymentTerms:   "cash",
			Items:          []CartItemRequest{{ProductID: productID, Quantity: 1}},
			IdempotencyKey: "checkout-1",
		}
		store.On("Lookup", mock.Anything, key).Return(uuid.NewString()+" "+requestFingerprint(first), true, nil).Once()

		second := first
		second.Items = []CartItemRequest{{ProductID: productID, Quantity: 5}}
		resp, err := s.service.CreateInvoice(context.Background(), tenantID, second)

		assert.ErrorIs(t, err, shared.ErrIdempotencyKeyReused)
		assert.Nil(t, resp)
		assert.Zero(t, s.scope.Calls())
		store.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replay returns the stored id", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		existing := uuid.New()
		store.On("Lookup", mock.Anything, key).Return(existing.String(), true, nil).Once()

		resp, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
			PaymentTerms:   "cash",
			Items:          []CartItemRequest{{ProductID: uuid.New(), Quantity: 1}},
			IdempotencyKey: "checkout-1",
		})

		require.NoError(t, err)
		assert.Equal(t, existing, resp.ID)
		assert.True(t, resp.Replayed)
		assert.Zero(t, s.scope.Calls())
	})

	t.Run("concurrent replay is in progress", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		store.On("Lookup", mock.Anything, key).Return("", false, nil).Twice()
		store.On("Reserve", mock.Anything, key, DefaultIdempotencyTTL).Return(false, nil).Once()

		_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
			PaymentTerms:   "cash",
			Items:          []CartItemRequest{{ProductID: uuid.New(), Quantity: 1}},
			IdempotencyKey: "checkout-1",
		})

		assert.ErrorIs(t, err, shared.ErrIdempotencyInProgress)
		assert.Zero(t, s.scope.Calls())
		store.AssertExpectations(t)
	})

	t.Run("failure releases the key", func(t *testing.T) {
		s := newInvoiceServiceSetup()
		store := new(MockIdempotencyStore)
		s.service.SetIdempotencyStore(store, 0)
		store.On("Lookup", mock.Anything, key).Return("", false, nil).Once()
		store.On("Reserve", mock.Anything, key, DefaultIdempotencyTTL).Return(true, nil).Once()
		store.On("Release", mock.Anything, key).Return(nil).Once()

		_, err := s.service.CreateInvoice(context.Background(), tenantID, CreateInvoiceRequest{
			PaymentTerms:   "cash",
			IdempotencyKey: "checkout-1",
		})

		assert.ErrorIs(t, err, invoicing.ErrEmptyCart)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("keys are scoped per tenant", func(t *testing.T) {
		assert.NotEqual(t, idempotencyKey(uuid.New(), "k"), idempotencyKey(uuid.New(), "k"))
	})

	t.Run("fingerprint follows the cart", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		customer := uuid.New()
		base := CreateInvoiceRequest{PaymentTerms: "plazo", Items: []CartItemRequest{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 2}}}

		same := base
		same.PaymentTerms = "installment"
		same.IdempotencyKey = "ignored"
		assert.Equal(t, requestFingerprint(base), requestFingerprint(same))

		reordered := base
		reordered.Items = []CartItemRequest{{ProductID: b, Quantity: 2}, {ProductID: a, Quantity: 1}}
		withCustomer := base
		withCustomer.CustomerID = &customer
		otherTerms := base
		otherTerms.PaymentTerms = "cash"
		for _, other := range []CreateInvoiceRequest{reordered, withCustomer, otherTerms} {
			assert.NotEqual(t, requestFingerprint(base), requestFingerprint(other))
		}
	})
}

func TestInvoiceService_GetByID(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	customer := fixtures.Customer(tenantID)
	p := fixtures.Product(tenantID, testutil.WithPrices("10.00", "4.00"))
	inv, err := invoicing.NewInvoice(tenantID, &customer.ID, invoicing.PaymentTermsCredit, []invoicing.LineItem{{
		Product:  invoicing.ProductSnapshot{ProductID: p.ID, Code: p.Code, Name: p.Name, SalePrice: p.SalePrice, CostPrice: p.CostPrice},
		Quantity: 3,
	}})
	require.NoError(t, err)
	_, err = inv.ApplyPayment(decimal.RequireFromString("12.50"))
	require.NoError(t, err)

	s.reads.On("FindWithDetails", mock.Anything, tenantID, inv.ID).Return(inv, nil)
	s.readCust.On("FindByID", mock.Anything, tenantID, customer.ID).Return(customer, nil)

	resp, err := s.service.GetByID(context.Background(), tenantID, inv.ID)

	require.NoError(t, err)
	assert.Equal(t, "partial", resp.Status)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, customer.FullName(), resp.Customer.FullName)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, p.Code, resp.Lines[0].ProductCode)
	require.Len(t, resp.Payments, 1)
	assert.True(t, resp.Pending.Equal(decimal.RequireFromString("17.50")))
}

func TestInvoiceService_GetByID_NotFound(t *testing.T) {
	s := newInvoiceServiceSetup()
	id := uuid.New()
	s.reads.On("FindWithDetails", mock.Anything, mock.Anything, id).Return(nil, invoicing.ErrInvoiceNotFound)

	_, err := s.service.GetByID(context.Background(), testutil.TestTenantID(), id)

	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	customerID := uuid.New()

	s.reads.On("FindAll", mock.Anything, tenantID, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.Page == 2 && f.PageSize == 5 &&
			f.PaymentTerms == invoicing.PaymentTermsInstallment &&
			f.Status == invoicing.StatusPartial &&
			f.CustomerID != nil && *f.CustomerID == customerID &&
			f.OutstandingOnly
	})).Return([]invoicing.Invoice{}, int64(11), nil)

	page, err := s.service.List(context.Background(), tenantID, ListInvoicesQuery{
		Page:         2,
		PageSize:     5,
		Status:       "partial",
		PaymentTerms: "plazo",
		CustomerID:   customerID.String(),
		Outstanding:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.NotNil(t, page.Items)
}

func TestInvoiceService_ListPayments(t *testing.T) {
	s := newInvoiceServiceSetup()
	tenantID := testutil.TestTenantID()
	invoiceID := uuid.New()
	payments := []invoicing.Payment{
		{ID: uuid.New(), InvoiceID: invoiceID, Amount: decimal.NewFromInt(20)},
		{ID: uuid.New(), InvoiceID: invoiceID, Amount: decimal.NewFromInt(10)},
	}
	s.reads.On("FindByID", mock.Anything, tenantID, invoiceID).Return(&invoicing.Invoice{}, nil)
	s.reads.On("ListPayments", mock.Anything, tenantID, invoiceID).Return(payments, nil)

	resp, err := s.service.ListPayments(context.Background(), tenantID, invoiceID)

	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, payments[0].ID, resp[0].ID)
}

func TestInvoiceService_ListPayments_UnknownInvoice(t *testing.T) {
	s := newInvoiceServiceSetup()
	invoiceID := uuid.New()
	s.reads.On("FindByID", mock.Anything, mock.Anything, invoiceID).Return(nil, invoicing.ErrInvoiceNotFound)

	_, err := s.service.ListPayments(context.Background(), testutil.TestTenantID(), invoiceID)

	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
	s.reads.AssertNotCalled(t, "ListPayments", mock.Anything, mock.Anything, mock.Anything)
}
