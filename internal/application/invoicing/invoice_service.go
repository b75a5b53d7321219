package invoicing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/partner"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/facturar/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a request key is remembered when no TTL is configured
const DefaultIdempotencyTTL = 24 * time.Hour

// LedgerRecorder receives ledger outcomes that do not produce domain events
type LedgerRecorder interface {
	RecordPaymentConflict()
	RecordInsufficientStock()
}

// InvoiceService creates invoices and serves invoice read models
type InvoiceService struct {
	txScope        TransactionScope
	invoiceRepo    invoicing.InvoiceRepository
	customerRepo   partner.CustomerRepository
	adjuster       *InventoryAdjuster
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	eventPublisher shared.EventPublisher
	recorder       LedgerRecorder
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	txScope TransactionScope,
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		txScope:        txScope,
		invoiceRepo:    invoiceRepo,
		customerRepo:   customerRepo,
		adjuster:       NewInventoryAdjuster(),
		idempotencyTTL: DefaultIdempotencyTTL,
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling
func (s *InvoiceService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetRecorder sets the recorder for stock rejections
func (s *InvoiceService) SetRecorder(recorder LedgerRecorder) {
	s.recorder = recorder
}

// CreateInvoice turns a cart into an invoice. Stock decrements, the invoice
// header and its lines are written in one transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceCreatedResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentTerms, req.PaymentTerms,
		telemetry.SpanAttrLineCount, len(req.Items),
	)
	defer span.End()

	var (
		resp *InvoiceCreatedResponse
		err  error
	)
	if req.IdempotencyKey != "" && s.idempotency != nil {
		resp, err = s.createIdempotent(ctx, tenantID, req)
	} else {
		resp, err = s.create(ctx, tenantID, req)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceID, resp.ID.String())
	return resp, nil
}

func (s *InvoiceService) createIdempotent(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceCreatedResponse, error) {
	key := idempotencyKey(tenantID, req.IdempotencyKey)
	fingerprint := requestFingerprint(req)

	if resp, ok, err := s.replay(ctx, key, fingerprint); err != nil || ok {
		return resp, err
	}

	reserved, err := s.idempotency.Reserve(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !reserved {
		// the first request may have completed between Lookup and Reserve
		if resp, ok, err := s.replay(ctx, key, fingerprint); err != nil || ok {
			return resp, err
		}
		return nil, shared.ErrIdempotencyInProgress
	}

	resp, err := s.create(ctx, tenantID, req)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			s.logger.Warn("Failed to release idempotency key",
				zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}

	if err := s.idempotency.Complete(ctx, key, resp.ID.String()+" "+fingerprint, s.idempotencyTTL); err != nil {
		s.logger.Error("Failed to record idempotency result",
			zap.String("key", key),
			zap.String("invoice_id", resp.ID.String()),
			zap.Error(err),
		)
	}
	return resp, nil
}

// replay returns the invoice stored under key. A stored result is
// "<invoice id> <request fingerprint>"; a different fingerprint means the key
// is being reused for another cart.
func (s *InvoiceService) replay(ctx context.Context, key, fingerprint string) (*InvoiceCreatedResponse, bool, error) {
	result, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	rawID, stored, hasFingerprint := strings.Cut(result, " ")
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, false, fmt.Errorf("stored idempotency result %q: %w", result, err)
	}
	if hasFingerprint && stored != fingerprint {
		s.logger.Warn("Idempotency key reused with a different cart",
			zap.String("key", key), zap.String("invoice_id", id.String()))
		return nil, false, shared.ErrIdempotencyKeyReused
	}
	s.logger.Info("Replayed invoice creation", zap.String("invoice_id", id.String()))
	return &InvoiceCreatedResponse{ID: id, Replayed: true}, true, nil
}

func idempotencyKey(tenantID uuid.UUID, key string) string {
	return "idempotency:invoice:" + tenantID.String() + ":" + key
}

// requestFingerprint hashes what decides the invoice content: customer,
// payment terms and the cart in order.
func requestFingerprint(req CreateInvoiceRequest) string {
	terms := strings.ToLower(strings.TrimSpace(req.PaymentTerms))
	if parsed, err := invoicing.ParsePaymentTerms(req.PaymentTerms); err == nil {
		terms = string(parsed)
	}

	h := sha256.New()
	if req.CustomerID != nil {
		h.Write([]byte(req.CustomerID.String()))
	}
	fmt.Fprintf(h, "|%s|", terms)
	for _, item := range req.Items {
		fmt.Fprintf(h, "%s*%d;", item.ProductID, item.Quantity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *InvoiceService) create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceCreatedResponse, error) {
	if len(req.Items) == 0 {
		return nil, invoicing.ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, invoicing.ErrInvalidQuantity
		}
	}
	terms, err := invoicing.ParsePaymentTerms(req.PaymentTerms)
	if err != nil {
		return nil, err
	}

	var inv *invoicing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.CustomerID != nil {
			exists, err := repos.CustomerRepo().Exists(ctx, tenantID, *req.CustomerID)
			if err != nil {
				return fmt.Errorf("check customer: %w", err)
			}
			if !exists {
				return partner.ErrCustomerNotFound
			}
		}

		products, err := loadCartProducts(ctx, repos.ProductRepo(), tenantID, req.Items)
		if err != nil {
			return err
		}

		demands := make([]catalog.StockDemand, 0, len(req.Items))
		items := make([]invoicing.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			p := products[item.ProductID]
			demands = append(demands, catalog.StockDemand{ProductID: p.ID, Quantity: item.Quantity})
			items = append(items, invoicing.LineItem{
				Product: invoicing.ProductSnapshot{
					ProductID: p.ID,
					Code:      p.Code,
					Name:      p.Name,
					SalePrice: p.SalePrice,
					CostPrice: p.CostPrice,
				},
				Quantity: item.Quantity,
			})
		}

		built, err := invoicing.NewInvoice(tenantID, req.CustomerID, terms, items)
		if err != nil {
			return err
		}
		if err := s.adjuster.Adjust(ctx, repos.StockRepo(), tenantID, products, demands); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Create(ctx, built); err != nil {
			return err
		}
		inv = built
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			if s.recorder != nil {
				s.recorder.RecordInsufficientStock()
			}
			s.logger.Info("Invoice rejected", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("payment_terms", string(inv.PaymentTerms)),
		zap.String("total", inv.Total.StringFixed(2)),
		zap.Int("lines", len(inv.Lines)),
	)
	publishDomainEvents(ctx, s.eventPublisher, s.logger, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	return &InvoiceCreatedResponse{ID: inv.ID}, nil
}

// loadCartProducts reads every distinct product of the cart. Any id that is
// missing for the tenant fails the whole cart.
func loadCartProducts(ctx context.Context, repo catalog.ProductRepository, tenantID uuid.UUID, items []CartItemRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	found, err := repo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, catalog.ErrProductNotFound.WithMessage(fmt.Sprintf("Product %s not found", id))
		}
	}
	return products, nil
}

// GetByID returns an invoice with customer summary, lines and payments
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindWithDetails(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var customer *partner.Customer
	if inv.CustomerID != nil {
		customer, err = s.customerRepo.FindByID(ctx, tenantID, *inv.CustomerID)
		if err != nil && !errors.Is(err, partner.ErrCustomerNotFound) {
			return nil, err
		}
	}

	resp := ToInvoiceResponse(inv, customer)
	return &resp, nil
}

// List returns invoices newest first
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, query ListInvoicesQuery) (shared.Paginated[InvoiceListItemResponse], error) {
	filter := query.ToFilter()
	invoices, total, err := s.invoiceRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[InvoiceListItemResponse]{}, err
	}
	return shared.NewPaginated(ToInvoiceListItemResponses(invoices), total, filter.Page, filter.PageSize), nil
}

// ListPayments returns the payment history of an invoice, newest first
func (s *InvoiceService) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.invoiceRepo.ListPayments(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
