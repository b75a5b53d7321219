package invoicing

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/facturar/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RetryPolicy bounds the optimistic lock retries of AddPayment
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// Backoff is the base wait; attempt n waits n*Backoff plus up to Backoff of jitter
	Backoff time.Duration
}

// DefaultRetryPolicy returns the policy used when nothing is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, Backoff: 10 * time.Millisecond}
}

// PaymentService applies payments to invoices
type PaymentService struct {
	txScope        TransactionScope
	policy         RetryPolicy
	eventPublisher shared.EventPublisher
	recorder       LedgerRecorder
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txScope TransactionScope, policy RetryPolicy, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &PaymentService{
		txScope: txScope,
		policy:  policy,
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecorder sets the recorder for lock conflicts
func (s *PaymentService) SetRecorder(recorder LedgerRecorder) {
	s.recorder = recorder
}

// AddPayment records a payment and updates the invoice settlement.
// The overpayment check and the version-guarded update run in the same
// transaction; a lost race rolls back and the whole unit is retried.
func (s *PaymentService) AddPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req AddPaymentRequest) (*PaymentAppliedResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "add",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer span.End()

	if err := invoicing.ValidatePaymentAmount(req.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		inv, payment, err := s.applyOnce(ctx, tenantID, invoiceID, req.Amount)
		if err == nil {
			telemetry.SetAttributes(span, telemetry.SpanAttrAttempt, attempt)
			s.logger.Info("Payment applied",
				zap.String("tenant_id", tenantID.String()),
				zap.String("invoice_id", inv.ID.String()),
				zap.String("payment_id", payment.ID.String()),
				zap.String("amount", payment.Amount.StringFixed(2)),
				zap.String("status", inv.Status.String()),
				zap.Int("attempt", attempt),
			)
			publishDomainEvents(ctx, s.eventPublisher, s.logger, inv.GetDomainEvents())
			inv.ClearDomainEvents()
			return &PaymentAppliedResponse{
				InvoiceID: inv.ID,
				PaymentID: payment.ID,
				Amount:    payment.Amount,
				TotalPaid: inv.TotalPaid,
				Pending:   inv.Pending,
				Status:    inv.Status.String(),
			}, nil
		}

		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if s.recorder != nil {
			s.recorder.RecordPaymentConflict()
		}
		if attempt > s.policy.MaxRetries {
			s.logger.Warn("Payment retries exhausted",
				zap.String("invoice_id", invoiceID.String()),
				zap.Int("attempts", attempt),
			)
			telemetry.RecordError(span, err)
			return nil, shared.ErrConcurrencyConflict
		}
		s.logger.Debug("Payment lost optimistic lock, retrying",
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt),
		)
		if err := s.wait(ctx, attempt); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
}

func (s *PaymentService) applyOnce(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal) (*invoicing.Invoice, *invoicing.Payment, error) {
	var (
		inv     *invoicing.Invoice
		payment *invoicing.Payment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.InvoiceRepo().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		p, err := loaded.ApplyPayment(amount)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveSettlement(ctx, loaded); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().AddPayment(ctx, p); err != nil {
			return err
		}
		inv, payment = loaded, p
		return nil
	})
	return inv, payment, err
}

func (s *PaymentService) wait(ctx context.Context, attempt int) error {
	if s.policy.Backoff <= 0 {
		return ctx.Err()
	}
	d := time.Duration(attempt)*s.policy.Backoff + rand.N(s.policy.Backoff)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
