package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "facturar"

// LedgerMetrics exposes ledger counters on a private registry.
// It subscribes to ledger events, so counters only move after a commit.
type LedgerMetrics struct {
	registry *prometheus.Registry

	invoicesCreated   *prometheus.CounterVec
	billedAmount      prometheus.Counter
	paymentsApplied   *prometheus.CounterVec
	paymentAmount     prometheus.Counter
	paymentConflicts  prometheus.Counter
	insufficientStock prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewLedgerMetrics creates and registers all ledger collectors
func NewLedgerMetrics() *LedgerMetrics {
	m := &LedgerMetrics{
		registry: prometheus.NewRegistry(),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "invoices_created_total",
			Help:      "Invoices created, by payment terms",
		}, []string{"payment_terms"}),
		billedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "invoice_billed_amount_total",
			Help:      "Sum of invoice totals",
		}),
		paymentsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "payments_applied_total",
			Help:      "Payments applied, by the resulting invoice status",
		}, []string{"status"}),
		paymentAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "payment_amount_total",
			Help:      "Sum of applied payment amounts",
		}),
		paymentConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "payment_conflicts_total",
			Help:      "Optimistic lock conflicts hit while applying payments",
		}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "insufficient_stock_total",
			Help:      "Invoice creations rejected for insufficient stock",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invoicesCreated,
		m.billedAmount,
		m.paymentsApplied,
		m.paymentAmount,
		m.paymentConflicts,
		m.insufficientStock,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handle implements shared.EventHandler
func (m *LedgerMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoicing.InvoiceCreatedEvent:
		m.invoicesCreated.WithLabelValues(string(e.PaymentTerms)).Inc()
		m.billedAmount.Add(e.Total.InexactFloat64())
	case *invoicing.PaymentAppliedEvent:
		m.paymentsApplied.WithLabelValues(string(e.Status)).Inc()
		m.paymentAmount.Add(e.Amount.InexactFloat64())
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{invoicing.EventTypeInvoiceCreated, invoicing.EventTypePaymentApplied}
}

// RecordPaymentConflict counts one lost optimistic lock race
func (m *LedgerMetrics) RecordPaymentConflict() {
	m.paymentConflicts.Inc()
}

// RecordInsufficientStock counts one rejected invoice
func (m *LedgerMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// ObserveHTTP records a finished request. route is the matched route template.
func (m *LedgerMetrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (m *LedgerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
