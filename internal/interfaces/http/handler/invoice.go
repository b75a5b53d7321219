package handler

import (
	invoicingapp "github.com/facturar/backend/internal/application/invoicing"
	"github.com/facturar/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry invoice creation safely
const IdempotencyKeyHeader = "Idempotency-Key"

const codeInvalidInvoiceID = "INVALID_INVOICE_ID"

// InvoiceHandler serves invoice creation, payments and invoice reads
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
	paymentService *invoicingapp.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService, paymentService *invoicingapp.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// RegisterRoutes mounts the invoice routes on rg
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.Create)
	invoices.GET("", h.List)
	invoices.GET("/:id", h.GetByID)
	invoices.POST("/:id/payments", h.AddPayment)
	invoices.GET("/:id/payments", h.ListPayments)
}

// Create handles POST /invoices. A replayed Idempotency-Key answers 200 with
// the invoice created by the first request.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Replayed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// AddPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	invoiceID, ok := h.pathID(c, "id", codeInvalidInvoiceID)
	if !ok {
		return
	}

	var req invoicingapp.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ErrorWithCode(c, "INVALID_AMOUNT", "Payment amount must be a positive number")
		return
	}

	resp, err := h.paymentService.AddPayment(c.Request.Context(), middleware.GetTenantID(c), invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, ok := h.pathID(c, "id", codeInvalidInvoiceID)
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), middleware.GetTenantID(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var query invoicingapp.ListInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	invoiceID, ok := h.pathID(c, "id", codeInvalidInvoiceID)
	if !ok {
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), middleware.GetTenantID(c), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}
