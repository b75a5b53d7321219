package handler

import (
	reportapp "github.com/facturar/backend/internal/application/report"
	"github.com/facturar/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the financial summary
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes mounts the dashboard routes on rg
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/summary", h.Summary)
}

// Summary handles GET /dashboard/summary. Ranges that cannot be parsed
// answer an all-zero summary.
func (h *DashboardHandler) Summary(c *gin.Context) {
	var query reportapp.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), middleware.GetTenantID(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
