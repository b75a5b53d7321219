package catalog

import (
	"time"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	Code            string          `json:"code" binding:"required,min=1,max=50"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Reference       string          `json:"reference" binding:"max=100"`
	Unit            string          `json:"unit" binding:"max=20"`
	SalePrice       decimal.Decimal `json:"sale_price" binding:"decimal_nonnegative"`
	CostPrice       decimal.Decimal `json:"cost_price" binding:"decimal_nonnegative"`
	TracksInventory bool            `json:"tracks_inventory"`
	QuantityOnHand  *int64          `json:"quantity_on_hand" binding:"omitempty,min=0"`
}

// ListProductsQuery represents product list query parameters
type ListProductsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Reference       string          `json:"reference,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	TracksInventory bool            `json:"tracks_inventory"`
	QuantityOnHand  *int64          `json:"quantity_on_hand"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Reference:       p.Reference,
		Unit:            p.Unit,
		SalePrice:       p.SalePrice,
		CostPrice:       p.CostPrice,
		TracksInventory: p.TracksInventory,
		QuantityOnHand:  p.QuantityOnHand,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}
