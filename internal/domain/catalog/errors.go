package catalog

import "github.com/facturar/backend/internal/domain/shared"

var (
	ErrProductNotFound   = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrDuplicateCode     = shared.NewDomainError("DUPLICATE_CODE", "A product with this code already exists")
	ErrInvalidCode       = shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	ErrInvalidName       = shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	ErrInvalidPrice      = shared.NewDomainError("INVALID_PRICE", "Invalid product price")
	ErrInvalidStockLevel = shared.NewDomainError("INVALID_STOCK_LEVEL", "Quantity on hand cannot be negative")
	ErrInvalidQuantity   = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
)
