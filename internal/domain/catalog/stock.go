package catalog

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// StockDemand is the total quantity of one product requested by a sale
type StockDemand struct {
	ProductID uuid.UUID
	Quantity  int64
}

// AggregateDemand merges demands for the same product and returns them in
// ascending product id order. Applying decrements in a fixed order keeps two
// concurrent sales from locking the same rows in opposite orders.
// Every quantity must be positive and the total per product must fit in
// an int64.
func AggregateDemand(demands []StockDemand) ([]StockDemand, error) {
	totals := make(map[uuid.UUID]int64, len(demands))
	for _, d := range demands {
		if d.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if d.Quantity > math.MaxInt64-totals[d.ProductID] {
			return nil, ErrInvalidQuantity.WithMessage(
				fmt.Sprintf("Total quantity of product %s is too large", d.ProductID))
		}
		totals[d.ProductID] += d.Quantity
	}

	merged := make([]StockDemand, 0, len(totals))
	for id, qty := range totals {
		merged = append(merged, StockDemand{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].ProductID[:], merged[j].ProductID[:]) < 0
	})
	return merged, nil
}
