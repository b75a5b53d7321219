package testutil

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixtures builds valid domain objects filled with fake data. A fixed seed
// gives the same sequence of values on every run.
type Fixtures struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFixtures creates a fixture builder
func NewFixtures(seed uint64) *Fixtures {
	return &Fixtures{faker: gofakeit.New(seed)}
}

// ProductOption tweaks a product before it is built
type ProductOption func(*catalog.NewProductParams)

// WithPrices sets sale and cost prices from decimal strings
func WithPrices(sale, cost string) ProductOption {
	return func(p *catalog.NewProductParams) {
		p.SalePrice = decimal.RequireFromString(sale)
		p.CostPrice = decimal.RequireFromString(cost)
	}
}

// WithStock makes the product track inventory with qty units on hand
func WithStock(qty int64) ProductOption {
	return func(p *catalog.NewProductParams) {
		p.TracksInventory = true
		p.QuantityOnHand = &qty
	}
}

// WithCode overrides the generated product code
func WithCode(code string) ProductOption {
	return func(p *catalog.NewProductParams) {
		p.Code = code
	}
}

// Product builds an untracked product with fake name and prices
func (f *Fixtures) Product(tenantID uuid.UUID, opts ...ProductOption) *catalog.Product {
	f.seq++
	cost := decimal.NewFromFloat(f.faker.Price(1, 500)).Round(2)
	margin := decimal.NewFromInt(int64(f.faker.IntRange(1, 100)))
	params := catalog.NewProductParams{
		Code:      fmt.Sprintf("P-%04d", f.seq),
		Name:      f.faker.ProductName(),
		Unit:      "unit",
		SalePrice: cost.Add(margin),
		CostPrice: cost,
	}
	for _, opt := range opts {
		opt(&params)
	}
	p, err := catalog.NewProduct(tenantID, params)
	if err != nil {
		panic(fmt.Sprintf("invalid product fixture: %v", err))
	}
	return p
}

// Customer builds a customer with fake contact data
func (f *Fixtures) Customer(tenantID uuid.UUID) *partner.Customer {
	c, err := partner.NewCustomer(tenantID, f.faker.FirstName(), f.faker.LastName(), f.faker.Phone(), f.faker.Email())
	if err != nil {
		panic(fmt.Sprintf("invalid customer fixture: %v", err))
	}
	return c
}
