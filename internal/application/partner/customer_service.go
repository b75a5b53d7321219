package partner

import (
	"context"

	"github.com/facturar/backend/internal/domain/partner"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService registers the customers invoices can point at
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, req.FirstName, req.LastName, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns customers matching the query
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, query ListCustomersQuery) (shared.Paginated[CustomerResponse], error) {
	filter := shared.Filter{Page: query.Page, PageSize: query.PageSize, Search: query.Search}.Normalize()
	customers, total, err := s.customerRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	items := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, ToCustomerResponse(&customers[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
