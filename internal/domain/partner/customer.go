package partner

import (
	"strings"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	ErrInvalidName      = shared.NewDomainError("INVALID_NAME", "Customer first name cannot be empty")
)

// Customer is a buyer an invoice can point at. Invoices hold only the
// reference; a walk-in sale has no customer at all.
type Customer struct {
	shared.TenantAggregateRoot
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, firstName, lastName, phone, email string) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, ErrInvalidName
	}
	if len(firstName) > 100 || len(strings.TrimSpace(lastName)) > 100 {
		return nil, ErrInvalidName.WithMessage("Customer name cannot exceed 100 characters")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FirstName:           firstName,
		LastName:            strings.TrimSpace(lastName),
		Phone:               strings.TrimSpace(phone),
		Email:               strings.TrimSpace(strings.ToLower(email)),
	}, nil
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
