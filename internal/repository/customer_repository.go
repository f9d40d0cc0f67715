package repository

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/normalize"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Repository[domain.Customer]
	GetByEmail(ctx context.Context, email string) (domain.Customer, error)
}

type customerRepository struct {
	*collection[domain.Customer]
}

func NewCustomerRepository(deps Deps) CustomerRepository {
	return &customerRepository{collection: newCollection[domain.Customer](deps, "customer", domain.CollectionCustomers, normalize.Customer)}
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return r.GetByField(ctx, "email", email)
}
