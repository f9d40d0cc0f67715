package repository

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/normalize"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Repository[domain.Order]
	GetByOrderNumber(ctx context.Context, orderNumber string) (domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

type orderRepository struct {
	*collection[domain.Order]
}

func NewOrderRepository(deps Deps) OrderRepository {
	return &orderRepository{collection: newCollection[domain.Order](deps, "order", domain.CollectionOrders, normalize.Order)}
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (domain.Order, error) {
	return r.GetByField(ctx, "orderNumber", orderNumber)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.ListWhere(ctx, "customerId", customerID)
}
