package repository

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/normalize"
)

// InventoryRepository defines the interface for inventory data access
type InventoryRepository interface {
	Repository[domain.InventoryItem]
	GetByProductID(ctx context.Context, productID string) (domain.InventoryItem, error)
}

type inventoryRepository struct {
	*collection[domain.InventoryItem]
}

func NewInventoryRepository(deps Deps) InventoryRepository {
	return &inventoryRepository{collection: newCollection[domain.InventoryItem](deps, "inventory", domain.CollectionInventory, normalize.InventoryItem)}
}

func (r *inventoryRepository) GetByProductID(ctx context.Context, productID string) (domain.InventoryItem, error) {
	return r.GetByField(ctx, "productId", productID)
}
