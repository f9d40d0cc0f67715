package repository

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/normalize"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Repository[domain.Product]
	GetBySlug(ctx context.Context, slug string) (domain.Product, error)
}

type productRepository struct {
	*collection[domain.Product]
}

// NewProductRepository creates a product repository. Products are the only
// kind whose removed records are deleted from the remote table on SetAll.
func NewProductRepository(deps Deps) ProductRepository {
	c := newCollection[domain.Product](deps, "product", domain.CollectionProducts, normalize.Product)
	c.pruneRemoved = true
	return &productRepository{collection: c}
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	return r.GetByField(ctx, "slug", slug)
}
