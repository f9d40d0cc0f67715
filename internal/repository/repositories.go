package repository

import (
	"storefront/internal/domain"
)

// Repositories bundles one repository per entity kind
type Repositories struct {
	Products  ProductRepository
	Posts     PostRepository
	Customers CustomerRepository
	Inventory InventoryRepository
	Orders    OrderRepository
}

// New creates every repository over the same backends
func New(deps Deps) *Repositories {
	return &Repositories{
		Products:  NewProductRepository(deps),
		Posts:     NewPostRepository(deps),
		Customers: NewCustomerRepository(deps),
		Inventory: NewInventoryRepository(deps),
		Orders:    NewOrderRepository(deps),
	}
}

// Backends reports the current backend of every repository by collection
func (r *Repositories) Backends() map[string]Backend {
	return map[string]Backend{
		domain.CollectionProducts:  r.Products.Backend(),
		domain.CollectionPosts:     r.Posts.Backend(),
		domain.CollectionCustomers: r.Customers.Backend(),
		domain.CollectionInventory: r.Inventory.Backend(),
		domain.CollectionOrders:    r.Orders.Backend(),
	}
}
