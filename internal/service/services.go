package service

import (
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/normalize"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Services bundles one collection service per entity kind
type Services struct {
	Products  *Collection[domain.Product]
	Posts     *Collection[domain.BlogPost]
	Customers *Collection[domain.Customer]
	Inventory *Collection[domain.InventoryItem]
	Orders    *Collection[domain.Order]
}

func New(repos *repository.Repositories, publisher events.Publisher, logger *zap.Logger) *Services {
	return &Services{
		Products:  NewCollection[domain.Product](domain.CollectionProducts, repos.Products, normalize.Product, publisher, logger),
		Posts:     NewCollection[domain.BlogPost](domain.CollectionPosts, repos.Posts, normalize.Post, publisher, logger),
		Customers: NewCollection[domain.Customer](domain.CollectionCustomers, repos.Customers, normalize.Customer, publisher, logger),
		Inventory: NewCollection[domain.InventoryItem](domain.CollectionInventory, repos.Inventory, normalize.InventoryItem, publisher, logger),
		Orders:    NewCollection[domain.Order](domain.CollectionOrders, repos.Orders, normalize.Order, publisher, logger),
	}
}
