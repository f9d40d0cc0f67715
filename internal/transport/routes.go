package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRoutes mounts every collection under /api
func RegisterRoutes(r chi.Router, svcs *service.Services, logger *zap.Logger, write ...func(http.Handler) http.Handler) {
	NewCollectionHandler[domain.Product](svcs.Products, []string{"id", "slug"}, []string{"category", "status"}, logger).RegisterRoutes(r, write...)
	NewCollectionHandler[domain.BlogPost](svcs.Posts, []string{"id", "slug"}, []string{"category", "author"}, logger).RegisterRoutes(r, write...)
	NewCollectionHandler[domain.Customer](svcs.Customers, []string{"id", "email"}, []string{"status"}, logger).RegisterRoutes(r, write...)
	NewCollectionHandler[domain.InventoryItem](svcs.Inventory, []string{"id", "productId"}, []string{"status"}, logger).RegisterRoutes(r, write...)
	NewCollectionHandler[domain.Order](svcs.Orders, []string{"id", "orderNumber"}, []string{"customerId", "status"}, logger).RegisterRoutes(r, write...)
}
