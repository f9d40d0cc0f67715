package normalize

import (
	"storefront/internal/domain"
)

// InventoryItem normalizes a raw inventory record. An unrecognized status
// is derived from the stock position instead of taking a fixed default.
func InventoryItem(raw domain.Record) (domain.InventoryItem, Report) {
	f := newFields("inventory", raw)

	item := domain.InventoryItem{
		ProductID:      f.str("productId"),
		SKU:            f.str("sku"),
		Name:           f.str("name"),
		StockOnHand:    f.integer("stockOnHand"),
		StockAllocated: f.integer("stockAllocated"),
		Incoming:       f.integer("incoming"),
		ReorderPoint:   f.integer("reorderPoint"),
		Location:       f.str("location"),
		UpdatedAt:      f.str("updatedAt"),
	}
	status, ok := lookupEnum(f, "status", domain.InventoryStatuses)
	if !ok {
		f.mark("status")
		status = StockStatus(item)
	}
	item.Status = status
	item.ID = f.strOr("id", fallbackID(item.ProductID, item.SKU))

	f.report.ID = item.ID
	return item, *f.report
}

// StockStatus derives a status from available stock and the reorder point
func StockStatus(item domain.InventoryItem) domain.InventoryStatus {
	available := item.Available()
	switch {
	case available <= 0:
		return domain.InventoryOutOfStock
	case available <= item.ReorderPoint:
		return domain.InventoryLowStock
	default:
		return domain.InventoryInStock
	}
}
