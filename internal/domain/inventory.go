package domain

// InventoryStatus summarizes the stock position of an item
type InventoryStatus string

const (
	InventoryInStock      InventoryStatus = "in-stock"
	InventoryLowStock     InventoryStatus = "low-stock"
	InventoryOutOfStock   InventoryStatus = "out-of-stock"
	InventoryBackorder    InventoryStatus = "backorder"
	InventoryDiscontinued InventoryStatus = "discontinued"
)

// InventoryStatuses lists every accepted status; the first entry is the default
var InventoryStatuses = []InventoryStatus{
	InventoryInStock,
	InventoryLowStock,
	InventoryOutOfStock,
	InventoryBackorder,
	InventoryDiscontinued,
}

// InventoryItem tracks stock for a single product
type InventoryItem struct {
	ID             string          `json:"id" validate:"required"`
	ProductID      string          `json:"productId"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	StockOnHand    int             `json:"stockOnHand"`
	StockAllocated int             `json:"stockAllocated"`
	Incoming       int             `json:"incoming"`
	ReorderPoint   int             `json:"reorderPoint"`
	Status         InventoryStatus `json:"status"`
	Location       string          `json:"location"`
	UpdatedAt      string          `json:"updatedAt"`
}

func (i InventoryItem) RecordID() string { return i.ID }

// Available is the stock that can still be promised to new orders
func (i InventoryItem) Available() int {
	return i.StockOnHand - i.StockAllocated
}
