package domain

// Record is a loosely-typed entity as it arrives from the remote backend,
// the local file or a request body, before normalization.
type Record = map[string]any

// Entity is implemented by every persisted record type
type Entity interface {
	RecordID() string
}

// Collection names shared by the remote tables, the file document and the HTTP API
const (
	CollectionProducts  = "products"
	CollectionPosts     = "posts"
	CollectionCustomers = "customers"
	CollectionInventory = "inventory"
	CollectionOrders    = "orders"
)

// Collections lists the collections in document order
var Collections = []string{
	CollectionProducts,
	CollectionPosts,
	CollectionCustomers,
	CollectionInventory,
	CollectionOrders,
}

// Database is the fully typed view of every collection
type Database struct {
	Products  []Product       `json:"products"`
	Posts     []BlogPost      `json:"posts"`
	Customers []Customer      `json:"customers"`
	Inventory []InventoryItem `json:"inventory"`
	Orders    []Order         `json:"orders"`
}
