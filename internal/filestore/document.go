package filestore

import (
	"encoding/json"

	"storefront/internal/domain"
)

// Document is the on-disk database. Records stay untyped until a
// repository normalizes them.
type Document struct {
	Products  []domain.Record `json:"products"`
	Posts     []domain.Record `json:"posts"`
	Customers []domain.Record `json:"customers"`
	Inventory []domain.Record `json:"inventory"`
	Orders    []domain.Record `json:"orders"`
}

// EmptyDocument is the document written on first run and after a reset
func EmptyDocument() Document {
	return Document{
		Products:  []domain.Record{},
		Posts:     []domain.Record{},
		Customers: []domain.Record{},
		Inventory: []domain.Record{},
		Orders:    []domain.Record{},
	}
}

// Collection returns a pointer to the named collection, or nil for an unknown name
func (d *Document) Collection(name string) *[]domain.Record {
	switch name {
	case domain.CollectionProducts:
		return &d.Products
	case domain.CollectionPosts:
		return &d.Posts
	case domain.CollectionCustomers:
		return &d.Customers
	case domain.CollectionInventory:
		return &d.Inventory
	case domain.CollectionOrders:
		return &d.Orders
	}
	return nil
}

// ParseDocument decodes a database document. Collections that are missing,
// null or not arrays come back empty; array elements that are not objects
// are skipped. Only bytes that are not a JSON object are an error.
func ParseDocument(data []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return EmptyDocument(), err
	}

	doc := EmptyDocument()
	for _, name := range domain.Collections {
		*doc.Collection(name) = parseRecords(top[name])
	}
	return doc, nil
}

func parseRecords(raw json.RawMessage) []domain.Record {
	records := []domain.Record{}
	if len(raw) == 0 {
		return records
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return records
	}
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}

// encode fills nil collections so the file always carries arrays
func encode(doc Document) ([]byte, error) {
	for _, name := range domain.Collections {
		if c := doc.Collection(name); *c == nil {
			*c = []domain.Record{}
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}
