package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// document is the collection-keyed shape shared by seed, export and import
type document map[string][]domain.Record

// saveDocument replaces every collection present in doc, in document order
func saveDocument(ctx context.Context, svcs *service.Services, doc document) (map[string]int, error) {
	counts := map[string]int{}
	for _, name := range domain.Collections {
		raws, ok := doc[name]
		if !ok {
			continue
		}

		var n int
		var err error
		switch name {
		case domain.CollectionProducts:
			n, err = save(ctx, svcs.Products, raws)
		case domain.CollectionPosts:
			n, err = save(ctx, svcs.Posts, raws)
		case domain.CollectionCustomers:
			n, err = save(ctx, svcs.Customers, raws)
		case domain.CollectionInventory:
			n, err = save(ctx, svcs.Inventory, raws)
		case domain.CollectionOrders:
			n, err = save(ctx, svcs.Orders, raws)
		}
		if err != nil {
			return counts, fmt.Errorf("save %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

func save[T domain.Entity](ctx context.Context, svc *service.Collection[T], raws []domain.Record) (int, error) {
	if raws == nil {
		raws = []domain.Record{}
	}
	saved, err := svc.Save(ctx, raws)
	return len(saved), err
}

// loadDocument reads every collection through the repositories
func loadDocument(ctx context.Context, svcs *service.Services, only string) (map[string]any, error) {
	out := map[string]any{}
	for _, name := range domain.Collections {
		if only != "" && only != name {
			continue
		}

		var items any
		var err error
		switch name {
		case domain.CollectionProducts:
			items, err = svcs.Products.List(ctx)
		case domain.CollectionPosts:
			items, err = svcs.Posts.List(ctx)
		case domain.CollectionCustomers:
			items, err = svcs.Customers.List(ctx)
		case domain.CollectionInventory:
			items, err = svcs.Inventory.List(ctx)
		case domain.CollectionOrders:
			items, err = svcs.Orders.List(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		out[name] = items
	}
	return out, nil
}

func parseDocument(data []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	for name := range doc {
		if !slices.Contains(domain.Collections, name) {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
	}
	return doc, nil
}
