package normalize

import (
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

const defaultCurrency = "USD"

// Order normalizes a raw order record. Missing subtotal and total are
// recomputed from the line items and rounded to cents.
func Order(raw domain.Record) (domain.Order, Report) {
	f := newFields("order", raw)

	o := domain.Order{
		OrderNumber:     f.str("orderNumber"),
		CustomerID:      f.str("customerId"),
		CustomerEmail:   strings.ToLower(f.str("customerEmail")),
		CustomerName:    f.str("customerName"),
		Status:          enum(f, "status", domain.OrderStatuses),
		PaymentStatus:   enum(f, "paymentStatus", domain.PaymentStatuses),
		Items:           orderItems(f.objects("items")),
		Shipping:        f.float("shipping"),
		Tax:             f.float("tax"),
		Discount:        f.float("discount"),
		Currency:        strings.ToUpper(f.strOr("currency", defaultCurrency)),
		ShippingAddress: address(f.object("shippingAddress")),
		Notes:           f.str("notes"),
		PlacedAt:        f.str("placedAt"),
		CreatedAt:       f.str("createdAt"),
		UpdatedAt:       f.str("updatedAt"),
	}

	if subtotal, ok := f.optionalFloat("subtotal"); ok {
		o.Subtotal = subtotal
	} else {
		f.mark("subtotal")
		o.Subtotal = Subtotal(o.Items)
	}
	if total, ok := f.optionalFloat("total"); ok {
		o.Total = total
	} else {
		f.mark("total")
		o.Total = Total(o)
	}
	o.ID = f.strOr("id", fallbackID(o.OrderNumber))

	f.report.ID = o.ID
	return o, *f.report
}

// orderItems drops lines that name neither a product id nor a product
func orderItems(items []fields) []domain.OrderItem {
	out := []domain.OrderItem{}
	for _, f := range items {
		productID, name := f.str("productId"), f.str("name")
		if productID == "" && name == "" {
			f.drop(f.prefix)
			continue
		}
		quantity := 1
		if _, ok := f.value("quantity"); ok {
			quantity = f.integer("quantity")
		} else {
			f.mark("quantity")
		}
		out = append(out, domain.OrderItem{
			ProductID: productID,
			Name:      name,
			SKU:       f.str("sku"),
			Quantity:  quantity,
			UnitPrice: f.float("unitPrice"),
		})
	}
	return out
}

// Subtotal sums quantity times unit price over every line
func Subtotal(items []domain.OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum.Round(2).InexactFloat64()
}

// Total is subtotal plus shipping and tax, less discount
func Total(o domain.Order) float64 {
	return decimal.NewFromFloat(o.Subtotal).
		Add(decimal.NewFromFloat(o.Shipping)).
		Add(decimal.NewFromFloat(o.Tax)).
		Sub(decimal.NewFromFloat(o.Discount)).
		Round(2).
		InexactFloat64()
}
