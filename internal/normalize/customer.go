package normalize

import (
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// Customer normalizes a raw customer record
func Customer(raw domain.Record) (domain.Customer, Report) {
	f := newFields("customer", raw)

	c := domain.Customer{
		Email:             strings.ToLower(f.str("email")),
		Name:              f.str("name"),
		Phone:             f.str("phone"),
		Status:            enum(f, "status", domain.CustomerStatuses),
		Tags:              f.stringList("tags"),
		PreferredProducts: f.stringList("preferredProducts"),
		Orders:            f.integer("orders"),
		LifetimeValue:     f.float("lifetimeValue"),
		Address:           address(f.object("address")),
		Notes:             f.str("notes"),
		LastOrderAt:       f.str("lastOrderAt"),
		CreatedAt:         f.str("createdAt"),
		UpdatedAt:         f.str("updatedAt"),
	}
	if aov, ok := f.optionalFloat("averageOrderValue"); ok {
		c.AverageOrderValue = aov
	} else {
		f.mark("averageOrderValue")
		if c.Orders > 0 {
			c.AverageOrderValue = decimal.NewFromFloat(c.LifetimeValue).
				Div(decimal.NewFromInt(int64(c.Orders))).
				Round(2).
				InexactFloat64()
		}
	}
	c.ID = f.strOr("id", fallbackID(c.Email))

	f.report.ID = c.ID
	return c, *f.report
}

func address(f fields) domain.Address {
	return domain.Address{
		Line1:      f.str("line1"),
		Line2:      f.str("line2"),
		City:       f.str("city"),
		State:      f.str("state"),
		PostalCode: f.str("postalCode"),
		Country:    f.str("country"),
	}
}
