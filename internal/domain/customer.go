package domain

// CustomerStatus is the CRM lifecycle stage of a customer
type CustomerStatus string

const (
	CustomerStatusLead   CustomerStatus = "Lead"
	CustomerStatusActive CustomerStatus = "Active"
	CustomerStatusVIP    CustomerStatus = "VIP"
	CustomerStatusPaused CustomerStatus = "Paused"
)

// CustomerStatuses lists every accepted status; the first entry is the default
var CustomerStatuses = []CustomerStatus{CustomerStatusLead, CustomerStatusActive, CustomerStatusVIP, CustomerStatusPaused}

// Address is a postal address
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Customer represents a CRM contact
type Customer struct {
	ID                string         `json:"id" validate:"required"`
	Email             string         `json:"email"`
	Name              string         `json:"name"`
	Phone             string         `json:"phone"`
	Status            CustomerStatus `json:"status"`
	Tags              []string       `json:"tags"`
	PreferredProducts []string       `json:"preferredProducts"`
	Orders            int            `json:"orders"`
	LifetimeValue     float64        `json:"lifetimeValue"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	Address           Address        `json:"address"`
	Notes             string         `json:"notes"`
	LastOrderAt       string         `json:"lastOrderAt"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
}

func (c Customer) RecordID() string { return c.ID }
