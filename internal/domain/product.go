package domain

// ProductCategory is the catalog family a product belongs to
type ProductCategory string

const (
	CategoryMineral ProductCategory = "Mineral"
	CategoryFiber   ProductCategory = "Fiber"
)

// ProductCategories lists every accepted category; the first entry is the default
var ProductCategories = []ProductCategory{CategoryMineral, CategoryFiber}

// ProductStatus controls storefront visibility
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// ProductStatuses lists every accepted status; the first entry is the default
var ProductStatuses = []ProductStatus{ProductStatusActive, ProductStatusDraft, ProductStatusArchived}

// SEO holds search metadata shared by products and posts
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Review is a customer review shown on the product page
type Review struct {
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Text     string  `json:"text"`
	Date     string  `json:"date"`
	Verified bool    `json:"verified"`
}

// Ingredient is one line of the supplement facts panel
type Ingredient struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// QualityClaim is a short trust statement (third-party tested, vegan, ...)
type QualityClaim struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Benefit is a product benefit card
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WhyItWorks is one point of the mechanism section
type WhyItWorks struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HowToUseStep is one numbered usage step
type HowToUseStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FAQ is a question and answer pair
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Product represents a product in the catalog
type Product struct {
	ID              string          `json:"id" validate:"required"`
	SKU             string          `json:"sku"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Image           string          `json:"image"`
	Gallery         []string        `json:"gallery"`
	Highlights      []string        `json:"highlights"`
	Price           float64         `json:"price"`
	CompareAtPrice  float64         `json:"compareAtPrice"`
	Stock           int             `json:"stock"`
	ReorderPoint    int             `json:"reorderPoint"`
	AllowBackorder  bool            `json:"allowBackorder"`
	Category        ProductCategory `json:"category"`
	Status          ProductStatus   `json:"status"`
	Badge           string          `json:"badge"`
	SEO             SEO             `json:"seo"`
	Reviews         []Review        `json:"reviews"`
	Ingredients     []Ingredient    `json:"ingredients"`
	QualityClaims   []QualityClaim  `json:"qualityClaims"`
	Benefits        []Benefit       `json:"benefits"`
	WhyItWorks      []WhyItWorks    `json:"whyItWorks"`
	HowToUse        []HowToUseStep  `json:"howToUse"`
	FAQ             []FAQ           `json:"faq"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// RecordID returns the product identity
func (p Product) RecordID() string { return p.ID }
