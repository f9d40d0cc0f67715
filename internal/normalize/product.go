package normalize

import (
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Product normalizes a raw product record
func Product(raw domain.Record) (domain.Product, Report) {
	f := newFields("product", raw)

	p := domain.Product{
		SKU:            f.str("sku"),
		Name:           f.str("name"),
		Description:    f.str("description"),
		Image:          f.str("image"),
		Gallery:        f.stringList("gallery"),
		Highlights:     f.stringList("highlights"),
		Price:          f.float("price"),
		CompareAtPrice: f.float("compareAtPrice"),
		Stock:          f.integer("stock"),
		ReorderPoint:   f.integer("reorderPoint"),
		AllowBackorder: f.boolean("allowBackorder"),
		Category:       enum(f, "category", domain.ProductCategories),
		Status:         enum(f, "status", domain.ProductStatuses),
		Badge:          f.str("badge"),
		SEO:            seo(f.object("seo")),
		Reviews:        reviews(f.objects("reviews")),
		Ingredients:    ingredients(f.objects("ingredients")),
		QualityClaims:  qualityClaims(f.objects("qualityClaims")),
		Benefits:       benefits(f.objects("benefits")),
		WhyItWorks:     whyItWorks(f.objects("whyItWorks")),
		HowToUse:       howToUse(f.objects("howToUse")),
		FAQ:            faqs(f.objects("faq")),
		CreatedAt:      f.str("createdAt"),
		UpdatedAt:      f.str("updatedAt"),
	}
	p.LongDescription = f.strOr("longDescription", p.Description)
	p.Slug = f.strOr("slug", slug.Make(p.Name))
	p.ID = f.strOr("id", fallbackID(p.Slug))

	f.report.ID = p.ID
	return p, *f.report
}

// fallbackID prefers the human-readable slug and falls back to a random id
func fallbackID(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return uuid.NewString()
}

func seo(f fields) domain.SEO {
	return domain.SEO{
		Title:       f.str("title"),
		Description: f.str("description"),
		Keywords:    f.stringList("keywords"),
	}
}

// reviews drops entries with neither author nor text, and entries whose
// rating is missing or not a number
func reviews(items []fields) []domain.Review {
	out := []domain.Review{}
	for _, f := range items {
		name, text := f.str("name"), f.str("text")
		rating, ok := f.number("rating")
		if (name == "" && text == "") || !ok {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.Review{
			Name:     name,
			Rating:   rating,
			Text:     text,
			Date:     f.str("date"),
			Verified: f.boolean("verified"),
		})
	}
	return out
}

func ingredients(items []fields) []domain.Ingredient {
	out := []domain.Ingredient{}
	for _, f := range items {
		name := f.str("name")
		if name == "" {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.Ingredient{
			Name:        name,
			Amount:      f.str("amount"),
			Description: f.str("description"),
		})
	}
	return out
}

func qualityClaims(items []fields) []domain.QualityClaim {
	out := []domain.QualityClaim{}
	for _, f := range items {
		title, description := f.str("title"), f.str("description")
		if title == "" && description == "" {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.QualityClaim{Title: title, Description: description})
	}
	return out
}

func benefits(items []fields) []domain.Benefit {
	out := []domain.Benefit{}
	for _, f := range items {
		title, description := f.str("title"), f.str("description")
		if title == "" && description == "" {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.Benefit{Title: title, Description: description, Icon: f.str("icon")})
	}
	return out
}

func whyItWorks(items []fields) []domain.WhyItWorks {
	out := []domain.WhyItWorks{}
	for _, f := range items {
		title, description := f.str("title"), f.str("description")
		if title == "" && description == "" {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.WhyItWorks{Title: title, Description: description})
	}
	return out
}

// howToUse numbers steps by position when no step number was given
func howToUse(items []fields) []domain.HowToUseStep {
	out := []domain.HowToUseStep{}
	for _, f := range items {
		title, description := f.str("title"), f.str("description")
		if title == "" && description == "" {
			f.drop(f.prefix)
			continue
		}
		step := f.integer("step")
		if step <= 0 {
			step = len(out) + 1
		}
		out = append(out, domain.HowToUseStep{Step: step, Title: title, Description: description})
	}
	return out
}

func faqs(items []fields) []domain.FAQ {
	out := []domain.FAQ{}
	for _, f := range items {
		question := f.str("question")
		if question == "" {
			f.drop(f.prefix)
			continue
		}
		out = append(out, domain.FAQ{Question: question, Answer: f.str("answer")})
	}
	return out
}
