package normalize

import (
	"math"
	"strings"

	"storefront/internal/domain"

	"github.com/gosimple/slug"
)

const wordsPerMinute = 200

// Post normalizes a raw blog post record
func Post(raw domain.Record) (domain.BlogPost, Report) {
	f := newFields("post", raw)

	p := domain.BlogPost{
		Title:     f.str("title"),
		Excerpt:   f.str("excerpt"),
		Content:   f.str("content"),
		Image:     f.str("image"),
		Date:      f.str("date"),
		Author:    f.str("author"),
		Tags:      f.stringList("tags"),
		Category:  f.str("category"),
		Featured:  f.boolean("featured"),
		SEO:       seo(f.object("seo")),
		CreatedAt: f.str("createdAt"),
		UpdatedAt: f.str("updatedAt"),
	}
	if _, ok := f.value("readingTime"); ok {
		p.ReadingTime = f.integer("readingTime")
	} else {
		f.mark("readingTime")
		p.ReadingTime = readingTime(p.Content)
	}
	p.Slug = f.strOr("slug", slug.Make(p.Title))
	p.ID = f.strOr("id", fallbackID(p.Slug))

	f.report.ID = p.ID
	return p, *f.report
}

// readingTime estimates minutes to read content, at least one when there is any
func readingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}
