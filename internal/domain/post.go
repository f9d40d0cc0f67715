package domain

// BlogPost represents an article in the content section
type BlogPost struct {
	ID          string   `json:"id" validate:"required"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Content     string   `json:"content"`
	Image       string   `json:"image"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	Featured    bool     `json:"featured"`
	ReadingTime int      `json:"readingTime"`
	SEO         SEO      `json:"seo"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func (p BlogPost) RecordID() string { return p.ID }
