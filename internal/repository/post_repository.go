package repository

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/normalize"
)

// PostRepository defines the interface for blog post data access
type PostRepository interface {
	Repository[domain.BlogPost]
	GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error)
}

type postRepository struct {
	*collection[domain.BlogPost]
}

func NewPostRepository(deps Deps) PostRepository {
	return &postRepository{collection: newCollection[domain.BlogPost](deps, "post", domain.CollectionPosts, normalize.Post)}
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	return r.GetByField(ctx, "slug", slug)
}
