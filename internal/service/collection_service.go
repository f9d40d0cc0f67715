// Package service sits between the HTTP surface and the repositories. It
// normalizes and validates incoming batches and announces every replaced
// collection.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/normalize"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrInvalidBatch = errors.New("invalid batch")
)

var validate = validator.New()

// batch is validated as a whole so duplicate ids are caught before any write
type batch[T domain.Entity] struct {
	Items []T `validate:"unique=ID,dive"`
}

// Collection serves one entity kind
type Collection[T domain.Entity] struct {
	name      string
	repo      repository.Repository[T]
	normalize normalize.Func[T]
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCollection creates the service for the collection called name
func NewCollection[T domain.Entity](name string, repo repository.Repository[T], fn normalize.Func[T], publisher events.Publisher, logger *zap.Logger) *Collection[T] {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Collection[T]{
		name:      name,
		repo:      repo,
		normalize: fn,
		publisher: publisher,
		logger:    logger.With(zap.String("collection", name)),
		now:       time.Now,
	}
}

// Name is the plural used for routes and request bodies
func (s *Collection[T]) Name() string {
	return s.name
}

// Backend reports where the collection is currently served from
func (s *Collection[T]) Backend() repository.Backend {
	return s.repo.Backend()
}

func (s *Collection[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

// Lookup returns the single record whose field equals value
func (s *Collection[T]) Lookup(ctx context.Context, field, value string) (T, error) {
	if field == "id" {
		return s.repo.GetByID(ctx, value)
	}
	return s.repo.GetByField(ctx, field, value)
}

// Filter returns every record whose field equals value
func (s *Collection[T]) Filter(ctx context.Context, field, value string) ([]T, error) {
	return s.repo.ListWhere(ctx, field, value)
}

// Save normalizes raws, validates the batch and replaces the collection
func (s *Collection[T]) Save(ctx context.Context, raws []domain.Record) ([]T, error) {
	items, reports := normalize.All(raws, s.normalize)
	defaulted := 0
	for _, report := range reports {
		if !report.Clean() {
			defaulted++
			s.logger.Debug("Normalized incoming record", zap.Stringer("report", report))
		}
	}

	if err := validate.Struct(batch[T]{Items: items}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	saved, err := s.repo.SetAll(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", s.name, err)
	}

	s.logger.Info("Collection replaced",
		zap.Int("records", len(saved)),
		zap.Int("normalized", defaulted),
		zap.Stringer("backend", s.repo.Backend()),
	)
	s.announce(ctx, saved)
	return saved, nil
}

// announce publishes the change; a failed publish never fails the write
func (s *Collection[T]) announce(ctx context.Context, saved []T) {
	ids := make([]string, 0, len(saved))
	for _, item := range saved {
		ids = append(ids, item.RecordID())
	}

	event := events.ChangeEvent{
		Collection: s.name,
		IDs:        ids,
		Backend:    s.repo.Backend().String(),
		At:         s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish change event", zap.Error(err))
	}
}
