package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/normalize"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repository for testing
type mockRepository[T domain.Entity] struct {
	items    []T
	setErr   error
	setCalls int
	lookups  []string
	backend  repository.Backend
}

func (m *mockRepository[T]) List(ctx context.Context) ([]T, error) {
	return m.items, nil
}

func (m *mockRepository[T]) ListWhere(ctx context.Context, field, value string) ([]T, error) {
	m.lookups = append(m.lookups, "where:"+field+"="+value)
	return m.items, nil
}

func (m *mockRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	m.lookups = append(m.lookups, "id="+id)
	for _, item := range m.items {
		if item.RecordID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, repository.ErrNotFound
}

func (m *mockRepository[T]) GetByField(ctx context.Context, field, value string) (T, error) {
	m.lookups = append(m.lookups, field+"="+value)
	var zero T
	return zero, repository.ErrNotFound
}

func (m *mockRepository[T]) SetAll(ctx context.Context, next []T) ([]T, error) {
	m.setCalls++
	if m.setErr != nil {
		return nil, m.setErr
	}
	m.items = next
	return next, nil
}

func (m *mockRepository[T]) Backend() repository.Backend {
	return m.backend
}

type recordingPublisher struct {
	events []events.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.ChangeEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newProductService(repo *mockRepository[domain.Product], publisher events.Publisher) *Collection[domain.Product] {
	s := NewCollection[domain.Product](domain.CollectionProducts, repo, normalize.Product, publisher, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestSaveNormalizesAndAnnounces(t *testing.T) {
	repo := &mockRepository[domain.Product]{backend: repository.BackendRemoteActive}
	publisher := &recordingPublisher{}
	s := newProductService(repo, publisher)

	saved, err := s.Save(context.Background(), []domain.Record{
		{"id": "mag-300", "name": "Magnesium Glycinate", "price": "24.5", "status": "ARCHIVED"},
		{"name": "Psyllium Husk"},
	})
	require.NoError(t, err)

	require.Len(t, saved, 2)
	assert.Equal(t, 24.5, saved[0].Price)
	assert.Equal(t, domain.ProductStatusArchived, saved[0].Status)
	assert.Equal(t, "psyllium-husk", saved[1].ID)
	assert.Equal(t, 1, repo.setCalls)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "products", event.Collection)
	assert.Equal(t, []string{"mag-300", "psyllium-husk"}, event.IDs)
	assert.Equal(t, "remote", event.Backend)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), event.At)
}

func TestSaveRejectsDuplicateIDs(t *testing.T) {
	repo := &mockRepository[domain.Product]{}
	publisher := &recordingPublisher{}
	s := newProductService(repo, publisher)

	_, err := s.Save(context.Background(), []domain.Record{
		{"id": "mag-300", "name": "Magnesium Glycinate"},
		{"id": "mag-300", "name": "Magnesium Citrate"},
	})

	require.ErrorIs(t, err, ErrInvalidBatch)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "unique", verrs[0].Tag())
	assert.Zero(t, repo.setCalls)
	assert.Empty(t, publisher.events)
}

func TestSaveEmptyBatchReplacesCollection(t *testing.T) {
	repo := &mockRepository[domain.Product]{items: []domain.Product{{ID: "old"}}}
	s := newProductService(repo, &recordingPublisher{})

	saved, err := s.Save(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Equal(t, 1, repo.setCalls)
}

func TestSavePropagatesRepositoryErrors(t *testing.T) {
	diskFull := errors.New("no space left on device")
	repo := &mockRepository[domain.Product]{setErr: diskFull}
	publisher := &recordingPublisher{}
	s := newProductService(repo, publisher)

	_, err := s.Save(context.Background(), []domain.Record{{"id": "p1"}})
	assert.ErrorIs(t, err, diskFull)
	assert.Empty(t, publisher.events)
}

func TestSaveSurvivesPublishFailure(t *testing.T) {
	repo := &mockRepository[domain.Product]{}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	s := newProductService(repo, publisher)

	saved, err := s.Save(context.Background(), []domain.Record{{"id": "p1"}})
	require.NoError(t, err)
	assert.Len(t, saved, 1)
	assert.Len(t, publisher.events, 1)
}

func TestLookupRoutesByField(t *testing.T) {
	repo := &mockRepository[domain.Product]{items: []domain.Product{{ID: "p1"}}}
	s := newProductService(repo, nil)
	ctx := context.Background()

	got, err := s.Lookup(ctx, "id", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	_, err = s.Lookup(ctx, "slug", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Filter(ctx, "category", "sleep")
	require.NoError(t, err)

	assert.Equal(t, []string{"id=p1", "slug=missing", "where:category=sleep"}, repo.lookups)
}

// Feature: storefront-persistence, Property 7: Saved batches keep input order and ids
func TestProperty_SaveKeepsOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("saved ids match the submitted ids in order", prop.ForAll(
		func(n int) bool {
			repo := &mockRepository[domain.Customer]{backend: repository.BackendFileOnly}
			publisher := &recordingPublisher{}
			s := NewCollection[domain.Customer](domain.CollectionCustomers, repo, normalize.Customer, publisher, zap.NewNop())

			raws := make([]domain.Record, n)
			want := make([]string, n)
			for i := range raws {
				want[i] = fmt.Sprintf("cust-%03d", n-i)
				raws[i] = domain.Record{"id": want[i], "email": fmt.Sprintf("C%d@Example.com", i)}
			}

			saved, err := s.Save(context.Background(), raws)
			if err != nil {
				t.Logf("FAIL: save: %v", err)
				return false
			}
			if len(publisher.events) != 1 || publisher.events[0].Backend != "file" {
				return false
			}
			for i, c := range saved {
				if c.ID != want[i] {
					return false
				}
			}
			return len(saved) == n && fmt.Sprint(publisher.events[0].IDs) == fmt.Sprint(want)
		},
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
