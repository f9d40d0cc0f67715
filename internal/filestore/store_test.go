package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "data", "db.json"), zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readRaw(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestEnsureCreatesEmptyDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Ensure(context.Background()))

	raw := readRaw(t, s.Path())
	for _, name := range domain.Collections {
		assert.Equal(t, []any{}, raw[name], "collection %s", name)
	}
}

func TestEnsureKeepsExistingDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"products":[{"id":"p1"}]}`), 0o644))

	require.NoError(t, s.Ensure(context.Background()))

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{"id": "p1"}}, doc.Products)
}

func TestEnsureReportsAccessError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(filepath.Join(blocker, "db.json"), zap.NewNop())
	defer s.Close()

	err := s.Ensure(context.Background())
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, s.Path(), accessErr.Path)
}

func TestReadCoercesMalformedCollections(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	body := `{"products": null, "posts": {"id": "x"}, "orders": [1, "two", {"id": "o1"}]}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(body), 0o644))

	doc, err := s.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Record{}, doc.Products)
	assert.Equal(t, []domain.Record{}, doc.Posts)
	assert.Equal(t, []domain.Record{}, doc.Customers)
	assert.Equal(t, []domain.Record{}, doc.Inventory)
	assert.Equal(t, []domain.Record{{"id": "o1"}}, doc.Orders)
}

func TestReadEmptyStoreReturnsEmptyInventory(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Inventory)
	assert.Len(t, doc.Inventory, 0)
}

func TestReadQuarantinesCorruptDocument(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Unix(0, 42) }
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	garbage := []byte("{\"products\": [ {\"id\": \"p1\"")
	require.NoError(t, os.WriteFile(s.Path(), garbage, 0o644))

	doc, err := s.Read(context.Background())

	var corrupt *CorruptStoreError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, EmptyDocument(), doc)
	assert.Equal(t, s.Path()+".corrupt-42", corrupt.QuarantinePath)

	// The broken bytes are preserved, the live file is the empty default
	kept, readErr := os.ReadFile(corrupt.QuarantinePath)
	require.NoError(t, readErr)
	assert.Equal(t, garbage, kept)

	again, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EmptyDocument(), again)
}

func TestUpdateKeepsConcurrentCollections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, func(d *Document) {
				d.Products = append(d.Products, domain.Record{"id": fmt.Sprintf("p%d", i)})
			})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(ctx, func(d *Document) {
				d.Posts = append(d.Posts, domain.Record{"id": fmt.Sprintf("post%d", i)})
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Products, 10)
	assert.Len(t, doc.Posts, 10)
}

func TestUpdateRecoversFromCorruptDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("not json"), 0o644))

	doc, err := s.Update(context.Background(), func(d *Document) {
		d.Posts = []domain.Record{{"id": "hello"}}
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{{"id": "hello"}}, doc.Posts)

	matches, _ := filepath.Glob(s.Path() + ".corrupt-*")
	assert.Len(t, matches, 1)
}

// Feature: storefront-persistence, Property 2: Concurrent writes end with the last enqueued document
func TestConcurrentWritesAreSerialized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Ensure(ctx))

	stop := make(chan struct{})
	var invalidReads atomic.Int32
	var readerDone sync.WaitGroup
	readerDone.Add(1)
	go func() {
		defer readerDone.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			data, err := os.ReadFile(s.Path())
			if err == nil && !json.Valid(data) {
				invalidReads.Add(1)
			}
		}
	}()

	const n = 25
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = EmptyDocument()
		for j := 0; j <= i; j++ {
			docs[i].Products = append(docs[i].Products, domain.Record{"id": fmt.Sprintf("p%d", j), "name": "Magnesium Glycinate"})
		}
	}

	errs := enqueueInOrder(t, s.queue, n, func(i int) func() error {
		return func() error { return s.writeDocLocked(docs[i]) }
	})
	close(stop)
	readerDone.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Zero(t, invalidReads.Load(), "a reader observed a partially written file")

	final, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, final.Products, n)
}

func TestWriteThroughStoreAPI(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := EmptyDocument()
	doc.Customers = []domain.Record{{"id": "c1", "email": "ada@example.com"}}
	require.NoError(t, s.Write(ctx, doc))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	// No temp files are left behind
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".db-*.tmp"))
	assert.Empty(t, leftovers)
}

func TestWriteAfterCloseFails(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, s.Close())

	err := s.Write(context.Background(), EmptyDocument())
	assert.True(t, errors.Is(err, ErrSerializerClosed))
}

// Feature: storefront-persistence, Property 3: Written documents read back unchanged
func TestProperty_DocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("write then read yields an equal document", prop.ForAll(
		func(name string, price float64, stock int, tags []string) bool {
			tagList := make([]any, len(tags))
			for i, tag := range tags {
				tagList[i] = tag
			}

			doc := EmptyDocument()
			doc.Products = []domain.Record{{
				"id":    "prod-" + name,
				"name":  name,
				"price": price,
				"stock": float64(stock),
			}}
			doc.Posts = []domain.Record{{"id": "post-" + name, "tags": tagList}}

			if err := s.Write(ctx, doc); err != nil {
				t.Logf("FAIL: write: %v", err)
				return false
			}
			got, err := s.Read(ctx)
			if err != nil {
				t.Logf("FAIL: read: %v", err)
				return false
			}
			return reflect.DeepEqual(doc, got)
		},
		gen.AlphaString(),
		gen.Float64Range(0, 10000),
		gen.IntRange(0, 1000),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
