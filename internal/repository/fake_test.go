package repository

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/filestore"
	"storefront/internal/remote"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// fakeTable is an in-memory remote backend
type fakeTable struct {
	mu         sync.Mutex
	configured bool
	rows       map[string][]domain.Record
	// err fails every operation, upsertErr and deleteErr only their own
	err       error
	upsertErr error
	deleteErr error
	calls     []string
	deleted   [][]string
}

func newFakeTable() *fakeTable {
	return &fakeTable{configured: true, rows: map[string][]domain.Record{}}
}

func (f *fakeTable) Configured() bool { return f.configured }

func (f *fakeTable) begin(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	if !f.configured {
		return remote.ErrNotConfigured
	}
	return f.err
}

func (f *fakeTable) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTable) SelectAll(_ context.Context, table string) ([]domain.Record, error) {
	err := f.begin("select_all")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return slices.Clone(f.rows[table]), nil
}

func (f *fakeTable) SelectOne(ctx context.Context, table, id string) (domain.Record, error) {
	return f.SelectByField(ctx, table, "id", id)
}

func (f *fakeTable) SelectByField(_ context.Context, table, field, value string) (domain.Record, error) {
	err := f.begin("select_by_field")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, row := range f.rows[table] {
		if cast.ToString(row[field]) == value {
			return row, nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *fakeTable) UpsertMany(_ context.Context, table string, rows []domain.Record) error {
	err := f.begin("upsert_many")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, row := range rows {
		i := slices.IndexFunc(f.rows[table], func(r domain.Record) bool { return r["id"] == row["id"] })
		if i >= 0 {
			f.rows[table][i] = row
		} else {
			f.rows[table] = append(f.rows[table], row)
		}
	}
	return nil
}

func (f *fakeTable) DeleteMany(_ context.Context, table string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(ids) == 0 || !f.configured {
		return nil
	}
	f.calls = append(f.calls, "delete_many")
	if f.err != nil {
		return f.err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids)
	f.rows[table] = slices.DeleteFunc(f.rows[table], func(r domain.Record) bool {
		return slices.Contains(ids, cast.ToString(r["id"]))
	})
	return nil
}

// clock is a settable time source for backoff tests
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestFiles(t *testing.T) *filestore.Store {
	t.Helper()
	s := filestore.New(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestDeps(t *testing.T, table TableClient) (Deps, *filestore.Store, *clock) {
	t.Helper()
	files := newTestFiles(t)
	clk := newClock()
	return Deps{
		Remote: table,
		Files:  files,
		Logger: zap.NewNop(),
		Probe:  ProbePolicy{Initial: time.Second, Max: 8 * time.Second},
		now:    clk.Now,
	}, files, clk
}

func unconfiguredTable() *fakeTable {
	f := newFakeTable()
	f.configured = false
	return f
}

func nopLogger() *zap.Logger { return zap.NewNop() }
