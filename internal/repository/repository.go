// Package repository hides the two storage backends behind one read and
// write API per entity kind. Reads try the remote tables first and fall back
// to the local document; writes upsert remotely and mirror to the document.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/filestore"
	"storefront/internal/metrics"
	"storefront/internal/normalize"
	"storefront/internal/remote"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("record not found")
)

// TableClient is the remote backend as seen by repositories
type TableClient interface {
	Configured() bool
	SelectAll(ctx context.Context, table string) ([]domain.Record, error)
	SelectOne(ctx context.Context, table, id string) (domain.Record, error)
	SelectByField(ctx context.Context, table, field, value string) (domain.Record, error)
	UpsertMany(ctx context.Context, table string, rows []domain.Record) error
	DeleteMany(ctx context.Context, table string, ids []string) error
}

// FileStore is the local document as seen by repositories
type FileStore interface {
	Read(ctx context.Context) (filestore.Document, error)
	Update(ctx context.Context, fn func(*filestore.Document)) (filestore.Document, error)
}

// Repository is the API every entity kind shares
type Repository[T domain.Entity] interface {
	List(ctx context.Context) ([]T, error)
	ListWhere(ctx context.Context, field, value string) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	GetByField(ctx context.Context, field, value string) (T, error)
	SetAll(ctx context.Context, next []T) ([]T, error)
	Backend() Backend
}

// Deps are the collaborators shared by all repositories
type Deps struct {
	Remote TableClient
	Files  FileStore
	Logger *zap.Logger
	Tracer trace.Tracer
	Probe  ProbePolicy

	now func() time.Time
}

type collection[T domain.Entity] struct {
	kind      string
	table     string
	normalize normalize.Func[T]
	// pruneRemoved deletes remote rows missing from a SetAll batch
	pruneRemoved bool

	remote  TableClient
	files   FileStore
	backend *backendTracker
	logger  *zap.Logger
	tracer  trace.Tracer
}

func newCollection[T domain.Entity](deps Deps, kind, table string, fn normalize.Func[T]) *collection[T] {
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("storefront/repository")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &collection[T]{
		kind:      kind,
		table:     table,
		normalize: fn,
		remote:    deps.Remote,
		files:     deps.Files,
		backend:   newBackendTracker(deps.Remote.Configured(), deps.Probe, deps.now),
		logger:    logger.With(zap.String("table", table)),
		tracer:    tracer,
	}
}

func (c *collection[T]) Backend() Backend {
	return c.backend.State()
}

// List returns the whole collection
func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	ctx, span := c.start(ctx, "List")
	defer span.End()

	if c.backend.allowRemote() {
		rows, err := c.remote.SelectAll(ctx, c.table)
		if c.settle(span, "select_all", err) {
			return c.normalizeRows(span, rows, BackendRemoteActive), nil
		}
	}

	rows, err := c.fileRows(ctx)
	if err != nil {
		return nil, recordError(span, err)
	}
	return c.normalizeRows(span, rows, BackendFileOnly), nil
}

// ListWhere returns every record whose field equals value
func (c *collection[T]) ListWhere(ctx context.Context, field, value string) ([]T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, field, value) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *collection[T]) GetByID(ctx context.Context, id string) (T, error) {
	return c.GetByField(ctx, "id", id)
}

// GetByField returns the first record whose field equals value. A remote
// miss is final; only a remote failure falls back to the file.
func (c *collection[T]) GetByField(ctx context.Context, field, value string) (T, error) {
	ctx, span := c.start(ctx, "GetByField", attribute.String("field", field))
	defer span.End()

	var zero T
	if c.backend.allowRemote() {
		var row domain.Record
		var err error
		if field == "id" {
			row, err = c.remote.SelectOne(ctx, c.table, value)
		} else {
			row, err = c.remote.SelectByField(ctx, c.table, field, value)
		}
		if c.settle(span, "select_by_field", err) {
			if errors.Is(err, remote.ErrNotFound) {
				return zero, fmt.Errorf("%s %s=%q: %w", c.kind, field, value, ErrNotFound)
			}
			return c.normalizeRows(span, []domain.Record{row}, BackendRemoteActive)[0], nil
		}
	}

	rows, err := c.fileRows(ctx)
	if err != nil {
		return zero, recordError(span, err)
	}
	for _, item := range c.normalizeRows(span, rows, BackendFileOnly) {
		if matches(item, field, value) {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %s=%q: %w", c.kind, field, value, ErrNotFound)
}

// SetAll replaces the whole collection. After a successful remote write
// the batch is mirrored to the file and returned as given; when any remote
// step fails, or the backend is waiting out a probe delay, the file becomes
// the only copy and its contents are returned. File store errors are
// returned to the caller.
func (c *collection[T]) SetAll(ctx context.Context, next []T) ([]T, error) {
	ctx, span := c.start(ctx, "SetAll", attribute.Int("records", len(next)))
	defer span.End()

	rows, err := normalize.ToRecords(next)
	if err != nil {
		return nil, recordError(span, err)
	}

	if c.backend.allowRemote() {
		op, err := c.writeRemote(ctx, next, rows)
		if c.settle(span, op, err) {
			if _, err := c.files.Update(ctx, c.replace(rows)); err != nil {
				return nil, recordError(span, fmt.Errorf("failed to mirror %s to file store: %w", c.table, err))
			}
			span.SetAttributes(attribute.String("backend", BackendRemoteActive.String()))
			return next, nil
		}
		c.logger.Warn("Remote write failed, file store is now the only copy", zap.Int("records", len(rows)))
	}

	doc, err := c.files.Update(ctx, c.replace(rows))
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to write %s to file store: %w", c.table, err))
	}
	return c.normalizeRows(span, *doc.Collection(c.table), BackendFileOnly), nil
}

// writeRemote prunes removed rows when the collection asks for it, then
// upserts the batch. It returns the operation that failed.
func (c *collection[T]) writeRemote(ctx context.Context, next []T, rows []domain.Record) (string, error) {
	if c.pruneRemoved {
		if op, err := c.deleteRemoved(ctx, next); err != nil {
			return op, err
		}
	}
	return "upsert_many", c.remote.UpsertMany(ctx, c.table, rows)
}

// deleteRemoved removes remote rows whose ids are absent from next
func (c *collection[T]) deleteRemoved(ctx context.Context, next []T) (string, error) {
	rows, err := c.remote.SelectAll(ctx, c.table)
	if err != nil {
		return "select_all", err
	}
	current, _ := normalize.All(rows, c.normalize)

	removed := removedIDs(current, next)
	if len(removed) == 0 {
		return "", nil
	}
	if err := c.remote.DeleteMany(ctx, c.table, removed); err != nil {
		return "delete_many", err
	}
	c.logger.Info("Deleted removed records", zap.Strings("ids", removed))
	return "", nil
}

func removedIDs[T domain.Entity](current, next []T) []string {
	keep := make(map[string]struct{}, len(next))
	for _, item := range next {
		keep[item.RecordID()] = struct{}{}
	}
	var removed []string
	for _, item := range current {
		if _, ok := keep[item.RecordID()]; !ok {
			removed = append(removed, item.RecordID())
		}
	}
	return removed
}

func (c *collection[T]) replace(rows []domain.Record) func(*filestore.Document) {
	return func(doc *filestore.Document) {
		*doc.Collection(c.table) = rows
	}
}

// fileRows reads this collection from the document. A corrupt document has
// already been quarantined and reset by the store; it reads as empty.
func (c *collection[T]) fileRows(ctx context.Context) ([]domain.Record, error) {
	doc, err := c.files.Read(ctx)
	var corrupt *filestore.CorruptStoreError
	if errors.As(err, &corrupt) {
		c.logger.Error("File store was corrupt and has been reset",
			zap.String("quarantine", corrupt.QuarantinePath),
			zap.Error(err),
		)
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from file store: %w", c.table, err)
	}
	return *doc.Collection(c.table), nil
}

// settle feeds a remote outcome into the backend state machine and reports
// whether the remote backend answered
func (c *collection[T]) settle(span trace.Span, op string, err error) bool {
	switch {
	case err == nil, errors.Is(err, remote.ErrNotFound):
		if c.backend.succeeded() {
			c.logger.Info("Remote backend active")
		}
		return true
	case errors.Is(err, remote.ErrNotConfigured):
		c.backend.unconfigured()
	default:
		delay := c.backend.failed()
		span.RecordError(err)
		c.logger.Warn("Remote backend unavailable, falling back to file store",
			zap.String("op", op),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
	}
	return false
}

func (c *collection[T]) normalizeRows(span trace.Span, rows []domain.Record, backend Backend) []T {
	items, reports := normalize.All(rows, c.normalize)
	for _, report := range reports {
		if report.Clean() {
			continue
		}
		metrics.NormalizedDefaultsTotal.WithLabelValues(c.kind).Add(float64(len(report.Defaulted)))
		c.logger.Debug("Normalized record",
			zap.String("id", report.ID),
			zap.Strings("defaulted", report.Defaulted),
			zap.Strings("dropped", report.Dropped),
		)
	}
	metrics.BackendReadsTotal.WithLabelValues(c.kind, backend.String()).Inc()
	span.SetAttributes(
		attribute.String("backend", backend.String()),
		attribute.Int("records", len(items)),
	)
	return items
}

func (c *collection[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("table", c.table))
	return c.tracer.Start(ctx, c.table+"."+op, trace.WithAttributes(attrs...))
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// matches compares a top-level field of the record's stored form
func matches(item any, field, value string) bool {
	rec, err := normalize.ToRecord(item)
	if err != nil {
		return false
	}
	v, ok := rec[field]
	if !ok || v == nil {
		return false
	}
	return cast.ToString(v) == value
}
