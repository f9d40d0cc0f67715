package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Client runs per-table CRUD against the remote Postgres tables. Each table
// stores whole records as JSONB keyed by id. A Client without a pool is
// unconfigured: reads and upserts return ErrNotConfigured and deletes are
// no-ops.
type Client struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New builds a client from the connection secrets. The pool connects
// lazily, so an unreachable backend surfaces on the first query.
func New(ctx context.Context, cfg config.RemoteConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		logger.Warn("Remote backend secrets missing, using the local file store only")
		return Unconfigured(logger), nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote database url: %w", err)
	}
	poolConfig.ConnConfig.Password = cfg.Key
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote pool: %w", err)
	}

	logger.Info("Remote backend configured",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
	)
	return &Client{pool: pool, logger: logger}, nil
}

// Unconfigured returns a client that never reaches a backend
func Unconfigured(logger *zap.Logger) *Client {
	return &Client{logger: logger}
}

// Configured reports whether the client has a connection pool
func (c *Client) Configured() bool {
	return c.pool != nil
}

// Pool exposes the underlying pool for migrations
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	if c.pool == nil {
		return ErrNotConfigured
	}
	return c.pool.Ping(ctx)
}

// Close releases the pool
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// SelectAll returns every row of table in stored order
func (c *Client) SelectAll(ctx context.Context, table string) (rows []domain.Record, err error) {
	defer c.observe(table, "select_all", time.Now(), &err)
	if err := c.check(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY position, id`, pgx.Identifier{table}.Sanitize())
	result, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	rows, err = pgx.CollectRows(result, pgx.RowTo[domain.Record])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	return rows, nil
}

// SelectOne returns the row with the given id
func (c *Client) SelectOne(ctx context.Context, table, id string) (row domain.Record, err error) {
	defer c.observe(table, "select_one", time.Now(), &err)
	if err := c.check(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, pgx.Identifier{table}.Sanitize())
	return c.one(ctx, table, query, id)
}

// SelectByField returns the first row whose top-level field equals value
func (c *Client) SelectByField(ctx context.Context, table, field, value string) (row domain.Record, err error) {
	defer c.observe(table, "select_by_field", time.Now(), &err)
	if err := c.check(table); err != nil {
		return nil, err
	}

	if field == "id" {
		query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, pgx.Identifier{table}.Sanitize())
		return c.one(ctx, table, query, value)
	}
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc->>$1 = $2 ORDER BY position, id LIMIT 1`,
		pgx.Identifier{table}.Sanitize())
	return c.one(ctx, table, query, field, value)
}

func (c *Client) one(ctx context.Context, table, query string, args ...any) (domain.Record, error) {
	result, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	row, err := pgx.CollectOneRow(result, pgx.RowTo[domain.Record])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	return row, nil
}

// UpsertMany inserts or replaces rows keyed by id in one transaction. The
// batch order becomes the stored order.
func (c *Client) UpsertMany(ctx context.Context, table string, rows []domain.Record) (err error) {
	defer c.observe(table, "upsert_many", time.Now(), &err)
	if err := c.check(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, doc, position, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET doc = EXCLUDED.doc, position = EXCLUDED.position, updated_at = now()`,
		pgx.Identifier{table}.Sanitize())

	batch := &pgx.Batch{}
	for i, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			return fmt.Errorf("failed to upsert %s row %d: %w", table, i, ErrMissingID)
		}
		batch.Queue(query, id, row, i)
	}

	err = pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", table, err)
	}
	return nil
}

// DeleteMany removes rows by id. It succeeds without a query when ids is
// empty or the client is unconfigured.
func (c *Client) DeleteMany(ctx context.Context, table string, ids []string) (err error) {
	if len(ids) == 0 || c.pool == nil {
		return nil
	}
	defer c.observe(table, "delete_many", time.Now(), &err)
	if err := c.check(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, pgx.Identifier{table}.Sanitize())
	if _, err := c.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (c *Client) check(table string) error {
	if c.pool == nil {
		return ErrNotConfigured
	}
	if !slices.Contains(domain.Collections, table) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// observe records latency and logs failures. Not-found and unconfigured
// results are expected outcomes, not failures.
func (c *Client) observe(table, op string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotConfigured) {
		return
	}
	metrics.RemoteLatency.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	metrics.RemoteErrorsTotal.WithLabelValues(table, op).Inc()
	c.logger.Error("Remote operation failed",
		zap.String("table", table),
		zap.String("op", op),
		zap.Error(err),
	)
}
