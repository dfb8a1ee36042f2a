package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	db querier
}

type designRepository struct {
	db querier
}

// session binds repositories to one transaction.
type session struct {
	tx pgx.Tx
}

func (s *session) Orders() repository.OrderRepository {
	return &orderRepository{db: s.tx}
}

func (s *session) Designs() repository.DesignRepository {
	return &designRepository{db: s.tx}
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{db: s.pool}
}

func (s *Storage) Designs() repository.DesignRepository {
	return &designRepository{db: s.pool}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            client_info TEXT,
            status TEXT NOT NULL DEFAULT 'new',
            original_path TEXT NOT NULL DEFAULT '',
            original_preview_path TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS designs (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            design_path TEXT NOT NULL,
            design_preview_path TEXT,
            converted_path TEXT,
            status TEXT NOT NULL DEFAULT 'design_completed',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_designs_order ON designs(order_id, id DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, client_info, status, original_path, original_preview_path, created_at`

func (r *orderRepository) Create(ctx context.Context, clientInfo *string) (*model.Order, error) {
	const query = `INSERT INTO orders (client_info, status) VALUES ($1, $2) RETURNING id, created_at`
	order := model.Order{ClientInfo: clientInfo, Status: model.OrderStatusNew}
	if err := r.db.QueryRow(ctx, query, clientInfo, model.OrderStatusNew).Scan(&order.ID, &order.CreatedAt); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var o model.Order
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.ClientInfo, &o.Status, &o.OriginalPath, &o.OriginalPreviewPath, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) SetOriginalPath(ctx context.Context, id int64, remotePath string) error {
	return execOne(ctx, r.db, `UPDATE orders SET original_path=$1 WHERE id=$2`, remotePath, id)
}

func (r *orderRepository) SetOriginalPreviewPath(ctx context.Context, id int64, remotePath string) error {
	return execOne(ctx, r.db, `UPDATE orders SET original_preview_path=$1 WHERE id=$2`, remotePath, id)
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM orders WHERE id=$1`, id)
}

// --- DesignRepository implementation ---

const designColumns = `id, order_id, design_path, design_preview_path, converted_path, status, created_at`

func (r *designRepository) Create(ctx context.Context, orderID int64, designPath string) (*model.Design, error) {
	const query = `INSERT INTO designs (order_id, design_path, status) VALUES ($1, $2, $3) RETURNING id, created_at`
	design := model.Design{OrderID: orderID, DesignPath: designPath, Status: model.DesignStatusCompleted}
	err := r.db.QueryRow(ctx, query, orderID, designPath, model.DesignStatusCompleted).Scan(&design.ID, &design.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &design, nil
}

func (r *designRepository) GetByID(ctx context.Context, id int64) (*model.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *designRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE order_id=$1 ORDER BY id DESC LIMIT 1`
	return r.scanOne(ctx, query, orderID)
}

func (r *designRepository) SetPreviewPath(ctx context.Context, id int64, remotePath string) error {
	return execOne(ctx, r.db, `UPDATE designs SET design_preview_path=$1 WHERE id=$2`, remotePath, id)
}

func (r *designRepository) SetConvertedPath(ctx context.Context, id int64, remotePath string, status model.DesignStatus) error {
	return execOne(ctx, r.db, `UPDATE designs SET converted_path=$1, status=$2 WHERE id=$3`, remotePath, status, id)
}

func (r *designRepository) scanOne(ctx context.Context, query string, arg int64) (*model.Design, error) {
	var d model.Design
	err := r.db.QueryRow(ctx, query, arg).Scan(&d.ID, &d.OrderID, &d.DesignPath, &d.DesignPreviewPath, &d.ConvertedPath, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db querier, query string, args ...any) error {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// WithinSession runs fn against repositories bound to a fresh transaction.
func (s *Storage) WithinSession(ctx context.Context, fn func(repository.Session) error) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&session{tx: tx})
	})
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
