// Package store is the Postgres-backed document store for products, sales,
// and suppliers. One pooled connection is created at process start and
// shared by all concurrent chat invocations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
	PingTimeout  time.Duration `envconfig:"PING_TIMEOUT" split_words:"true" default:"5s"`
}

// Inventory is the read surface the warehouse tools depend on.
type Inventory interface {
	SuppliersByCategory(ctx context.Context, category string) ([]Supplier, error)
	ProductsByName(ctx context.Context, name string) ([]Product, error)
	AllProducts(ctx context.Context) ([]Product, error)
	AllSales(ctx context.Context) ([]Sale, error)
	RecentSales(ctx context.Context, limit int) ([]Sale, error)
}

type DB struct {
	bun *bun.DB
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{bun: db}, nil
}

func (d *DB) Close() error {
	return d.bun.Close()
}

// Ping checks the connection. Used by the readiness probe.
func (d *DB) Ping(ctx context.Context) error {
	return d.bun.PingContext(ctx)
}

// SuppliersByCategory matches suppliers whose category contains the item
// name, case-insensitively. An empty result is returned as-is; the agent
// decides how to proceed.
func (d *DB) SuppliersByCategory(ctx context.Context, category string) ([]Supplier, error) {
	var suppliers []Supplier
	q := d.bun.NewSelect().Model(&suppliers).Order("name ASC")
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		q = q.Where("category ILIKE ?", "%"+trimmed+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (d *DB) ProductsByName(ctx context.Context, name string) ([]Product, error) {
	var products []Product
	q := d.bun.NewSelect().Model(&products).Order("name ASC")
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		q = q.Where("name ILIKE ?", "%"+trimmed+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return products, nil
}

func (d *DB) AllProducts(ctx context.Context) ([]Product, error) {
	return d.ProductsByName(ctx, "")
}

func (d *DB) AllSales(ctx context.Context) ([]Sale, error) {
	var sales []Sale
	if err := d.bun.NewSelect().Model(&sales).Scan(ctx); err != nil {
		return nil, err
	}
	return sales, nil
}

func (d *DB) RecentSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 5
	}
	var sales []Sale
	if err := d.bun.NewSelect().Model(&sales).Order("date DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	return sales, nil
}

var _ Inventory = (*DB)(nil)
