// Package sqlite provides the SQLite-backed order repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the workflow writes while list/read endpoints may be querying.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order/ports"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps Docker (Alpine) builds simple.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id           TEXT PRIMARY KEY,
    customer_id  TEXT NOT NULL,
    product_id   TEXT NOT NULL,
    quantity     INTEGER NOT NULL,

    -- Decimal stored as TEXT to keep exact money arithmetic out of floats.
    total_price  TEXT NOT NULL,

    status       TEXT NOT NULL,

    -- RFC3339 stored as TEXT, SQLite idiom.
    order_date   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id, order_date);
`

// Repository is the SQLite implementation of ports.Repository.
type Repository struct {
	db *sql.DB
}

var _ ports.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir %q: %w", dir, err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save upserts the order by ID. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, o *domain.Order) error {
	const q = `
		INSERT INTO orders (id, customer_id, product_id, quantity, total_price, status, order_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status`

	_, err := r.db.ExecContext(ctx, q,
		o.ID,
		o.CustomerID,
		o.ProductID,
		o.Quantity,
		o.TotalPrice.String(),
		string(o.Status),
		o.OrderDate.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order %q: %w", o.ID, err)
	}
	return nil
}

// FindByID returns the order or sql.ErrNoRows wrapped with the ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT id, customer_id, product_id, quantity, total_price, status, order_date
		FROM   orders
		WHERE  id = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: order %q not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}
	return o, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	const q = `
		SELECT id, customer_id, product_id, quantity, total_price, status, order_date
		FROM   orders
		ORDER  BY order_date`

	return r.queryOrders(ctx, q)
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	const q = `
		SELECT id, customer_id, product_id, quantity, total_price, status, order_date
		FROM   orders
		WHERE  customer_id = ?
		ORDER  BY order_date`

	return r.queryOrders(ctx, q, customerID)
}

func (r *Repository) queryOrders(ctx context.Context, q string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate orders: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var o domain.Order
	var total, status, orderDate string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &total, &status, &orderDate); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total_price %q: %w", total, err)
	}
	o.TotalPrice = price
	o.Status = domain.Status(status)

	o.OrderDate, err = time.Parse(time.RFC3339Nano, orderDate)
	if err != nil {
		return nil, fmt.Errorf("parse order_date %q: %w", orderDate, err)
	}
	return &o, nil
}
