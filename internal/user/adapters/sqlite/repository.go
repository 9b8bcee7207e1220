// Package sqlite provides the SQLite-backed customer repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jcmexdev/ecommerce-orders/internal/user/app"
	"github.com/jcmexdev/ecommerce-orders/internal/user/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id       TEXT PRIMARY KEY,
    email    TEXT NOT NULL UNIQUE,
    name     TEXT NOT NULL,
    phone    TEXT NOT NULL DEFAULT '',
    address  TEXT NOT NULL DEFAULT ''
);
`

type Repository struct {
	db *sql.DB
}

var _ app.Repository = (*Repository)(nil)

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
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, c *domain.Customer) error {
	const q = `
		INSERT INTO customers (id, email, name, phone, address)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			phone = excluded.phone,
			address = excluded.address`

	_, err := r.db.ExecContext(ctx, q, c.ID, c.Email, c.Name, c.Phone, c.Address)
	if err != nil {
		return fmt.Errorf("sqlite: save customer %q: %w", c.ID, err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT id, email, name, phone, address FROM customers WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id), id)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `SELECT id, email, name, phone, address FROM customers WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email), email)
}

func (r *Repository) FindAll(ctx context.Context) ([]*domain.Customer, error) {
	const q = `SELECT id, email, name, phone, address FROM customers ORDER BY email`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list customers: %w", err)
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Address); err != nil {
			return nil, fmt.Errorf("sqlite: scan customer: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate customers: %w", err)
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete customer %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row, key string) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Address)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find customer %q: %w", key, err)
	}
	return &c, nil
}
