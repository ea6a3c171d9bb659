package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olivecrm/internal/product/models"
	"olivecrm/pkg/platform/sentinel"
)

// PostgresStore persists products in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed product store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the products table if it does not exist yet. The
// (name, variant) pair is unique; ingestion relies on it to upsert.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id               SERIAL PRIMARY KEY,
			product_name     TEXT NOT NULL,
			product_variant  TEXT NOT NULL DEFAULT '',
			individual_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (product_name, product_variant)
		)`)
	if err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Product) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (product_name, product_variant, individual_price)
		VALUES ($1, $2, $3)
		RETURNING id`,
		p.ProductName, p.ProductVariant, p.IndividualPrice,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET product_name = $2, product_variant = $3, individual_price = $4
		WHERE id = $1`,
		p.ID, p.ProductName, p.ProductVariant, p.IndividualPrice)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (models.Product, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, product_name, product_variant, individual_price
		FROM products WHERE id = $1`, id))
}

func (s *PostgresStore) FindByNameVariant(ctx context.Context, name, variant string) (models.Product, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, product_name, product_variant, individual_price
		FROM products WHERE product_name = $1 AND product_variant = $2`, name, variant))
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_name, product_variant, individual_price
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.ProductName, &p.ProductVariant, &p.IndividualPrice); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.ProductName, &p.ProductVariant, &p.IndividualPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}
