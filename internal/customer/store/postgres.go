package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olivecrm/internal/customer/models"
	"olivecrm/pkg/platform/sentinel"
)

// PostgresStore persists customers in PostgreSQL. Customer ids come from the
// sales data, so the primary key is not generated.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed customer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the customers table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS customers (
			id      INTEGER PRIMARY KEY,
			zipcode TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure customers schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, c models.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, zipcode) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET zipcode = EXCLUDED.zipcode`,
		c.ID, c.Zipcode)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (models.Customer, error) {
	var c models.Customer
	err := s.db.QueryRowContext(ctx, `SELECT id, zipcode FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Zipcode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, zipcode FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Zipcode); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
