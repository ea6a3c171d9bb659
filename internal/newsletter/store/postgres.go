package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olivecrm/internal/newsletter/models"
	"olivecrm/pkg/platform/sentinel"
)

// PostgresStore persists newsletters in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed newsletter store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the newsletters table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS newsletters (
			id         SERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			target     TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure newsletters schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Newsletter) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO newsletters (title, content, target, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		n.Title, n.Content, n.Target, n.CreatedBy,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert newsletter: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, n models.Newsletter) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE newsletters SET title = $2, content = $3, target = $4
		WHERE id = $1`,
		n.ID, n.Title, n.Content, n.Target)
	if err != nil {
		return fmt.Errorf("update newsletter: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update newsletter: %w", err)
	}
	if count == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (models.Newsletter, error) {
	var n models.Newsletter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, target, created_by
		FROM newsletters WHERE id = $1`, id).
		Scan(&n.ID, &n.Title, &n.Content, &n.Target, &n.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Newsletter{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Newsletter{}, fmt.Errorf("find newsletter: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]models.Newsletter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, target, created_by
		FROM newsletters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	newsletters := []models.Newsletter{}
	for rows.Next() {
		var n models.Newsletter
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Target, &n.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		newsletters = append(newsletters, n)
	}
	return newsletters, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	if count == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
