package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"olivecrm/internal/employee/models"
	"olivecrm/pkg/platform/sentinel"
)

// PostgresStore persists employees in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed employee store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the employees table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS employees (
			id            SERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			status        TEXT NOT NULL,
			last_login    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure employees schema: %w", err)
	}
	return nil
}

// Create inserts a new employee. ON CONFLICT keeps the insert atomic; a taken
// username surfaces as ErrConflict without a racy pre-check.
func (s *PostgresStore) Create(ctx context.Context, e *models.Employee) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO employees (username, name, password_hash, role, status, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO NOTHING
		RETURNING id`,
		e.Username, e.Name, e.PasswordHash, e.Role, e.Status, e.LastLogin,
	).Scan(&e.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, e models.Employee) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = $2, password_hash = $3, role = $4, status = $5, last_login = $6
		WHERE id = $1`,
		e.ID, e.Name, e.PasswordHash, e.Role, e.Status, e.LastLogin)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (models.Employee, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, username, name, password_hash, role, status, last_login
		FROM employees WHERE id = $1`, id))
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (models.Employee, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, username, name, password_hash, role, status, last_login
		FROM employees WHERE username = $1`, username))
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, name, password_hash, role, status, last_login
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Username, &e.Name, &e.PasswordHash, &e.Role, &e.Status, &e.LastLogin); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// MarkInactiveSince flips ACTIVE employees whose last login predates the
// cutoff to INACTIVE, returning how many changed.
func (s *PostgresStore) MarkInactiveSince(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET status = $1
		WHERE status = $2 AND last_login < $3`,
		models.StatusInactive, models.StatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark employees inactive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark employees inactive: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (models.Employee, error) {
	var e models.Employee
	err := row.Scan(&e.ID, &e.Username, &e.Name, &e.PasswordHash, &e.Role, &e.Status, &e.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("find employee: %w", err)
	}
	return e, nil
}
