package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"olivecrm/internal/order/models"
)

// PostgresStore persists orders in PostgreSQL. All analytics primitives are
// single GROUP BY queries; grouping thresholds live in the service layer so
// the in-memory and SQL stores can never drift apart.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed order store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the orders table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id              SERIAL PRIMARY KEY,
			customer_id     INTEGER NOT NULL,
			product_id      INTEGER NOT NULL,
			quantity        INTEGER NOT NULL,
			total_cost      DOUBLE PRECISION NOT NULL,
			order_method    TEXT NOT NULL DEFAULT '',
			sales_date      DATE NOT NULL,
			sales_type      TEXT NOT NULL DEFAULT '',
			shipping_method TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("ensure orders schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, o *models.Order) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, product_id, quantity, total_cost, order_method, sales_date, sales_type, shipping_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		o.CustomerID, o.ProductID, o.Quantity, o.TotalCost, o.OrderMethod,
		DateOnly(o.SalesDate), o.SalesType, o.ShippingMethod,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.SalesDate = DateOnly(o.SalesDate)
	return nil
}

func (s *PostgresStore) FindFiltered(ctx context.Context, f models.Filter, page models.Page) ([]models.Order, int, error) {
	where, args := buildFilter(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM orders" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count filtered orders: %w", err)
	}

	query := `SELECT id, customer_id, product_id, quantity, total_cost, order_method, sales_date, sales_type, shipping_method
		FROM orders` + where + " ORDER BY id"
	if page.Size > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Size, page.Number*page.Size)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select filtered orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.TotalCost,
			&o.OrderMethod, &o.SalesDate, &o.SalesType, &o.ShippingMethod); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		o.SalesDate = DateOnly(o.SalesDate)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate filtered orders: %w", err)
	}
	return orders, total, nil
}

func (s *PostgresStore) FindByCustomer(ctx context.Context, customerID int) ([]models.Order, error) {
	cid := customerID
	orders, _, err := s.FindFiltered(ctx, models.Filter{CustomerID: &cid}, models.Unpaged())
	return orders, err
}

func (s *PostgresStore) MostRecentSalesDate(ctx context.Context) (time.Time, bool, error) {
	var latest sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(sales_date) FROM orders`).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, fmt.Errorf("most recent sales date: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return DateOnly(latest.Time), true, nil
}

func (s *PostgresStore) CustomersWithOrderBetween(ctx context.Context, start, end time.Time) ([]int, error) {
	return s.queryIDs(ctx, `
		SELECT DISTINCT customer_id FROM orders
		WHERE sales_date >= $1 AND sales_date <= $2
		ORDER BY customer_id`, DateOnly(start), DateOnly(end))
}

func (s *PostgresStore) CustomersWithAnyOrderUpTo(ctx context.Context, date time.Time) ([]int, error) {
	return s.queryIDs(ctx, `
		SELECT DISTINCT customer_id FROM orders
		WHERE sales_date <= $1
		ORDER BY customer_id`, DateOnly(date))
}

func (s *PostgresStore) OrderCountsByCustomerMonth(ctx context.Context) (map[int]map[string]int, error) {
	return s.queryBucketCounts(ctx, `
		SELECT customer_id, to_char(sales_date, 'YYYY-MM'), COUNT(*)
		FROM orders
		GROUP BY customer_id, to_char(sales_date, 'YYYY-MM')`)
}

func (s *PostgresStore) OrderCountsByCustomerQuarter(ctx context.Context) (map[int]map[string]int, error) {
	return s.queryBucketCounts(ctx, `
		SELECT customer_id, to_char(sales_date, 'YYYY-"Q"Q'), COUNT(*)
		FROM orders
		GROUP BY customer_id, to_char(sales_date, 'YYYY-"Q"Q')`)
}

func (s *PostgresStore) LifetimeOrderCounts(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT customer_id, COUNT(*) FROM orders GROUP BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("lifetime order counts: %w", err)
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan lifetime count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *PostgresStore) LifetimeSpendByCustomer(ctx context.Context) (map[int]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT customer_id, SUM(total_cost) FROM orders GROUP BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("lifetime spend: %w", err)
	}
	defer rows.Close()

	spend := map[int]float64{}
	for rows.Next() {
		var id int
		var sum float64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan lifetime spend: %w", err)
		}
		spend[id] = sum
	}
	return spend, rows.Err()
}

func (s *PostgresStore) queryIDs(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query customer ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan customer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) queryBucketCounts(ctx context.Context, query string) (map[int]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bucket counts: %w", err)
	}
	defer rows.Close()

	counts := map[int]map[string]int{}
	for rows.Next() {
		var id, n int
		var bucket string
		if err := rows.Scan(&id, &bucket, &n); err != nil {
			return nil, fmt.Errorf("scan bucket count: %w", err)
		}
		if counts[id] == nil {
			counts[id] = map[string]int{}
		}
		counts[id][bucket] = n
	}
	return counts, rows.Err()
}

// buildFilter renders a Filter into a WHERE clause. Single-date wins over a
// range, matching the filter precedence the API documents.
func buildFilter(f models.Filter) (string, []any) {
	var clauses []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CustomerID != nil {
		clauses = append(clauses, "customer_id = "+arg(*f.CustomerID))
	}
	if f.SalesType != nil {
		clauses = append(clauses, "sales_type = "+arg(*f.SalesType))
	}
	if len(f.ProductIDs) > 0 {
		placeholders := make([]string, len(f.ProductIDs))
		for i, pid := range f.ProductIDs {
			placeholders[i] = arg(pid)
		}
		clauses = append(clauses, "product_id IN ("+strings.Join(placeholders, ", ")+")")
	}
	switch {
	case f.SingleDate != nil:
		clauses = append(clauses, "sales_date = "+arg(DateOnly(*f.SingleDate)))
	case f.StartDate != nil && f.EndDate != nil:
		clauses = append(clauses, "sales_date >= "+arg(DateOnly(*f.StartDate)))
		clauses = append(clauses, "sales_date <= "+arg(DateOnly(*f.EndDate)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
