package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"superstore-analytics/internal/models"
)

// Querier is the part of pgxpool.Pool the source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads orders from a table with the normalized column
// names (order_id, customer_id, order_date, ...).
type PostgresSource struct {
	db    Querier
	table string
}

func NewPostgresSource(db Querier, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

// OpenPool connects to databaseURL and verifies the connection.
func OpenPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

func selectQuery(table string) string {
	ident := pgx.Identifier(strings.Split(table, "."))
	return fmt.Sprintf(`SELECT order_id, customer_id, order_date, region, category, sub_category,
	product_name, sales::float8, profit::float8, discount::float8, quantity::int4
FROM %s`, ident.Sanitize())
}

func (s *PostgresSource) Load(ctx context.Context) ([]models.Order, error) {
	if s.db == nil {
		return nil, errors.New("postgres source has no connection")
	}
	if strings.TrimSpace(s.table) == "" {
		return nil, errors.New("postgres source has no table")
	}

	rows, err := s.db.Query(ctx, selectQuery(s.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var (
			o        models.Order
			date     time.Time
			quantity int32
		)
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &date, &o.Region, &o.Category, &o.SubCategory,
			&o.ProductName, &o.Sales, &o.Profit, &o.Discount, &quantity); err != nil {
			return nil, &LoadError{Line: len(orders) + 1, Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
		}
		o.OrderDate = date
		o.Quantity = int(quantity)
		if err := validate(o, len(orders)+1); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return orders, nil
}
