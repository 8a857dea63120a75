package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const ordersSchema = `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		utterance TEXT NOT NULL,
		intent TEXT NOT NULL,
		subtotal REAL NOT NULL,
		discount REAL NOT NULL,
		total REAL NOT NULL,
		distinct_items INTEGER NOT NULL,
		total_units REAL NOT NULL,
		ticket TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC);
`

// Open opens the sqlite database at path and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(ordersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring orders schema: %w", err)
	}
	return db, nil
}

// OrderRepository handles order history persistence.
type OrderRepository struct {
	db DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a processed order, assigning id and timestamp when unset.
func (r *OrderRepository) Create(ctx context.Context, order *Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO orders (id, utterance, intent, subtotal, discount, total,
			distinct_items, total_units, ticket, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		order.ID.String(), order.Utterance, order.Intent, order.Subtotal, order.Discount,
		order.Total, order.DistinctItems, order.TotalUnits, string(order.Ticket), order.CreatedAt,
	)
	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT id, utterance, intent, subtotal, discount, total,
			distinct_items, total_units, ticket, created_at
		FROM orders WHERE id = ?
	`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return order, err
}

// List retrieves the most recent orders, newest first.
func (r *OrderRepository) List(ctx context.Context, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, utterance, intent, subtotal, discount, total,
			distinct_items, total_units, ticket, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		order  Order
		id     string
		ticket string
	)
	if err := row.Scan(
		&id, &order.Utterance, &order.Intent, &order.Subtotal, &order.Discount,
		&order.Total, &order.DistinctItems, &order.TotalUnits, &ticket, &order.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing order id %q: %w", id, err)
	}
	order.ID = parsed
	order.Ticket = []byte(ticket)
	return &order, nil
}
