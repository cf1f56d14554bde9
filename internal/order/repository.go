package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("orderbot.internal.order")

// ErrNoOrders is returned when a customer has no saved orders.
var ErrNoOrders = errors.New("order: no orders for customer")

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists orders in Postgres.
type Repository struct {
	db     Querier
	tracer trace.Tracer
}

// NewRepository initializes a repository backed by a pgx pool.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("order: querier required")
	}
	return &Repository{db: db, tracer: tracer}
}

// Add commits a draft as a new pending order. The creation timestamp is
// assigned by the database server, never by the caller.
func (r *Repository) Add(ctx context.Context, draft Draft) (*Order, error) {
	ctx, span := r.tracer.Start(ctx, "order.add")
	defer span.End()

	id := uuid.New()
	query := `
		INSERT INTO orders (id, customer_id, customer_name, food_item, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	o := Order{
		ID:            id.String(),
		CustomerID:    draft.CustomerID,
		CustomerName:  draft.CustomerName,
		FoodItem:      draft.FoodItem,
		PaymentMethod: draft.PaymentMethod,
		Status:        StatusPending,
	}
	if err := r.db.QueryRow(ctx, query,
		id,
		draft.CustomerID,
		draft.CustomerName,
		draft.FoodItem,
		draft.PaymentMethod,
		StatusPending,
	).Scan(&o.CreatedAt); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("order: insert failed: %w", err)
	}
	return &o, nil
}

// LatestByCustomer returns the customer's most recent order, or ErrNoOrders.
func (r *Repository) LatestByCustomer(ctx context.Context, customerID string) (*Order, error) {
	ctx, span := r.tracer.Start(ctx, "order.latest_by_customer")
	defer span.End()

	query := `
		SELECT id, customer_id, customer_name, food_item, payment_method, status, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var o Order
	if err := r.db.QueryRow(ctx, query, customerID).Scan(
		&o.ID,
		&o.CustomerID,
		&o.CustomerName,
		&o.FoodItem,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOrders
		}
		span.RecordError(err)
		return nil, fmt.Errorf("order: latest query failed: %w", err)
	}
	return &o, nil
}

// ScanCreatedDesc walks every order in descending created_at order,
// calling fn for each row. Iteration stops on the first error from fn.
func (r *Repository) ScanCreatedDesc(ctx context.Context, fn func(Order) error) error {
	ctx, span := r.tracer.Start(ctx, "order.scan_created_desc")
	defer span.End()

	query := `
		SELECT id, customer_id, customer_name, food_item, payment_method, status, created_at
		FROM orders
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("order: scan query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.CustomerName,
			&o.FoodItem,
			&o.PaymentMethod,
			&o.Status,
			&o.CreatedAt,
		); err != nil {
			return fmt.Errorf("order: scan row failed: %w", err)
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("order: scan iteration failed: %w", err)
	}
	return nil
}
