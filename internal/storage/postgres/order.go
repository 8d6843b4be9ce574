package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, main_dish_id, side_dish_ids, dessert_dish_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	createOrderIfAbsentSQL = `INSERT INTO orders (id, main_dish_id, side_dish_ids, dessert_dish_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	listOrdersSQL = `SELECT id, main_dish_id, side_dish_ids, dessert_dish_id, created_at
		FROM orders ORDER BY created_at, id`

	getOrderByIDSQL = `SELECT id, main_dish_id, side_dish_ids, dessert_dish_id, created_at
		FROM orders WHERE id = $1`

	updateOrderSQL = `UPDATE orders
		SET main_dish_id = $2, side_dish_ids = $3, dessert_dish_id = $4
		WHERE id = $1
		RETURNING created_at`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Every
// operation is a single statement, so a create can never partially commit.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.MainDishID, o.SideDishIDs, nullable(o.DessertDishID), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}
	return nil
}

// CreateIfAbsent persists the order unless its id already exists. It reports
// whether a row was inserted. Used by the historical import, where export
// files may repeat rows.
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, o *order.Order) (bool, error) {
	tag, err := r.pool.Exec(ctx, createOrderIfAbsentSQL,
		o.ID, o.MainDishID, o.SideDishIDs, nullable(o.DessertDishID), o.CreatedAt,
	)
	if err != nil {
		return false, errors.Wrapf(err, "insert order %q", o.ID)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every order sorted by creation time, then id.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return &o, nil
}

// Update replaces the three dish references of an existing order. The
// creation timestamp is immutable and is read back into o.CreatedAt.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	row := r.pool.QueryRow(ctx, updateOrderSQL,
		o.ID, o.MainDishID, o.SideDishIDs, nullable(o.DessertDishID),
	)
	if err := row.Scan(&o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return errors.Wrapf(err, "update order %q", o.ID)
	}
	return nil
}

// Delete removes an order by id.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o       order.Order
		dessert *string
	)
	err := row.Scan(&o.ID, &o.MainDishID, &o.SideDishIDs, &dessert, &o.CreatedAt)
	if dessert != nil {
		o.DessertDishID = *dessert
	}
	return o, err
}

// nullable maps an empty dessert reference to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
