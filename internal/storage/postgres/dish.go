package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
)

const (
	getDishByNameSQL = `SELECT id, name, category, price
		FROM dishes WHERE name = $1`

	getDishesByIDsSQL = `SELECT id, name, category, price
		FROM dishes WHERE id = ANY($1)`

	listDishesByCategorySQL = `SELECT id, name, category, price
		FROM dishes WHERE category = $1 ORDER BY name`

	insertDishIfAbsentSQL = `INSERT INTO dishes (id, name, category, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`
)

var _ dish.Repository = (*DishRepository)(nil)

// DishRepository implements dish.Repository backed by PostgreSQL.
type DishRepository struct {
	pool *pgxpool.Pool
}

// NewDishRepository returns a DishRepository that uses the given pool.
func NewDishRepository(pool *pgxpool.Pool) *DishRepository {
	return &DishRepository{pool: pool}
}

// GetByName resolves a dish by its unique name.
func (r *DishRepository) GetByName(ctx context.Context, name string) (*dish.Dish, error) {
	rows, err := r.pool.Query(ctx, getDishByNameSQL, name)
	if err != nil {
		return nil, errors.Wrapf(err, "get dish %q", name)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDish)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dish.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get dish %q", name)
	}
	return &d, nil
}

// GetByIDs returns dishes matching any of the given ids.
func (r *DishRepository) GetByIDs(ctx context.Context, ids []string) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, getDishesByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get dishes by ids")
	}
	return pgx.CollectRows(rows, scanDish)
}

// ListByCategory returns every dish in the given category, ordered by name.
func (r *DishRepository) ListByCategory(ctx context.Context, category string) ([]dish.Dish, error) {
	rows, err := r.pool.Query(ctx, listDishesByCategorySQL, category)
	if err != nil {
		return nil, errors.Wrapf(err, "list dishes in category %q", category)
	}
	return pgx.CollectRows(rows, scanDish)
}

// CreateIfAbsent inserts the dish unless its name is already taken. The
// ON CONFLICT clause makes concurrent seeding from several instances safe.
func (r *DishRepository) CreateIfAbsent(ctx context.Context, d dish.Dish) (bool, error) {
	tag, err := r.pool.Exec(ctx, insertDishIfAbsentSQL, d.ID, d.Name, d.Category, d.Price)
	if err != nil {
		return false, errors.Wrapf(err, "insert dish %q", d.Name)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDish(row pgx.CollectableRow) (dish.Dish, error) {
	var (
		d     dish.Dish
		price decimal.Decimal
	)
	err := row.Scan(&d.ID, &d.Name, &d.Category, &price)
	d.Price = price
	return d, err
}
