package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is the persisted form of a purchase: one main dish, at least one
// side dish, and an optional dessert. It stores dish identities, never
// copies of dish data, so later reads always price against the live catalog.
type Order struct {
	ID            string
	MainDishID    string
	SideDishIDs   []string
	DessertDishID string // empty when the order has no dessert
	CreatedAt     time.Time
}

// Expanded is an order with every dish reference resolved to the full
// catalog record. This is the shape returned to callers.
type Expanded struct {
	ID         string
	MainDish   dish.Dish
	SideDishes []dish.Dish
	Dessert    *dish.Dish // nil when the order has no dessert
	CreatedAt  time.Time
}

// Repository defines persistence operations for orders.
//
// List must return orders sorted by creation time, then id, so that the
// reporting aggregations iterate in a stable order and tie-breaks stay
// deterministic.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// Update replaces the three dish references of an existing order and
	// fills in o.CreatedAt from the stored row. Returns ErrNotFound when no
	// order has o.ID.
	Update(ctx context.Context, o *Order) error
	// Delete removes an order irreversibly. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// dishIDs returns every dish id referenced by the given orders, deduplicated,
// in first-reference order.
func dishIDs(orders []Order) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, o := range orders {
		add(o.MainDishID)
		for _, id := range o.SideDishIDs {
			add(id)
		}
		add(o.DessertDishID)
	}
	return ids
}
