package dish

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested dish does not exist.
var ErrNotFound = errors.New("dish not found")

// Dish categories. Every dish belongs to exactly one.
const (
	CategoryMain    = "main"
	CategorySide    = "side"
	CategoryDessert = "dessert"
)

// Dish is a single catalog entry. Dishes are created by the startup seeding
// routine and are immutable afterwards; orders reference them by id so the
// catalog stays the single source of truth for names and prices.
type Dish struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
}

// Repository defines the catalog store operations.
type Repository interface {
	// GetByName resolves a dish by its unique name. Returns ErrNotFound when
	// no dish uses that name.
	GetByName(ctx context.Context, name string) (*Dish, error)
	// GetByIDs returns the dishes matching any of the given ids. Missing ids
	// are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Dish, error)
	// ListByCategory returns every dish in the given category.
	ListByCategory(ctx context.Context, category string) ([]Dish, error)
	// CreateIfAbsent inserts the dish unless another dish already uses its
	// name. It reports whether a row was actually inserted.
	CreateIfAbsent(ctx context.Context, d Dish) (bool, error)
}
