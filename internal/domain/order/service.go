package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
)

// Sentinel errors for malformed order input. These are the client's fault
// and are never retried.
var (
	ErrMainDishRequired   = errors.New("main dish is required")
	ErrSideDishesRequired = errors.New("at least one side dish is required")
	ErrInvalidOrderID     = errors.New("order id is not a valid UUID")
)

// DishNotFoundError indicates that a referenced dish does not exist in the
// catalog. Ref holds whatever the caller used to reference the dish: a name
// on create, an id on update.
type DishNotFoundError struct {
	Role string // "main dish", "side dish" or "dessert"
	Ref  string
}

func (e *DishNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Role, e.Ref)
}

// CategoryMismatchError indicates that a referenced dish exists but belongs
// to the wrong category for its role in the order, e.g. a dessert submitted
// as the main dish.
type CategoryMismatchError struct {
	Name string
	Got  string
	Want string
}

func (e *CategoryMismatchError) Error() string {
	return fmt.Sprintf("dish %q has category %q, want %q", e.Name, e.Got, e.Want)
}

// PlaceOrderRequest holds the input for creating an order. All dishes are
// referenced by name.
type PlaceOrderRequest struct {
	MainDish   string
	SideDishes []string
	Dessert    string // empty means no dessert
}

// UpdateRequest holds the replacement references for an existing order.
// Unlike create, dishes are referenced by id; the asymmetry is deliberate
// and existing callers depend on it.
type UpdateRequest struct {
	ID            string
	MainDishID    string
	SideDishIDs   []string
	DessertDishID string
}

// roleOf maps a dish category to the role name used in error messages.
var roleOf = map[string]string{
	dish.CategoryMain:    "main dish",
	dish.CategorySide:    "side dish",
	dish.CategoryDessert: "dessert",
}

// Service owns the order collection. It validates every dish reference
// against the catalog before persisting, which is the only referential
// integrity the system has: the storage layer carries no foreign keys.
type Service struct {
	dishes dish.Repository
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service backed by the given repositories.
func NewService(dishes dish.Repository, orders Repository) *Service {
	return &Service{
		dishes: dishes,
		orders: orders,
		now:    time.Now,
	}
}

// PlaceOrder validates the prospective order and persists it. Validation is
// fail-fast: the first missing field or unresolved dish name aborts the whole
// operation with zero side effects. Side dishes are resolved in input order.
// On success the persisted order is returned with all references expanded.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Expanded, error) {
	if req.MainDish == "" {
		return nil, ErrMainDishRequired
	}
	if len(req.SideDishes) == 0 {
		return nil, ErrSideDishesRequired
	}

	main, err := s.resolveName(ctx, req.MainDish, dish.CategoryMain)
	if err != nil {
		return nil, err
	}

	sides := make([]dish.Dish, len(req.SideDishes))
	for i, name := range req.SideDishes {
		sd, err := s.resolveName(ctx, name, dish.CategorySide)
		if err != nil {
			return nil, err
		}
		sides[i] = *sd
	}

	var dessert *dish.Dish
	if req.Dessert != "" {
		dessert, err = s.resolveName(ctx, req.Dessert, dish.CategoryDessert)
		if err != nil {
			return nil, err
		}
	}

	o := &Order{
		ID:          uuid.New().String(),
		MainDishID:  main.ID,
		SideDishIDs: make([]string, len(sides)),
		CreatedAt:   s.now(),
	}
	for i, sd := range sides {
		o.SideDishIDs[i] = sd.ID
	}
	if dessert != nil {
		o.DessertDishID = dessert.ID
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &Expanded{
		ID:         o.ID,
		MainDish:   *main,
		SideDishes: sides,
		Dessert:    dessert,
		CreatedAt:  o.CreatedAt,
	}, nil
}

// Get returns a single order with all dish references expanded.
func (s *Service) Get(ctx context.Context, id string) (*Expanded, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	byID, err := s.catalogFor(ctx, []Order{*o})
	if err != nil {
		return nil, err
	}
	return expand(*o, byID)
}

// List returns every order with all dish references expanded. Dishes are
// fetched in a single batch regardless of how many orders there are.
func (s *Service) List(ctx context.Context) ([]Expanded, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byID, err := s.catalogFor(ctx, orders)
	if err != nil {
		return nil, err
	}

	out := make([]Expanded, len(orders))
	for i, o := range orders {
		e, err := expand(o, byID)
		if err != nil {
			return nil, err
		}
		out[i] = *e
	}
	return out, nil
}

// Update replaces the three dish references of an existing order. The order
// id must be a well-formed UUID, the order must exist, and every replacement
// id must resolve to a catalog dish of the right category. The stored
// creation timestamp is kept.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Expanded, error) {
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, ErrInvalidOrderID
	}
	if req.MainDishID == "" {
		return nil, ErrMainDishRequired
	}
	if len(req.SideDishIDs) == 0 {
		return nil, ErrSideDishesRequired
	}

	o := &Order{
		ID:            req.ID,
		MainDishID:    req.MainDishID,
		SideDishIDs:   req.SideDishIDs,
		DessertDishID: req.DessertDishID,
	}

	byID, err := s.catalogFor(ctx, []Order{*o})
	if err != nil {
		return nil, err
	}
	if err := checkReferences(*o, byID); err != nil {
		return nil, err
	}

	if err := s.orders.Update(ctx, o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "update order %q", req.ID)
	}

	return expand(*o, byID)
}

// Delete removes an order by id. Dish records are never touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "delete order %q", id)
	}
	return nil
}

// resolveName looks up a dish by name and verifies it belongs to the
// category expected for its role in the order.
func (s *Service) resolveName(ctx context.Context, name, want string) (*dish.Dish, error) {
	d, err := s.dishes.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, dish.ErrNotFound) {
			return nil, &DishNotFoundError{Role: roleOf[want], Ref: name}
		}
		return nil, errors.Wrapf(err, "resolve %s %q", roleOf[want], name)
	}
	if d.Category != want {
		return nil, &CategoryMismatchError{Name: d.Name, Got: d.Category, Want: want}
	}
	return d, nil
}

// catalogFor fetches every dish referenced by the given orders in one batch
// and indexes the result by id.
func (s *Service) catalogFor(ctx context.Context, orders []Order) (map[string]dish.Dish, error) {
	ids := dishIDs(orders)
	if len(ids) == 0 {
		return map[string]dish.Dish{}, nil
	}

	fetched, err := s.dishes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get dishes")
	}

	byID := make(map[string]dish.Dish, len(fetched))
	for _, d := range fetched {
		byID[d.ID] = d
	}
	return byID, nil
}

// checkReferences verifies that every dish reference of o resolves and
// matches the category of its role. Used on update, where references arrive
// as raw ids.
func checkReferences(o Order, byID map[string]dish.Dish) error {
	check := func(id, want string) error {
		d, ok := byID[id]
		if !ok {
			return &DishNotFoundError{Role: roleOf[want], Ref: id}
		}
		if d.Category != want {
			return &CategoryMismatchError{Name: d.Name, Got: d.Category, Want: want}
		}
		return nil
	}

	if err := check(o.MainDishID, dish.CategoryMain); err != nil {
		return err
	}
	for _, id := range o.SideDishIDs {
		if err := check(id, dish.CategorySide); err != nil {
			return err
		}
	}
	if o.DessertDishID != "" {
		if err := check(o.DessertDishID, dish.CategoryDessert); err != nil {
			return err
		}
	}
	return nil
}

// expand resolves the references of a single order against the given dish
// index. A missing dish means the stored data violates the referential
// invariant and is reported as an internal error.
func expand(o Order, byID map[string]dish.Dish) (*Expanded, error) {
	main, ok := byID[o.MainDishID]
	if !ok {
		return nil, errors.Errorf("order %q references missing dish %q", o.ID, o.MainDishID)
	}

	sides := make([]dish.Dish, len(o.SideDishIDs))
	for i, id := range o.SideDishIDs {
		sd, ok := byID[id]
		if !ok {
			return nil, errors.Errorf("order %q references missing dish %q", o.ID, id)
		}
		sides[i] = sd
	}

	var dessert *dish.Dish
	if o.DessertDishID != "" {
		d, ok := byID[o.DessertDishID]
		if !ok {
			return nil, errors.Errorf("order %q references missing dish %q", o.ID, o.DessertDishID)
		}
		dessert = &d
	}

	return &Expanded{
		ID:         o.ID,
		MainDish:   main,
		SideDishes: sides,
		Dessert:    dessert,
		CreatedAt:  o.CreatedAt,
	}, nil
}
