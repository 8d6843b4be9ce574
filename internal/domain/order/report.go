package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
)

// ErrNoOrders is returned by reports that need at least one order to say
// anything meaningful. Absence of data is business-meaningful, not
// exceptional, so the transport layer turns this into a friendly message
// rather than a failure.
var ErrNoOrders = errors.New("no orders recorded")

// PopularDish is a dish name with the number of times it was ordered.
type PopularDish struct {
	Name  string
	Count int
}

// Pairing is a main/side dish combination with the number of orders that
// contained it.
type Pairing struct {
	MainDish string
	SideDish string
	Count    int
}

// Reporter computes read-side aggregations over the live order collection.
// It owns no state: every report is recomputed from Repository.List, so the
// result always reflects the latest committed writes. Reports never mutate
// the collection.
//
// Tie-break policy for all "most popular" reports: the higher count wins,
// and on equal counts the dish (or pairing) encountered first wins. Orders
// arrive in stable List order, so results are reproducible for a fixed
// collection.
type Reporter struct {
	dishes dish.Repository
	orders Repository
	now    func() time.Time
}

// NewReporter creates a Reporter backed by the given repositories.
func NewReporter(dishes dish.Repository, orders Repository) *Reporter {
	return &Reporter{
		dishes: dishes,
		orders: orders,
		now:    time.Now,
	}
}

// DailySales returns the total revenue of all orders created during the
// current local calendar day. Day bounds are inclusive at local midnight and
// exclusive at the next midnight. An empty day totals zero.
func (r *Reporter) DailySales(ctx context.Context) (decimal.Decimal, error) {
	orders, err := r.orders.List(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "list orders")
	}

	now := r.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var todays []Order
	for _, o := range orders {
		t := o.CreatedAt.In(now.Location())
		if !t.Before(start) && t.Before(end) {
			todays = append(todays, o)
		}
	}
	if len(todays) == 0 {
		return decimal.Zero, nil
	}

	byID, err := r.catalogFor(ctx, todays)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, o := range todays {
		sum, err := orderTotal(o, byID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(sum)
	}
	return total, nil
}

// MostPopularMainDish returns the main dish referenced by the most orders.
func (r *Reporter) MostPopularMainDish(ctx context.Context) (*PopularDish, error) {
	return r.popular(ctx, func(o Order) []string {
		return []string{o.MainDishID}
	})
}

// MostPopularSideDish flattens every order's side dish list and returns the
// side dish with the most occurrences.
func (r *Reporter) MostPopularSideDish(ctx context.Context) (*PopularDish, error) {
	return r.popular(ctx, func(o Order) []string {
		return o.SideDishIDs
	})
}

// MostCommonPairing flattens each order into one (main, side) pair per side
// dish, and returns the pair with the most occurrences, both sides resolved
// back to dish names.
func (r *Reporter) MostCommonPairing(ctx context.Context) (*Pairing, error) {
	orders, err := r.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	type pairKey struct {
		main, side string
	}
	counts := make(map[pairKey]int)
	var discovered []pairKey
	for _, o := range orders {
		for _, side := range o.SideDishIDs {
			k := pairKey{main: o.MainDishID, side: side}
			if counts[k] == 0 {
				discovered = append(discovered, k)
			}
			counts[k]++
		}
	}
	if len(discovered) == 0 {
		return nil, ErrNoOrders
	}

	var best pairKey
	bestCount := 0
	for _, k := range discovered {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}

	names, err := r.dishNames(ctx, []string{best.main, best.side})
	if err != nil {
		return nil, err
	}
	return &Pairing{
		MainDish: names[best.main],
		SideDish: names[best.side],
		Count:    bestCount,
	}, nil
}

// popular groups the dish ids produced by keys across all orders, counts
// them, and resolves the winner to its name.
func (r *Reporter) popular(ctx context.Context, keys func(Order) []string) (*PopularDish, error) {
	orders, err := r.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	counts := make(map[string]int)
	var discovered []string
	for _, o := range orders {
		for _, id := range keys(o) {
			if counts[id] == 0 {
				discovered = append(discovered, id)
			}
			counts[id]++
		}
	}
	if len(discovered) == 0 {
		return nil, ErrNoOrders
	}

	best := ""
	bestCount := 0
	for _, id := range discovered {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}

	names, err := r.dishNames(ctx, []string{best})
	if err != nil {
		return nil, err
	}
	return &PopularDish{Name: names[best], Count: bestCount}, nil
}

// dishNames resolves dish ids to names. Every id must resolve: reports only
// ever re-join ids taken from persisted orders, so a miss means the stored
// data violates the referential invariant.
func (r *Reporter) dishNames(ctx context.Context, ids []string) (map[string]string, error) {
	dishes, err := r.dishes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get dishes")
	}

	names := make(map[string]string, len(dishes))
	for _, d := range dishes {
		names[d.ID] = d.Name
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, errors.Errorf("dish %q referenced by orders is missing from the catalog", id)
		}
	}
	return names, nil
}

// catalogFor fetches every dish referenced by the given orders in one batch.
func (r *Reporter) catalogFor(ctx context.Context, orders []Order) (map[string]dish.Dish, error) {
	fetched, err := r.dishes.GetByIDs(ctx, dishIDs(orders))
	if err != nil {
		return nil, errors.Wrap(err, "get dishes")
	}

	byID := make(map[string]dish.Dish, len(fetched))
	for _, d := range fetched {
		byID[d.ID] = d
	}
	return byID, nil
}

// orderTotal prices one order by dereferencing its dish ids: main price plus
// every side price plus the dessert price when present.
func orderTotal(o Order, byID map[string]dish.Dish) (decimal.Decimal, error) {
	price := func(id string) (decimal.Decimal, error) {
		d, ok := byID[id]
		if !ok {
			return decimal.Zero, errors.Errorf("order %q references missing dish %q", o.ID, id)
		}
		return d.Price, nil
	}

	total, err := price(o.MainDishID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, id := range o.SideDishIDs {
		p, err := price(id)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(p)
	}
	if o.DessertDishID != "" {
		p, err := price(o.DessertDishID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(p)
	}
	return total, nil
}
