package dish

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SeedEntry describes one dish in the baseline catalog.
type SeedEntry struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// ParseMenu decodes a JSON menu document into seed entries.
func ParseMenu(data []byte) ([]SeedEntry, error) {
	var entries []SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parse menu")
	}
	return entries, nil
}

// Seed inserts every entry whose name is not yet present in the catalog.
// A failure on one entry is logged and does not stop the rest of the batch.
// Running Seed again with the same entries is a no-op, which makes it safe
// on every process start and under concurrent startup of several instances:
// whoever wins the insert race seeds the dish, everyone else sees a conflict
// and moves on.
func Seed(ctx context.Context, lg *zap.Logger, repo Repository, entries []SeedEntry) {
	for _, e := range entries {
		inserted, err := repo.CreateIfAbsent(ctx, Dish{
			ID:       uuid.New().String(),
			Name:     e.Name,
			Category: e.Category,
			Price:    e.Price,
		})
		if err != nil {
			lg.Error("seed dish",
				zap.String("name", e.Name),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			lg.Info("seeded dish",
				zap.String("name", e.Name),
				zap.String("category", e.Category),
			)
		}
	}
}
