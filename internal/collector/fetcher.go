package collector

import (
	"context"

	"PriceSentinel/internal/model"
)

// Fetcher retrieves the current price series of an item on a platform.
type Fetcher interface {
	FetchSeries(ctx context.Context, itemID, platform string) (model.PriceSeries, error)
	Name() string
}
