package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"PriceSentinel/internal/model"
)

// ErrNoSeries means the source had no usable data for the item this cycle.
var ErrNoSeries = errors.New("no price series")

// MockFetcher returns fixed series keyed by "item/platform" for development and testing.
type MockFetcher struct {
	mu     sync.Mutex
	Series map[string][]float64
	Errs   map[string]error
	Calls  int
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Series: make(map[string][]float64), Errs: make(map[string]error)}
}

// Set replaces the prices served for an item on a platform.
func (m *MockFetcher) Set(itemID, platform string, prices ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Series[itemID+"/"+platform] = prices
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, itemID, platform string) (model.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	key := itemID + "/" + platform
	if err := m.Errs[key]; err != nil {
		return model.PriceSeries{}, err
	}
	prices, ok := m.Series[key]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("%s: %w", key, ErrNoSeries)
	}
	return generateSeries(itemID, platform, prices), nil
}

func generateSeries(itemID, platform string, prices []float64) model.PriceSeries {
	now := time.Now()
	pts := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = model.PricePoint{Time: now.Add(-time.Duration(len(prices)-i) * time.Hour), Price: p}
	}
	return model.PriceSeries{ItemID: itemID, Platform: platform, Points: pts, FetchedAt: now}
}

// Collector fetches series and enforces the analysis invariants on them.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches the series for an item, orders it by time, and drops
// non-positive prices and repeated timestamps. It returns ErrNoSeries when
// nothing usable remains.
func (c *Collector) Collect(ctx context.Context, itemID, platform string) (model.PriceSeries, error) {
	series, err := c.Fetcher.FetchSeries(ctx, itemID, platform)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch %s/%s from %s: %w", itemID, platform, c.Fetcher.Name(), err)
	}
	series = Normalize(series)
	if series.Len() == 0 {
		return model.PriceSeries{}, fmt.Errorf("%s/%s: %w", itemID, platform, ErrNoSeries)
	}
	return series, nil
}

// Normalize sorts points ascending by time, keeps strictly positive prices
// and the first point of any repeated timestamp.
func Normalize(series model.PriceSeries) model.PriceSeries {
	series = series.Filter()
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Time.Before(series.Points[j].Time)
	})

	out := series.Points[:0]
	for i, p := range series.Points {
		if i > 0 && !p.Time.After(out[len(out)-1].Time) {
			continue
		}
		out = append(out, p)
	}
	series.Points = out
	return series
}
