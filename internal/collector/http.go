package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"PriceSentinel/internal/model"
)

// HTTPFetcher reads price series from a JSON endpoint that returns
// [[unixMillis, price], ...] pairs.
type HTTPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPFetcher creates a new fetcher with optional proxy support.
func NewHTTPFetcher(baseURL, apiKey, proxyURL string) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) FetchSeries(ctx context.Context, itemID, platform string) (model.PriceSeries, error) {
	q := url.Values{}
	q.Set("item", itemID)
	q.Set("platform", platform)
	endpoint := fmt.Sprintf("%s/api/v1/prices?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, fmt.Errorf("%s/%s: %w", itemID, platform, ErrNoSeries)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.PriceSeries{}, fmt.Errorf("fetch prices: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows [][]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return model.PriceSeries{}, fmt.Errorf("decode prices: %v: %w", err, ErrNoSeries)
	}

	series := model.PriceSeries{ItemID: itemID, Platform: platform, FetchedAt: time.Now()}
	for i, row := range rows {
		pt, ok := parseRow(row)
		if !ok {
			return model.PriceSeries{}, fmt.Errorf("%s/%s: malformed row %d: %w", itemID, platform, i, ErrNoSeries)
		}
		series.Points = append(series.Points, pt)
	}
	if series.Len() == 0 {
		return model.PriceSeries{}, fmt.Errorf("%s/%s: %w", itemID, platform, ErrNoSeries)
	}
	return series, nil
}

// parseRow reads a [unixMillis, price] pair. Both fields must be JSON numbers.
func parseRow(row []any) (model.PricePoint, bool) {
	if len(row) != 2 {
		return model.PricePoint{}, false
	}
	ts, ok := row[0].(float64)
	if !ok {
		return model.PricePoint{}, false
	}
	price, ok := row[1].(float64)
	if !ok {
		return model.PricePoint{}, false
	}
	return model.PricePoint{Time: time.UnixMilli(int64(ts)), Price: price}, true
}
