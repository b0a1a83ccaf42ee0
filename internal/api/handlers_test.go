package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/alert"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/history"
	"PriceSentinel/internal/kvstore"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/strategy"
	"PriceSentinel/internal/watchlist"
)

func newTestServer(t *testing.T) (*httptest.Server, *history.Log) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	wl := watchlist.NewStore(kv)
	hist := history.NewLog(kv)
	m := metrics.New()

	fetcher := collector.NewMockFetcher()
	fetcher.Set("3003", "BUFF", 100, 105, 98, 102, 110)

	sched := scheduler.NewScheduler(context.Background(), scheduler.Options{
		Targets:  []scheduler.Target{{ItemID: "3003", Platform: "BUFF"}},
		Params:   strategy.DefaultParams(),
		Interval: time.Hour,
	}, collector.NewCollector(fetcher), wl, hist, alert.NewEvaluator(6, 70), notifier.LogNotifier{}, nil, m)

	srv := httptest.NewServer(SetupRoutes(NewHandler(sched, wl, hist, m.Handler())))
	t.Cleanup(srv.Close)
	return srv, hist
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRefreshAndAnalysis(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/analysis/3003/BUFF", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed []model.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&refreshed))
	require.Len(t, refreshed, 1)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/analysis/3003/BUFF", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, 6.8, raw["deviation_pct"])
	assert.Nil(t, raw["rsi"], "unavailable RSI encodes as null")

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/analysis", "")
	var all []model.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 1)
}

func TestWatchlistEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1/watchlist"

	resp := do(t, http.MethodPost, base, `{"item_id":"3003","platform":"BUFF"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, http.MethodPost, base, `{"item_id":"3003","platform":"BUFF"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodPost, base, `{"item_id":"","platform":"BUFF"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, http.MethodPost, base, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, base, "")
	var entries []model.WatchlistEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "3003", entries[0].ItemID)

	resp = do(t, http.MethodDelete, base+"/3003/BUFF", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, base+"/3003/BUFF", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, base, "")
	var body strings.Builder
	_, err := io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", body.String())
}

func TestExportHistory(t *testing.T) {
	srv, hist := newTestServer(t)
	require.NoError(t, hist.Append(context.Background(), "3003", "BUFF", 12.5, 13))

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/history/3003/BUFF.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	var body strings.Builder
	_, err := io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Index,Price\n1,12.5\n2,13\n", body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/api/v1/refresh", "")

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body strings.Builder
	_, err := io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `pricesentinel_cycles_total{cadence="primary"} 1`)
}
