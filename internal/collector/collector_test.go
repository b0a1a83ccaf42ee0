package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/model"
)

func TestNormalize(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return t0.Add(time.Duration(h) * time.Hour) }

	in := model.PriceSeries{Points: []model.PricePoint{
		{Time: at(3), Price: 130},
		{Time: at(1), Price: 110},
		{Time: at(2), Price: 0},
		{Time: at(2), Price: 120},
		{Time: at(1), Price: 111},
		{Time: at(4), Price: -1},
	}}
	out := Normalize(in)

	require.Len(t, out.Points, 3)
	assert.Equal(t, []float64{110, 120, 130}, out.Prices())
	for i := 1; i < out.Len(); i++ {
		assert.True(t, out.Points[i].Time.After(out.Points[i-1].Time))
	}
	// input untouched
	assert.Equal(t, 130.0, in.Points[0].Price)
}

func TestCollector_MockFetcher(t *testing.T) {
	ctx := context.Background()
	mf := NewMockFetcher()
	mf.Set("1001", "PS", 100, 0, 105)
	c := NewCollector(mf)

	s, err := c.Collect(ctx, "1001", "PS")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 105}, s.Prices())

	_, err = c.Collect(ctx, "1001", "PC")
	assert.ErrorIs(t, err, ErrNoSeries)

	mf.Set("2002", "PS", 0, -3)
	_, err = c.Collect(ctx, "2002", "PS")
	assert.ErrorIs(t, err, ErrNoSeries)

	boom := errors.New("boom")
	mf.Errs["3003/PS"] = boom
	_, err = c.Collect(ctx, "3003", "PS")
	assert.ErrorIs(t, err, boom)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/prices", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("item") {
		case "1001":
			assert.Equal(t, "PS", r.URL.Query().Get("platform"))
			w.Write([]byte(`[[1767225600000, 15000], [1767229200000, 14800], [1767232800000, 0]]`))
		case "string-time":
			w.Write([]byte(`[["2026-01-01", 100], ["2026-01-02", 105], ["2026-01-03", 98]]`))
		case "null-price":
			w.Write([]byte(`[[1767225600000, 15000], [1767229200000, null]]`))
		case "short-row":
			w.Write([]byte(`[[1767225600000, 15000], [1767229200000]]`))
		case "empty":
			w.Write([]byte(`[]`))
		case "missing":
			http.NotFound(w, r)
		case "garbage":
			w.Write([]byte(`<html>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, "secret", "")
	ctx := context.Background()

	s, err := f.FetchSeries(ctx, "1001", "PS")
	require.NoError(t, err)
	require.Len(t, s.Points, 3)
	assert.Equal(t, 15000.0, s.Points[0].Price)
	assert.Equal(t, time.UnixMilli(1767225600000), s.Points[0].Time)
	assert.Equal(t, 0.0, s.Points[2].Price) // filtered later by the collector

	c := NewCollector(f)
	clean, err := c.Collect(ctx, "1001", "PS")
	require.NoError(t, err)
	assert.Equal(t, []float64{15000, 14800}, clean.Prices())

	_, err = f.FetchSeries(ctx, "missing", "PS")
	assert.ErrorIs(t, err, ErrNoSeries)

	_, err = f.FetchSeries(ctx, "garbage", "PS")
	assert.ErrorIs(t, err, ErrNoSeries)

	for _, item := range []string{"string-time", "null-price", "short-row", "empty"} {
		_, err = f.FetchSeries(ctx, item, "PS")
		assert.ErrorIs(t, err, ErrNoSeries, item)
		_, err = c.Collect(ctx, item, "PS")
		assert.ErrorIs(t, err, ErrNoSeries, item)
	}

	_, err = f.FetchSeries(ctx, "other", "PS")
	assert.Error(t, err)
}
