package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/alert"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/history"
	"PriceSentinel/internal/kvstore"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/strategy"
	"PriceSentinel/internal/watchlist"
)

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []*model.Alert
}

func (f *fakeNotifier) Notify(_ context.Context, a *model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeNotifier) kinds() []model.AlertKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AlertKind
	for _, a := range f.alerts {
		out = append(out, a.Kind)
	}
	return out
}

type fixture struct {
	sched   *Scheduler
	fetcher *collector.MockFetcher
	notes   *fakeNotifier
	history *history.Log
	wl      *watchlist.Store
}

func newFixture(t *testing.T, targets ...Target) *fixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	f := &fixture{
		fetcher: collector.NewMockFetcher(),
		notes:   &fakeNotifier{},
		history: history.NewLog(kv),
		wl:      watchlist.NewStore(kv),
	}
	f.sched = NewScheduler(context.Background(), Options{
		Targets:  targets,
		Params:   strategy.DefaultParams(),
		Interval: time.Hour,
	}, collector.NewCollector(f.fetcher), f.wl, f.history, alert.NewEvaluator(6, 70), f.notes, nil, nil)
	return f
}

// spike is flat at 100 then jumps: RSI overbought plus an upper band breach.
func spike() []float64 {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}
	prices[19] = 150
	return prices
}

func ramp(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	return prices
}

func TestPrimaryCycle_SkipsFailedTargets(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"}, Target{"3003", "C5"}, Target{"4001", "BUFF"})
	f.fetcher.Set("3003", "BUFF", ramp(30)...)
	f.fetcher.Errs["3003/C5"] = errors.New("connection refused")
	f.fetcher.Set("4001", "BUFF", 100, 105, 98, 102, 110)

	results := f.sched.RunPrimaryNow(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "3003", results[0].ItemID)
	assert.Equal(t, "4001", results[1].ItemID)

	_, ok := f.sched.Result("3003", "C5")
	assert.False(t, ok)
	res, ok := f.sched.Result("4001", "BUFF")
	require.True(t, ok)
	assert.Equal(t, 6.8, res.DeviationPct)

	// Deviation is only checked on the watchlist sweep.
	assert.Empty(t, f.notes.kinds())
}

func TestPrimaryCycle_AppendsLatestPrice(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"})
	f.fetcher.Set("3003", "BUFF", 10, 11, 12)

	ctx := context.Background()
	f.sched.RunPrimaryNow(ctx)
	f.fetcher.Set("3003", "BUFF", 10, 11, 12, 13)
	f.sched.RunPrimaryNow(ctx)

	logged, err := f.history.Load(ctx, "3003", "BUFF")
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 13}, logged)
}

func TestPrimaryCycle_StrongSignalAlert(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"})
	f.fetcher.Set("3003", "BUFF", spike()...)

	results := f.sched.RunPrimaryNow(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, model.AdviceSellAboveBand, results[0].Advice)
	assert.Equal(t, 70, results[0].Confidence)
	assert.Equal(t, []model.AlertKind{model.AlertStrongSignal}, f.notes.kinds())

	// No suppression: the same condition alerts again.
	f.sched.RunPrimaryNow(context.Background())
	assert.Len(t, f.notes.kinds(), 2)
}

func TestPrimaryCycle_CancelledContext(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"})
	f.fetcher.Set("3003", "BUFF", 1, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, f.sched.RunPrimaryNow(ctx))
	assert.Equal(t, 0, f.fetcher.Calls)
}

func TestWatchlistSweep_DeviationAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.wl.Add(ctx, "3003", "BUFF")
	require.NoError(t, err)
	_, _, err = f.wl.Add(ctx, "4001", "BUFF")
	require.NoError(t, err)
	_, _, err = f.wl.Add(ctx, "5005", "C5")
	require.NoError(t, err)

	f.fetcher.Set("3003", "BUFF", 100, 105, 98, 102, 110) // +6.8%
	f.fetcher.Set("4001", "BUFF", 100, 100, 101)          // below threshold

	results := f.sched.RunWatchlistNow(ctx)
	assert.Len(t, results, 2)
	kinds := f.notes.kinds()
	require.Len(t, kinds, 1)
	assert.Equal(t, model.AlertDeviation, kinds[0])
	assert.Equal(t, "3003", f.notes.alerts[0].ItemID)
}

func TestResultsAreSorted(t *testing.T) {
	f := newFixture(t, Target{"b", "X"}, Target{"a", "Y"}, Target{"a", "X"})
	for _, tg := range f.sched.opts.Targets {
		f.fetcher.Set(tg.ItemID, tg.Platform, 1, 2, 3)
	}
	f.sched.RunPrimaryNow(context.Background())

	var got []string
	for _, r := range f.sched.Results() {
		got = append(got, r.ItemID+"/"+r.Platform)
	}
	assert.Equal(t, []string{"a/X", "a/Y", "b/X"}, got)
}

func TestRegisterStartStop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sched.RegisterAll())
	assert.Len(t, f.sched.Cron.Entries(), 2)

	f.sched.Start()
	done := f.sched.Stop()
	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("stop did not complete")
	}
	assert.Error(t, f.sched.ctx.Err())
}

func TestHandleCommand(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"})
	f.fetcher.Set("3003", "BUFF", 100, 105, 98, 102, 110)
	ctx := context.Background()

	assert.Contains(t, f.sched.HandleCommand(ctx, "/help"), "/watch")
	assert.Contains(t, f.sched.HandleCommand(ctx, "hello"), "/watch")
	assert.Contains(t, f.sched.HandleCommand(ctx, "/watch 3003"), "Usage")

	assert.Equal(t, "✅ Watching 3003 @ BUFF", f.sched.HandleCommand(ctx, "/watch 3003 BUFF"))
	assert.Equal(t, "ℹ️ Already watching 3003 @ BUFF", f.sched.HandleCommand(ctx, "/watch@PriceBot 3003 BUFF"))
	assert.Contains(t, f.sched.HandleCommand(ctx, "/watchlist"), "3003 @ BUFF")

	reply := f.sched.HandleCommand(ctx, "/analyze")
	assert.True(t, strings.Contains(reply, "Avg: 103.00 (+6.80%)"), reply)

	assert.Equal(t, "🗑 Stopped watching 3003 @ BUFF", f.sched.HandleCommand(ctx, "/unwatch 3003 BUFF"))
	assert.Contains(t, f.sched.HandleCommand(ctx, "/unwatch 3003 BUFF"), "not on the watchlist")
	assert.Equal(t, "👀 Watchlist is empty", f.sched.HandleCommand(ctx, "/watchlist"))
}

func TestHandleCommand_AnalyzeNothing(t *testing.T) {
	f := newFixture(t, Target{"3003", "BUFF"})
	assert.Contains(t, f.sched.HandleCommand(context.Background(), "/analyze"), "No analysis available")
}

func TestWatchlistSweep_SkipsFailedEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, e := range []Target{{"3003", "BUFF"}, {"3003", "C5"}, {"4001", "BUFF"}} {
		_, _, err := f.wl.Add(ctx, e.ItemID, e.Platform)
		require.NoError(t, err)
	}
	f.fetcher.Set("3003", "BUFF", 100, 100, 101)
	f.fetcher.Errs["3003/C5"] = errors.New("connection refused")
	f.fetcher.Set("4001", "BUFF", 100, 105, 98, 102, 110)

	results := f.sched.RunWatchlistNow(ctx)
	require.Len(t, results, 2)
	assert.Equal(t, "3003", results[0].ItemID)
	assert.Equal(t, "4001", results[1].ItemID)
	assert.Equal(t, 3, f.fetcher.Calls)

	require.Equal(t, []model.AlertKind{model.AlertDeviation}, f.notes.kinds())
	assert.Equal(t, "4001", f.notes.alerts[0].ItemID)
}

func TestHandleCommand_EscapesNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "✅ Watching &lt;b @ A&amp;B", f.sched.HandleCommand(ctx, "/watch <b A&B"))
	assert.Contains(t, f.sched.HandleCommand(ctx, "/watchlist"), "&lt;b @ A&amp;B")
	assert.Equal(t, "🗑 Stopped watching &lt;b @ A&amp;B", f.sched.HandleCommand(ctx, "/unwatch <b A&B"))

	ok, err := f.wl.Contains(ctx, "<b", "A&B")
	require.NoError(t, err)
	assert.False(t, ok)
}
