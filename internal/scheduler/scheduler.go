package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"PriceSentinel/internal/alert"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/history"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/recorder"
	"PriceSentinel/internal/strategy"
	"PriceSentinel/internal/watchlist"
)

// Target is an (item, platform) pair analyzed on every primary cycle.
type Target struct {
	ItemID   string `yaml:"item_id" json:"item_id"`
	Platform string `yaml:"platform" json:"platform"`
}

// Options configures the cadences and analysis parameters.
type Options struct {
	Targets             []Target
	Params              strategy.Params
	Interval            time.Duration // primary cycle period
	WatchlistMultiplier int           // watchlist sweep runs every Interval*WatchlistMultiplier
}

// Scheduler owns the cron cadences and the latest analysis results.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Watchlist *watchlist.Store
	History   *history.Log
	Evaluator *alert.Evaluator
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics

	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	latest map[string]model.AnalysisResult
}

// NewScheduler creates a new Scheduler. Cycles run under a context derived
// from ctx which Stop cancels.
func NewScheduler(ctx context.Context, opts Options, col *collector.Collector, wl *watchlist.Store,
	hist *history.Log, ev *alert.Evaluator, n notifier.Notifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.WatchlistMultiplier <= 0 {
		opts.WatchlistMultiplier = 2
	}
	if n == nil {
		n = notifier.LogNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.New()
	}

	logger := cron.PrintfLogger(log.Default())
	cctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		Cron:      cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		Collector: col,
		Watchlist: wl,
		History:   hist,
		Evaluator: ev,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		opts:      opts,
		ctx:       cctx,
		cancel:    cancel,
		latest:    make(map[string]model.AnalysisResult),
	}
}

// RegisterAll registers the primary cycle and the watchlist sweep.
func (s *Scheduler) RegisterAll() error {
	primary := fmt.Sprintf("@every %s", s.opts.Interval)
	if _, err := s.Cron.AddFunc(primary, func() { s.primaryCycle(s.ctx) }); err != nil {
		return fmt.Errorf("register primary cycle: %w", err)
	}
	sweep := fmt.Sprintf("@every %s", s.opts.Interval*time.Duration(s.opts.WatchlistMultiplier))
	if _, err := s.Cron.AddFunc(sweep, func() { s.watchlistSweep(s.ctx) }); err != nil {
		return fmt.Errorf("register watchlist sweep: %w", err)
	}
	log.Printf("[INFO] cadences registered: primary %s, watchlist %s", primary, sweep)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops scheduling new cycles and cancels running ones. The returned
// context is done once running cycles have returned.
func (s *Scheduler) Stop() context.Context {
	done := s.Cron.Stop()
	s.cancel()
	log.Println("[INFO] scheduler stopped")
	return done
}

// RunPrimaryNow executes the primary cycle immediately and returns its results.
func (s *Scheduler) RunPrimaryNow(ctx context.Context) []model.AnalysisResult {
	return s.primaryCycle(ctx)
}

// RunWatchlistNow executes the watchlist sweep immediately.
func (s *Scheduler) RunWatchlistNow(ctx context.Context) []model.AnalysisResult {
	return s.watchlistSweep(ctx)
}

// Result returns the latest analysis for a pair.
func (s *Scheduler) Result(itemID, platform string) (model.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.latest[pairKey(itemID, platform)]
	return res, ok
}

// Results returns the latest analyses ordered by item then platform.
func (s *Scheduler) Results() []model.AnalysisResult {
	s.mu.RLock()
	out := make([]model.AnalysisResult, 0, len(s.latest))
	for _, res := range s.latest {
		out = append(out, res)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

func pairKey(itemID, platform string) string { return itemID + "/" + platform }

func (s *Scheduler) primaryCycle(ctx context.Context) []model.AnalysisResult {
	log.Printf("[INFO] running primary cycle (%d targets)", len(s.opts.Targets))
	start := time.Now()
	defer s.observe(metrics.CadencePrimary, start)

	var results []model.AnalysisResult
	for _, t := range s.opts.Targets {
		if ctx.Err() != nil {
			log.Printf("[WARN] primary cycle cancelled: %v", ctx.Err())
			break
		}
		res, ok := s.analyze(ctx, metrics.CadencePrimary, t.ItemID, t.Platform)
		if !ok {
			continue
		}
		// Concurrent appends from an overlapping refresh may drop a price.
		if err := s.History.Append(ctx, res.ItemID, res.Platform, res.Latest); err != nil {
			log.Printf("[ERROR] append history %s/%s: %v", res.ItemID, res.Platform, err)
		}
		if a := s.Evaluator.CheckStrongSignal(res); a != nil {
			s.raise(ctx, a)
		}
		results = append(results, res)
	}
	return results
}

func (s *Scheduler) watchlistSweep(ctx context.Context) []model.AnalysisResult {
	entries, err := s.Watchlist.List(ctx)
	if err != nil {
		log.Printf("[ERROR] list watchlist: %v", err)
		return nil
	}
	log.Printf("[INFO] running watchlist sweep (%d entries)", len(entries))
	s.Metrics.WatchlistEntries.Set(float64(len(entries)))
	start := time.Now()
	defer s.observe(metrics.CadenceWatchlist, start)

	var results []model.AnalysisResult
	for _, e := range entries {
		if ctx.Err() != nil {
			log.Printf("[WARN] watchlist sweep cancelled: %v", ctx.Err())
			break
		}
		res, ok := s.analyze(ctx, metrics.CadenceWatchlist, e.ItemID, e.Platform)
		if !ok {
			continue
		}
		if a := s.Evaluator.CheckDeviation(e, res); a != nil {
			s.raise(ctx, a)
		}
		results = append(results, res)
	}
	return results
}

// analyze fetches and analyzes one pair, storing and recording the result.
// It reports false when the pair was skipped.
func (s *Scheduler) analyze(ctx context.Context, cadence, itemID, platform string) (model.AnalysisResult, bool) {
	series, err := s.Collector.Collect(ctx, itemID, platform)
	if err != nil {
		log.Printf("[WARN] skip %s/%s: %v", itemID, platform, err)
		s.Metrics.SkippedTotal.WithLabelValues(cadence).Inc()
		return model.AnalysisResult{}, false
	}
	res, err := strategy.Analyze(series, s.opts.Params)
	if err != nil {
		log.Printf("[WARN] skip %s/%s: %v", itemID, platform, err)
		s.Metrics.SkippedTotal.WithLabelValues(cadence).Inc()
		return model.AnalysisResult{}, false
	}

	s.mu.Lock()
	s.latest[pairKey(itemID, platform)] = res
	s.mu.Unlock()
	s.Metrics.AnalysesTotal.WithLabelValues(cadence).Inc()

	log.Printf("[INFO] %s/%s latest=%.2f avg=%.2f dev=%+.2f%% rsi=%s trend=%s advice=%s confidence=%d",
		res.ItemID, res.Platform, res.Latest, res.Average, res.DeviationPct, res.RSI, res.Trend, res.Advice, res.Confidence)
	if err := s.Recorder.RecordAnalysis(&res); err != nil {
		log.Printf("[ERROR] record analysis: %v", err)
	}
	return res, true
}

func (s *Scheduler) raise(ctx context.Context, a *model.Alert) {
	log.Printf("[INFO] alert %s raised for %s/%s (value %.2f)", a.Kind, a.ItemID, a.Platform, a.Value)
	s.Metrics.AlertsTotal.WithLabelValues(string(a.Kind)).Inc()
	if err := s.Recorder.RecordAlert(a); err != nil {
		log.Printf("[ERROR] record alert: %v", err)
	}
	if err := s.Notifier.Notify(ctx, a); err != nil {
		s.Metrics.NotifyFailures.Inc()
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func (s *Scheduler) observe(cadence string, start time.Time) {
	s.Metrics.CyclesTotal.WithLabelValues(cadence).Inc()
	s.Metrics.CycleDuration.WithLabelValues(cadence).Observe(time.Since(start).Seconds())
}
