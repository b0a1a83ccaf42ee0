package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"PriceSentinel/internal/model"
)

// SQLiteRecorder persists analysis results and alerts to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			item_id        TEXT NOT NULL,
			platform       TEXT NOT NULL,
			latest         REAL,
			highest        REAL,
			lowest         REAL,
			average        REAL,
			deviation_pct  REAL,
			rsi            REAL,
			macd_line      REAL,
			macd_signal    REAL,
			macd_histogram REAL,
			bb_mid         REAL,
			bb_upper       REAL,
			bb_lower       REAL,
			trend          TEXT,
			trend_score    INTEGER,
			advice         TEXT,
			confidence     INTEGER,
			points         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_pair_ts ON analyses(item_id, platform, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			item_id    TEXT NOT NULL,
			platform   TEXT NOT NULL,
			value      REAL,
			threshold  REAL,
			advice     TEXT,
			confidence INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an unavailable reading to SQL NULL.
func nullable(v model.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.Valid}
}

func (r *SQLiteRecorder) RecordAnalysis(res *model.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analyses
		(timestamp, item_id, platform, latest, highest, lowest, average, deviation_pct,
		 rsi, macd_line, macd_signal, macd_histogram, bb_mid, bb_upper, bb_lower,
		 trend, trend_score, advice, confidence, points)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.ComputedAt.Unix(), res.ItemID, res.Platform,
		res.Latest, res.Highest, res.Lowest, res.Average, res.DeviationPct,
		nullable(res.RSI),
		nullable(res.MACD.Line), nullable(res.MACD.Signal), nullable(res.MACD.Histogram),
		nullable(res.Bollinger.Mid), nullable(res.Bollinger.Upper), nullable(res.Bollinger.Lower),
		string(res.Trend), res.TrendScore, string(res.Advice), res.Confidence, res.Points,
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(a *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts
		(id, timestamp, kind, item_id, platform, value, threshold, advice, confidence)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		a.ID, a.RaisedAt.Unix(), string(a.Kind), a.ItemID, a.Platform,
		a.Value, a.Threshold, string(a.Result.Advice), a.Result.Confidence,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
