package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PriceSentinel/internal/kvstore"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Analysis struct {
		RSIPeriod       int     `yaml:"rsi_period"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerPeriod int     `yaml:"bollinger_period"`
		BollingerK      float64 `yaml:"bollinger_k"`
		RSIOversold     float64 `yaml:"rsi_oversold"`
		RSIOverbought   float64 `yaml:"rsi_overbought"`
	} `yaml:"analysis"`
	Schedule struct {
		PrimaryIntervalSeconds      int  `yaml:"primary_interval_seconds"`
		WatchlistIntervalMultiplier int  `yaml:"watchlist_interval_multiplier"`
		RunOnStart                  bool `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Alerts struct {
		DeviationThreshold  float64 `yaml:"deviation_threshold"`
		ConfidenceThreshold int     `yaml:"confidence_threshold"`
	} `yaml:"alerts"`
	Targets []scheduler.Target `yaml:"targets"`
	Source  struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"source"`
	Store struct {
		Backend    string `yaml:"backend"`
		Path       string `yaml:"path"`
		SQLitePath string `yaml:"sqlite_path"`
		RedisAddr  string `yaml:"redis_addr"`
		RedisPass  string `yaml:"redis_password"`
		RedisDB    int    `yaml:"redis_db"`
		Prefix     string `yaml:"prefix"`
	} `yaml:"store"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("SOURCE_BASE_URL", &c.Source.BaseURL)
	setString("SOURCE_API_KEY", &c.Source.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("STORE_BACKEND", &c.Store.Backend)
	setString("STORE_PATH", &c.Store.Path)
	setString("REDIS_ADDR", &c.Store.RedisAddr)
	setString("REDIS_PASSWORD", &c.Store.RedisPass)
	setString("KAFKA_TOPIC", &c.Kafka.Topic)
	setString("HTTP_ADDR", &c.HTTP.Addr)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setInt("PRIMARY_INTERVAL_SECONDS", &c.Schedule.PrimaryIntervalSeconds)
	setInt("CONFIDENCE_THRESHOLD", &c.Alerts.ConfidenceThreshold)
	setFloat("DEVIATION_THRESHOLD", &c.Alerts.DeviationThreshold)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		c.Schedule.RunOnStart = true
	}
}

func (c *Config) applyDefaults() {
	def := strategy.DefaultParams()
	a := &c.Analysis
	if a.RSIPeriod == 0 {
		a.RSIPeriod = def.RSIPeriod
	}
	if a.MACDFast == 0 {
		a.MACDFast = def.MACDFast
	}
	if a.MACDSlow == 0 {
		a.MACDSlow = def.MACDSlow
	}
	if a.MACDSignal == 0 {
		a.MACDSignal = def.MACDSignal
	}
	if a.BollingerPeriod == 0 {
		a.BollingerPeriod = def.BollingerPeriod
	}
	if a.BollingerK == 0 {
		a.BollingerK = def.BollingerK
	}
	if a.RSIOversold == 0 {
		a.RSIOversold = def.RSIOversold
	}
	if a.RSIOverbought == 0 {
		a.RSIOverbought = def.RSIOverbought
	}

	if c.Schedule.PrimaryIntervalSeconds == 0 {
		c.Schedule.PrimaryIntervalSeconds = 60
	}
	if c.Schedule.WatchlistIntervalMultiplier == 0 {
		c.Schedule.WatchlistIntervalMultiplier = 2
	}
	if c.Alerts.DeviationThreshold == 0 {
		c.Alerts.DeviationThreshold = 6.0
	}
	if c.Alerts.ConfidenceThreshold == 0 {
		c.Alerts.ConfidenceThreshold = 70
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/store.json"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "data/store.db"
	}
	if c.Store.Prefix == "" {
		c.Store.Prefix = "pricesentinel:"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "price-alerts"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/price_sentinel.db"
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	for i, t := range c.Targets {
		if t.ItemID == "" || t.Platform == "" {
			return fmt.Errorf("targets[%d]: item_id and platform are required", i)
		}
	}
	a := c.Analysis
	if a.RSIPeriod <= 0 || a.BollingerPeriod <= 0 || a.MACDSignal <= 0 {
		return fmt.Errorf("analysis periods must be positive")
	}
	if a.MACDFast <= 0 || a.MACDFast >= a.MACDSlow {
		return fmt.Errorf("analysis.macd_fast must be positive and below macd_slow")
	}
	if a.BollingerK <= 0 {
		return fmt.Errorf("analysis.bollinger_k must be positive")
	}
	if a.RSIOversold >= a.RSIOverbought {
		return fmt.Errorf("analysis.rsi_oversold must be below rsi_overbought")
	}
	if c.Schedule.PrimaryIntervalSeconds <= 0 || c.Schedule.WatchlistIntervalMultiplier <= 0 {
		return fmt.Errorf("schedule intervals must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Store.Backend {
	case "file", "memory", "sqlite":
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// Params returns the indicator settings.
func (c *Config) Params() strategy.Params {
	a := c.Analysis
	return strategy.Params{
		RSIPeriod:       a.RSIPeriod,
		RSIOversold:     a.RSIOversold,
		RSIOverbought:   a.RSIOverbought,
		MACDFast:        a.MACDFast,
		MACDSlow:        a.MACDSlow,
		MACDSignal:      a.MACDSignal,
		BollingerPeriod: a.BollingerPeriod,
		BollingerK:      a.BollingerK,
	}
}

// SchedulerOptions returns the cadence settings for the scheduler.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{
		Targets:             c.Targets,
		Params:              c.Params(),
		Interval:            time.Duration(c.Schedule.PrimaryIntervalSeconds) * time.Second,
		WatchlistMultiplier: c.Schedule.WatchlistIntervalMultiplier,
	}
}

// StoreOptions returns the kvstore selection.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Backend:   c.Store.Backend,
		Path:      c.Store.Path,
		SQLite:    c.Store.SQLitePath,
		RedisAddr: c.Store.RedisAddr,
		RedisPass: c.Store.RedisPass,
		RedisDB:   c.Store.RedisDB,
		Prefix:    c.Store.Prefix,
	}
}
