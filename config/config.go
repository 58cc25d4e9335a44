package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger             `mapstructure:"logger"`
	DB           Database           `mapstructure:"database"`
	API          API                `mapstructure:"api"`
	Cache        Cache              `mapstructure:"cache"`
	Binance      BinanceConfig      `mapstructure:"binance"`
	YahooFinance YahooFinanceConfig `mapstructure:"yahoo_finance"`
	Backtest     BacktestConfig     `mapstructure:"backtest"`
	Scheduler    Scheduler          `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port            int     `mapstructure:"port"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int     `mapstructure:"rate_limit_burst"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type BinanceConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type YahooFinanceConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// BacktestConfig carries the operational knobs of the backtest runner.
// Strategy thresholds live in the gate registry, not here.
type BacktestConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	DefaultVersion string        `mapstructure:"default_version"`
	PersistResults bool          `mapstructure:"persist_results"`
	CandleCacheTTL time.Duration `mapstructure:"candle_cache_ttl"`
}

type Scheduler struct {
	Enabled     bool     `mapstructure:"enabled"`
	CronSpec    string   `mapstructure:"cron_spec"`
	Style       string   `mapstructure:"style"`
	Symbols     []string `mapstructure:"symbols"`
	HorizonDays int      `mapstructure:"horizon_days"`
	// RetentionDays prunes persisted runs older than this after each
	// scheduled batch. Zero keeps history forever.
	RetentionDays int `mapstructure:"retention_days"`
}

func Load() (*Config, error) {
	// .env is optional, real deployments use injected env vars
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RateLimitPerSec == 0 {
		cfg.API.RateLimitPerSec = 10
	}
	if cfg.API.RateLimitBurst == 0 {
		cfg.API.RateLimitBurst = 30
	}
	if cfg.Cache.DefaultExpiration == 0 {
		cfg.Cache.DefaultExpiration = 5 * time.Minute
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = 10 * time.Minute
	}
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com"
	}
	if cfg.Binance.Timeout == 0 {
		cfg.Binance.Timeout = 10 * time.Second
	}
	if cfg.Binance.MaxRequestPerMinute == 0 {
		cfg.Binance.MaxRequestPerMinute = 60
	}
	if cfg.YahooFinance.BaseURL == "" {
		cfg.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.YahooFinance.Timeout == 0 {
		cfg.YahooFinance.Timeout = 10 * time.Second
	}
	if cfg.YahooFinance.MaxRequestPerMinute == 0 {
		cfg.YahooFinance.MaxRequestPerMinute = 30
	}
	if cfg.Backtest.MaxConcurrency == 0 {
		cfg.Backtest.MaxConcurrency = 4
	}
	if cfg.Backtest.DefaultVersion == "" {
		cfg.Backtest.DefaultVersion = "v6.1"
	}
	if cfg.Backtest.CandleCacheTTL == 0 {
		cfg.Backtest.CandleCacheTTL = 10 * time.Minute
	}
	if cfg.Scheduler.CronSpec == "" {
		cfg.Scheduler.CronSpec = "0 18 * * 1-5"
	}
	if cfg.Scheduler.Style == "" {
		cfg.Scheduler.Style = "swing"
	}
	if cfg.Scheduler.HorizonDays == 0 {
		cfg.Scheduler.HorizonDays = 365
	}
}
