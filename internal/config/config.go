// Package config loads the bot configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Solana   SolanaConfig   `yaml:"solana"`
	Storage  StorageConfig  `yaml:"storage"`
	Contest  ContestConfig  `yaml:"contest"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	Debug       bool   `yaml:"debug"`
	PollTimeout int    `yaml:"poll_timeout"` // seconds
}

// OracleConfig configures the price API.
type OracleConfig struct {
	MoralisBaseURL   string        `yaml:"moralis_base_url"`
	CoinGeckoBaseURL string        `yaml:"coingecko_base_url"`
	APIKey           string        `yaml:"api_key"`
	Timeout          time.Duration `yaml:"timeout"`
	RatePerSecond    float64       `yaml:"rate_per_second"`
	RateBurst        int           `yaml:"rate_burst"`
	SymbolCacheTTL   time.Duration `yaml:"symbol_cache_ttl"`
}

// SolanaConfig configures the JSON-RPC client.
type SolanaConfig struct {
	RPCEndpoint string        `yaml:"rpc_endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// StorageConfig selects the ledger backend and optional side stores.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // memory | sqlite | postgres
	PostgresDSN   string `yaml:"postgres_dsn"`
	SQLitePath    string `yaml:"sqlite_path"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // price tape, optional
	RedisAddr     string `yaml:"redis_addr"`     // registration sessions, optional
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// ContestConfig holds the contest rules.
type ContestConfig struct {
	FixedStakeNative       float64       `yaml:"fixed_stake_native"`
	TopN                   int           `yaml:"top_n"`
	SessionTTL             time.Duration `yaml:"session_ttl"`
	LeaderboardConcurrency int           `yaml:"leaderboard_concurrency"`
}

// HTTPConfig configures the status API.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Load reads the YAML file at path (optional when empty), loads .env if
// present, applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites values with environment variables when present.
func applyEnvOverrides(cfg *Config) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	// API_KEY is the historical name of the Moralis key.
	setString(&cfg.Oracle.APIKey, "MORALIS_API_KEY", "API_KEY")
	setString(&cfg.Oracle.MoralisBaseURL, "MORALIS_BASE_URL")
	setString(&cfg.Oracle.CoinGeckoBaseURL, "COINGECKO_BASE_URL")
	setString(&cfg.Solana.RPCEndpoint, "SOLANA_RPC_ENDPOINT")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Storage.ClickhouseDSN, "CLICKHOUSE_DSN")
	setString(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Storage.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.HTTP.Addr, "HTTP_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("FIXED_STAKE_NATIVE"); v != "" {
		stake, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config.Load: FIXED_STAKE_NATIVE: %w", err)
		}
		cfg.Contest.FixedStakeNative = stake
	}
	return nil
}

// setDefaults fills in unset values.
func setDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeout <= 0 {
		cfg.Telegram.PollTimeout = 60
	}
	if cfg.Oracle.MoralisBaseURL == "" {
		cfg.Oracle.MoralisBaseURL = "https://solana-gateway.moralis.io"
	}
	if cfg.Oracle.CoinGeckoBaseURL == "" {
		cfg.Oracle.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Oracle.Timeout <= 0 {
		cfg.Oracle.Timeout = 10 * time.Second
	}
	if cfg.Oracle.RatePerSecond <= 0 {
		cfg.Oracle.RatePerSecond = 20
	}
	if cfg.Oracle.RateBurst <= 0 {
		cfg.Oracle.RateBurst = 5
	}
	if cfg.Oracle.SymbolCacheTTL <= 0 {
		cfg.Oracle.SymbolCacheTTL = time.Hour
	}
	if cfg.Solana.RPCEndpoint == "" {
		cfg.Solana.RPCEndpoint = "https://api.mainnet-beta.solana.com"
	}
	if cfg.Solana.Timeout <= 0 {
		cfg.Solana.Timeout = 15 * time.Second
	}
	if cfg.Solana.MaxRetries < 0 {
		cfg.Solana.MaxRetries = 0
	}
	if cfg.Storage.Driver == "" {
		switch {
		case cfg.Storage.PostgresDSN != "":
			cfg.Storage.Driver = DriverPostgres
		case cfg.Storage.SQLitePath != "":
			cfg.Storage.Driver = DriverSQLite
		default:
			cfg.Storage.Driver = DriverMemory
		}
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Contest.FixedStakeNative <= 0 {
		cfg.Contest.FixedStakeNative = 0.5
	}
	if cfg.Contest.TopN <= 0 {
		cfg.Contest.TopN = 10
	}
	if cfg.Contest.SessionTTL <= 0 {
		cfg.Contest.SessionTTL = 10 * time.Minute
	}
	if cfg.Contest.LeaderboardConcurrency <= 0 {
		cfg.Contest.LeaderboardConcurrency = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate checks that the configuration can run the ledger.
// The Telegram token is checked separately by RequireTelegram.
func (c *Config) Validate() error {
	var errs []error
	if c.Oracle.APIKey == "" {
		errs = append(errs, errors.New("oracle.api_key (MORALIS_API_KEY) is required"))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path (SQLITE_PATH) is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn (POSTGRES_DSN) is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// RequireTelegram checks that a bot token is configured.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token (TELEGRAM_BOT_TOKEN) is required")
	}
	return nil
}
