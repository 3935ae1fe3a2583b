package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HoldingsConfig holds the asset sheet location.
type HoldingsConfig struct {
	FilePath string `yaml:"filePath"`
}

// FiatRatesConfig holds the fiat-rate archive configuration.
type FiatRatesConfig struct {
	ArchiveURL           string `yaml:"archiveURL"`
	CacheDir             string `yaml:"cacheDir"`
	LocalCurrency        string `yaml:"localCurrency"`
	CurrencySign         string `yaml:"currencySign"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// ExchangeConfig holds the centralized-exchange quote endpoint configuration.
type ExchangeConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"` // from MEXC_API_KEY, not the yaml file
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// AMMConfig holds the on-chain AMM quoter configuration.
type AMMConfig struct {
	RPCURL               string `yaml:"rpcURL"`
	V2RouterAddress      string `yaml:"v2RouterAddress"`
	V3QuoterAddress      string `yaml:"v3QuoterAddress"`
	RPCCallTimeoutMillis int64  `yaml:"rpcCallTimeoutMillis"`
	MaxConcurrentQuotes  int    `yaml:"maxConcurrentQuotes"`
	RateLimitPerSecond   int    `yaml:"rateLimitPerSecond"`
	RateLimitBurst       int    `yaml:"rateLimitBurst"`
}

// StockConfig holds the stock price endpoints configuration.
type StockConfig struct {
	NaverBaseURL         string `yaml:"naverBaseURL"`
	YahooBaseURL         string `yaml:"yahooBaseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// NotifyConfig holds the chat notification configuration.
type NotifyConfig struct {
	WebhookURL           string   `yaml:"webhookURL"` // from DISCORD_WEBHOOK_URL, not the yaml file
	HighlightSymbols     []string `yaml:"highlightSymbols"`
	RequestTimeoutMillis int64    `yaml:"requestTimeoutMillis"`
}

// CacheConfig holds quote memoization settings for one aggregation pass.
type CacheConfig struct {
	QuoteTTLSeconds int `yaml:"quoteTTLSeconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Holdings    HoldingsConfig    `yaml:"holdings"`
	FiatRates   FiatRatesConfig   `yaml:"fiatRates"`
	Exchange    ExchangeConfig    `yaml:"exchange"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	AMM         AMMConfig         `yaml:"amm"`
	Stocks      StockConfig       `yaml:"stocks"`
	Notify      NotifyConfig      `yaml:"notify"`
	Cache       CacheConfig       `yaml:"cache"`
}

// Load reads the YAML configuration file from the given path and unmarshals
// it, then applies defaults for anything the file left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	logrus.Infof("Configuration loaded from %s", path)
	return &cfg, nil
}

// ApplyEnv merges environment-provided secrets into the config. This is the
// only place the environment is read; everything below main receives the
// explicit struct.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("MEXC_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8050"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Holdings.FilePath == "" {
		cfg.Holdings.FilePath = "data/holdings.csv"
	}

	if cfg.FiatRates.ArchiveURL == "" {
		cfg.FiatRates.ArchiveURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.zip"
	}
	if cfg.FiatRates.CacheDir == "" {
		cfg.FiatRates.CacheDir = "data"
	}
	if cfg.FiatRates.LocalCurrency == "" {
		cfg.FiatRates.LocalCurrency = "KRW"
	}
	if cfg.FiatRates.CurrencySign == "" {
		cfg.FiatRates.CurrencySign = "₩"
	}
	if cfg.FiatRates.RequestTimeoutMillis == 0 {
		cfg.FiatRates.RequestTimeoutMillis = 30000
	}

	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api.mexc.com"
	}
	if cfg.Exchange.RequestTimeoutMillis == 0 {
		cfg.Exchange.RequestTimeoutMillis = 10000
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis == 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	if cfg.AMM.RPCURL == "" {
		cfg.AMM.RPCURL = "https://eth.llamarpc.com"
	}
	if cfg.AMM.V2RouterAddress == "" {
		cfg.AMM.V2RouterAddress = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	}
	if cfg.AMM.V3QuoterAddress == "" {
		cfg.AMM.V3QuoterAddress = "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"
	}
	if cfg.AMM.RPCCallTimeoutMillis == 0 {
		cfg.AMM.RPCCallTimeoutMillis = 10000
	}
	if cfg.AMM.MaxConcurrentQuotes <= 0 {
		cfg.AMM.MaxConcurrentQuotes = 10
	}
	if cfg.AMM.RateLimitPerSecond <= 0 {
		cfg.AMM.RateLimitPerSecond = 20
	}
	if cfg.AMM.RateLimitBurst <= 0 {
		cfg.AMM.RateLimitBurst = 10
	}

	if cfg.Stocks.NaverBaseURL == "" {
		cfg.Stocks.NaverBaseURL = "https://fchart.stock.naver.com"
	}
	if cfg.Stocks.YahooBaseURL == "" {
		cfg.Stocks.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Stocks.RequestTimeoutMillis == 0 {
		cfg.Stocks.RequestTimeoutMillis = 10000
	}

	if len(cfg.Notify.HighlightSymbols) == 0 {
		cfg.Notify.HighlightSymbols = []string{"TAO", "ETH"}
	}
	if cfg.Notify.RequestTimeoutMillis == 0 {
		cfg.Notify.RequestTimeoutMillis = 10000
	}

	if cfg.Cache.QuoteTTLSeconds <= 0 {
		cfg.Cache.QuoteTTLSeconds = 60
	}
}
