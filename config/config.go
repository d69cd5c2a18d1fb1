package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Gateway    GatewayConfig
	Cloudinary CloudinaryConfig
	Funding    FundingConfig
	Stats      StatsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// GatewayConfig points at the redirect-based payment provider.
type GatewayConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	UseStub      bool // in-process stub provider for development
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// FundingConfig carries the posting fee and the currency conversion
// table. Rates map a currency to its value in the reporting currency;
// the reporting currency itself maps to 1.
type FundingConfig struct {
	PostingFeeCents   int64
	PostingFeeCcy     string
	ReportingCcy      string
	Rates             map[string]float64
	MaxListLimit      int
	DefaultListLimit  int
}

type StatsConfig struct {
	RefreshInterval time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DB_DSN", "wishwell:wishwell@tcp(localhost:3306)/wishwell?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Gateway: GatewayConfig{
			BaseURL:      getenv("GATEWAY_BASE_URL", "https://api.sandbox.paypal.com"),
			ClientID:     getenv("GATEWAY_CLIENT_ID", ""),
			ClientSecret: getenv("GATEWAY_CLIENT_SECRET", ""),
			Timeout:      getdur("GATEWAY_TIMEOUT", 15*time.Second),
			UseStub:      getenv("GATEWAY_PROVIDER", "") == "stub",
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getenv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getenv("CLOUDINARY_API_KEY", ""),
			APISecret: getenv("CLOUDINARY_API_SECRET", ""),
		},
		Funding: FundingConfig{
			PostingFeeCents: getint("POSTING_FEE_CENTS", 200),
			PostingFeeCcy:   getenv("POSTING_FEE_CURRENCY", "EUR"),
			ReportingCcy:    getenv("REPORTING_CURRENCY", "EUR"),
			Rates: map[string]float64{
				"EUR": 1.0,
				"USD": 0.92,
				"GBP": 1.17,
				"CAD": 0.67,
				"AUD": 0.60,
			},
			MaxListLimit:     100,
			DefaultListLimit: 50,
		},
		Stats: StatsConfig{
			RefreshInterval: getdur("STATS_REFRESH_INTERVAL", 30*time.Second),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
