package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Prism ad platform service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Geo        GeoConfig
	Quality    QualityConfig
	Analytics  AnalyticsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ReportTTL bounds how long cached performance reports stay fresh.
	ReportTTL time.Duration
}

// ClickHouseConfig configures the metrics warehouse connection.
type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	Database string
	User     string
	Password string
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled        bool
	RPS            float64
	Burst          int
	AnalyticsRPS   float64
	AnalyticsBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// GeoConfig configures GeoIP lookup for audience insights.
type GeoConfig struct {
	Enabled      bool
	DatabasePath string
}

// QualityConfig holds the thresholds used by ad review and performance
// monitoring. These were process-wide settings in an earlier iteration;
// they are carried explicitly so the services stay testable in isolation.
type QualityConfig struct {
	// ScoreThreshold is the minimum overall review score for automatic
	// approval (0-5 scale).
	ScoreThreshold float64
	// MinCTRPercent triggers a low-CTR alert when a campaign falls below it.
	MinCTRPercent float64
	// MaxFileSizeBytes is the creative upload ceiling.
	MaxFileSizeBytes int64
	// MaxVideoSeconds is the video creative duration ceiling.
	MaxVideoSeconds int
	// AutoPause pauses a campaign automatically on critical alerts.
	AutoPause bool
}

// AnalyticsConfig holds the normalization thresholds for risk scoring
// and the default forecast horizon.
type AnalyticsConfig struct {
	ExcellentCTR  float64
	ExcellentCVR  float64
	ExcellentROAS float64
	VarianceScale float64
	ForecastDays  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("PRISM_HTTP_ADDR", ":8080"),
			Env:             getEnv("PRISM_ENV", "development"),
			ShutdownTimeout: getDurationEnv("PRISM_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PRISM_DB_HOST", "localhost"),
			Port:     getIntEnv("PRISM_DB_PORT", 5432),
			User:     getEnv("PRISM_DB_USER", "prism"),
			Password: getEnv("PRISM_DB_PASSWORD", "prism_secret"),
			DBName:   getEnv("PRISM_DB_NAME", "prism"),
			SSLMode:  getEnv("PRISM_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("PRISM_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("PRISM_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:      getEnv("PRISM_REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("PRISM_REDIS_PASSWORD", ""),
			DB:        getIntEnv("PRISM_REDIS_DB", 0),
			ReportTTL: getDurationEnv("PRISM_REDIS_REPORT_TTL", 5*time.Minute),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("PRISM_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("PRISM_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("PRISM_CLICKHOUSE_DB", "prism"),
			User:     getEnv("PRISM_CLICKHOUSE_USER", "default"),
			Password: getEnv("PRISM_CLICKHOUSE_PASSWORD", ""),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("PRISM_AUTH_ENABLED", true),
			MasterKey: getEnv("PRISM_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("PRISM_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getBoolEnv("PRISM_RATE_LIMIT_ENABLED", true),
			RPS:            getFloatEnv("PRISM_RATE_LIMIT_RPS", 100),
			Burst:          getIntEnv("PRISM_RATE_LIMIT_BURST", 20),
			AnalyticsRPS:   getFloatEnv("PRISM_RATE_LIMIT_ANALYTICS_RPS", 25),
			AnalyticsBurst: getIntEnv("PRISM_RATE_LIMIT_ANALYTICS_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("PRISM_LOG_LEVEL", "info"),
			Format: getEnv("PRISM_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("PRISM_METRICS_ENABLED", true),
			Path:    getEnv("PRISM_METRICS_PATH", "/metrics"),
		},
		Geo: GeoConfig{
			Enabled:      getBoolEnv("PRISM_GEO_ENABLED", false),
			DatabasePath: getEnv("PRISM_GEO_DB_PATH", "/app/data/GeoLite2-City.mmdb"),
		},
		Quality: QualityConfig{
			ScoreThreshold:   getFloatEnv("PRISM_QUALITY_SCORE_THRESHOLD", 3.5),
			MinCTRPercent:    getFloatEnv("PRISM_QUALITY_MIN_CTR", 0.5),
			MaxFileSizeBytes: int64(getIntEnv("PRISM_QUALITY_MAX_FILE_SIZE", 10*1024*1024)),
			MaxVideoSeconds:  getIntEnv("PRISM_QUALITY_MAX_VIDEO_SECONDS", 30),
			AutoPause:        getBoolEnv("PRISM_QUALITY_AUTO_PAUSE", false),
		},
		Analytics: AnalyticsConfig{
			ExcellentCTR:  getFloatEnv("PRISM_ANALYTICS_EXCELLENT_CTR", 5),
			ExcellentCVR:  getFloatEnv("PRISM_ANALYTICS_EXCELLENT_CVR", 10),
			ExcellentROAS: getFloatEnv("PRISM_ANALYTICS_EXCELLENT_ROAS", 5),
			VarianceScale: getFloatEnv("PRISM_ANALYTICS_VARIANCE_SCALE", 1_000_000),
			ForecastDays:  getIntEnv("PRISM_ANALYTICS_FORECAST_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("PRISM_API_KEY_MASTER is required when auth is enabled")
	}
	if c.Analytics.ForecastDays < 1 || c.Analytics.ForecastDays > 90 {
		return fmt.Errorf("PRISM_ANALYTICS_FORECAST_DAYS must be in [1,90]")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
