package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/reports"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Reports  ReportConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig selects where orders come from. A non-empty DatabaseURL wins
// over CSVFile.
type DataConfig struct {
	CSVFile       string
	DatabaseURL   string
	DatabaseTable string
	CacheEnabled  bool
	CacheDir      string
	LoadTimeout   time.Duration
}

type ReportConfig struct {
	Locale            string
	Currency          string
	FixedPivotRegions bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load reads the configuration from the environment. Values from a .env
// file in the working directory are applied first without overriding
// variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var e env
	cfg := &Config{
		Server: ServerConfig{
			Host:            e.getString("SERVER_HOST", "localhost"),
			Port:            e.getInt("SERVER_PORT", 8084),
			ReadTimeout:     e.getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    e.getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     e.getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			CSVFile:       e.getString("CSV_FILE", "superstore.csv"),
			DatabaseURL:   e.getString("DATABASE_URL", ""),
			DatabaseTable: e.getString("DATABASE_TABLE", "superstore"),
			CacheEnabled:  e.getBool("CACHE_ENABLED", true),
			CacheDir:      e.getString("CACHE_DIR", ".cache"),
			LoadTimeout:   e.getDuration("LOAD_TIMEOUT", 2*time.Minute),
		},
		Reports: ReportConfig{
			Locale:            e.getString("REPORT_LOCALE", "en-US"),
			Currency:          e.getString("REPORT_CURRENCY", "USD"),
			FixedPivotRegions: e.getBool("PIVOT_FIXED_REGIONS", false),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(e.getString("LOG_LEVEL", "info")),
			Format: strings.ToLower(e.getString("LOG_FORMAT", "json")),
		},
		Security: SecurityConfig{
			EnableRateLimit: e.getBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    e.getInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  e.getInt("SECURITY_RATE_LIMIT_BURST", 20),
			AllowedOrigins:  e.getList("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  e.getList("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	for name, d := range map[string]time.Duration{
		"server read timeout":     c.Server.ReadTimeout,
		"server write timeout":    c.Server.WriteTimeout,
		"server shutdown timeout": c.Server.ShutdownTimeout,
		"load timeout":            c.Data.LoadTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Data.DatabaseURL == "" && c.Data.CSVFile == "" {
		return errors.New("either CSV_FILE or DATABASE_URL must be set")
	}
	if c.Data.DatabaseURL != "" && c.Data.DatabaseTable == "" {
		return errors.New("database table cannot be empty")
	}
	if c.Data.CacheEnabled && c.Data.CacheDir == "" {
		return errors.New("cache directory cannot be empty when caching is enabled")
	}

	if _, err := format.New(c.Reports.Locale, c.Reports.Currency); err != nil {
		return err
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return errors.New("rate limit RPS must be positive")
	}
	if c.Security.RateLimitBurst <= 0 {
		return errors.New("rate limit burst must be positive")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Formatter builds the display formatter for the configured locale and
// currency.
func (c *Config) Formatter() (*format.Formatter, error) {
	return format.New(c.Reports.Locale, c.Reports.Currency)
}

// env reads typed variables and remembers every value that failed to
// parse, so a typo is reported instead of silently falling back.
type env struct {
	errs []error
}

func (e *env) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (e *env) getString(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (e *env) getInt(key string, defaultValue int) int {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return n
}

func (e *env) getBool(key string, defaultValue bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, value))
		return defaultValue
	}
	return b
}

func (e *env) getDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration", key, value))
		return defaultValue
	}
	return d
}

func (e *env) getList(key string, defaultValue []string) []string {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// EngineOptions translates the report settings into engine options.
func (c *Config) EngineOptions() []reports.Option {
	var opts []reports.Option
	if c.Reports.FixedPivotRegions {
		opts = append(opts, reports.WithFixedPivotRegions())
	}
	return opts
}
