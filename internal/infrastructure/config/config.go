package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cart storage backends
const (
	CartBackendFile   = "file"
	CartBackendRedis  = "redis"
	CartBackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	API     APIConfig
	Catalog CatalogConfig
	Cart    CartConfig
	Redis   RedisConfig
	Admin   AdminConfig
	Storage StorageConfig
	Host    HostConfig
	Log     LogConfig
	Metrics MetricsConfig
	Tracing TracingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name          string
	Env           string
	CurrencyLabel string
}

// APIConfig holds the backend API settings
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// CatalogConfig holds storefront catalog settings
type CatalogConfig struct {
	Categories []string
}

// CartConfig selects where the cart is persisted
type CartConfig struct {
	Backend    string // file, redis, sqlite
	Key        string
	FilePath   string
	SQLitePath string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AdminConfig holds the admin API credential settings
type AdminConfig struct {
	Token  string
	Header string
}

// StorageConfig holds S3-compatible object storage settings used for
// product image uploads
type StorageConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
	PublicBaseURL string
}

// Enabled reports whether enough is configured to upload images
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

// HostConfig holds the embedding host hook endpoints
type HostConfig struct {
	ExpandURL string
	CloseURL  string
	Timeout   time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MetricsConfig holds the prometheus endpoint settings
type MetricsConfig struct {
	Addr string
}

// TracingConfig holds the OTLP span export settings. An empty endpoint
// disables export.
type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LUBEX_ prefix (e.g., LUBEX_ADMIN_TOKEN)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path
// searches the default locations.
func LoadFrom(path string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".lubex"))
		}
		v.AddConfigPath("/etc/lubex")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LUBEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:          v.GetString("app.name"),
			Env:           v.GetString("app.env"),
			CurrencyLabel: v.GetString("app.currency_label"),
		},
		API: APIConfig{
			BaseURL:   v.GetString("api.base_url"),
			Timeout:   v.GetDuration("api.timeout"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Catalog: CatalogConfig{
			Categories: v.GetStringSlice("catalog.categories"),
		},
		Cart: CartConfig{
			Backend:    v.GetString("cart.backend"),
			Key:        v.GetString("cart.key"),
			FilePath:   v.GetString("cart.file_path"),
			SQLitePath: v.GetString("cart.sqlite_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Admin: AdminConfig{
			Token:  v.GetString("admin.token"),
			Header: v.GetString("admin.header"),
		},
		Storage: StorageConfig{
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
		},
		Host: HostConfig{
			ExpandURL: v.GetString("host.expand_url"),
			CloseURL:  v.GetString("host.close_url"),
			Timeout:   v.GetDuration("host.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
		Tracing: TracingConfig{
			Endpoint:    v.GetString("tracing.endpoint"),
			Insecure:    v.GetBool("tracing.insecure"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lubex-storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.CurrencyLabel == "" {
		cfg.App.CurrencyLabel = "Birr"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "lubex-storefront/1.0"
	}
	if len(cfg.Catalog.Categories) == 0 {
		cfg.Catalog.Categories = append([]string(nil), catalog.DefaultCategories...)
	}
	if cfg.Cart.Backend == "" {
		cfg.Cart.Backend = CartBackendFile
	}
	if cfg.Cart.Key == "" {
		cfg.Cart.Key = "lubex_cart"
	}
	if cfg.Cart.FilePath == "" {
		cfg.Cart.FilePath = defaultDataPath("cart.json")
	}
	if cfg.Cart.SQLitePath == "" {
		cfg.Cart.SQLitePath = defaultDataPath("cart.db")
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Admin.Header == "" {
		cfg.Admin.Header = "x-admin-token"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Host.Timeout == 0 {
		cfg.Host.Timeout = 3 * time.Second
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
}

// defaultDataPath places local client data under ~/.lubex
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lubex", name)
	}
	return filepath.Join(home, ".lubex", name)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	switch c.Cart.Backend {
	case CartBackendFile, CartBackendRedis, CartBackendSQLite:
	default:
		return fmt.Errorf("cart.backend must be one of file, redis, sqlite, got %q", c.Cart.Backend)
	}

	if c.Storage.PublicBaseURL != "" {
		if _, err := url.Parse(c.Storage.PublicBaseURL); err != nil {
			return fmt.Errorf("storage.public_base_url is invalid: %w", err)
		}
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
