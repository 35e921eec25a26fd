package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Log          LogConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	ERP          ERPConfig
	Storefront   StorefrontConfig
	InventoryExt InventoryExtConfig
	Scheduler    SchedulerConfig
	HTTP         HTTPConfig
	Stores       []StoreConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN builds the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings (run locks)
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ERPConfig holds the ERP item API client settings
type ERPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StorefrontConfig holds the storefront REST client settings. Full-catalog
// operations against the storefront can take tens of minutes, hence the
// separate long timeout.
type StorefrontConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
}

// InventoryExtConfig holds the inventory-extension REST client settings
type InventoryExtConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SchedulerConfig holds the background sync loop settings
type SchedulerConfig struct {
	Enabled      bool
	TickInterval time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FieldMappingConfig names which ERP source field plays which role for a
// store. Empty entries leave the role unmapped.
type FieldMappingConfig struct {
	InternalID     string `mapstructure:"internal_id"`
	LegacyID       string `mapstructure:"legacy_id"`
	SKU            string `mapstructure:"sku"`
	Barcode        string `mapstructure:"barcode"`
	Name           string `mapstructure:"name"`
	Category       string `mapstructure:"category"`
	Unit           string `mapstructure:"unit"`
	Group          string `mapstructure:"group"`
	VatCode        string `mapstructure:"vat_code"`
	Quantity       string `mapstructure:"quantity"`
	RetailPrice    string `mapstructure:"retail_price"`
	WholesalePrice string `mapstructure:"wholesale_price"`
	SalePrice      string `mapstructure:"sale_price"`
	PurchasePrice  string `mapstructure:"purchase_price"`
	Discount       string `mapstructure:"discount"`
}

// StoreConfig holds one store's sync settings
type StoreConfig struct {
	ID                      string             `mapstructure:"id"`
	Enabled                 bool               `mapstructure:"enabled"`
	FieldMapping            FieldMappingConfig `mapstructure:"field_mapping"`
	PrimaryCodeField        string             `mapstructure:"primary_code_field"`  // sku or barcode
	SecondaryCodeField      string             `mapstructure:"secondary_code_field"`
	CreateEnabled           bool               `mapstructure:"create_enabled"`
	UpdateEnabled           bool               `mapstructure:"update_enabled"`
	MaxBatchSize            int                `mapstructure:"max_batch_size"`
	ChunkSize               int                `mapstructure:"chunk_size"`
	ChunkDelay              time.Duration      `mapstructure:"chunk_delay"`
	SyncInterval            time.Duration      `mapstructure:"sync_interval"`
	StorefrontEnabled       bool               `mapstructure:"storefront_enabled"`
	StorefrontCreateMissing bool               `mapstructure:"storefront_create_missing"`
	StorefrontConcurrency   int                `mapstructure:"storefront_concurrency"`
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOCKSYNC_ prefix (e.g. STOCKSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		ERP: ERPConfig{
			BaseURL: v.GetString("erp.base_url"),
			APIKey:  v.GetString("erp.api_key"),
			Timeout: v.GetDuration("erp.timeout"),
		},
		Storefront: StorefrontConfig{
			BaseURL:        v.GetString("storefront.base_url"),
			ConsumerKey:    v.GetString("storefront.consumer_key"),
			ConsumerSecret: v.GetString("storefront.consumer_secret"),
			Timeout:        v.GetDuration("storefront.timeout"),
		},
		InventoryExt: InventoryExtConfig{
			BaseURL: v.GetString("inventory_ext.base_url"),
			APIKey:  v.GetString("inventory_ext.api_key"),
			Timeout: v.GetDuration("inventory_ext.timeout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      v.GetBool("scheduler.enabled"),
			TickInterval: v.GetDuration("scheduler.tick_interval"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
	}

	if err := v.UnmarshalKey("stores", &cfg.Stores); err != nil {
		return nil, fmt.Errorf("error parsing store settings: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills empty values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stocksync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 30 * time.Second
	}
	if cfg.Storefront.Timeout == 0 {
		// Full-catalog storefront passes are slow by nature.
		cfg.Storefront.Timeout = 30 * time.Minute
	}
	if cfg.InventoryExt.Timeout == 0 {
		cfg.InventoryExt.Timeout = 30 * time.Second
	}

	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler.TickInterval = time.Minute
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}

	seen := make(map[string]bool, len(c.Stores))
	for i := range c.Stores {
		store := &c.Stores[i]
		if store.ID == "" {
			return fmt.Errorf("stores[%d].id is required", i)
		}
		if seen[store.ID] {
			return fmt.Errorf("duplicate store id %q", store.ID)
		}
		seen[store.ID] = true

		switch store.PrimaryCodeField {
		case "", "sku", "barcode":
		default:
			return fmt.Errorf("stores[%d].primary_code_field must be sku or barcode", i)
		}
		switch store.SecondaryCodeField {
		case "", "sku", "barcode":
		default:
			return fmt.Errorf("stores[%d].secondary_code_field must be sku or barcode", i)
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
