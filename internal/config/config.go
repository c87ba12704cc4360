package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// EthereumConfig holds chain subscription configuration.
// StoryContract and MarketplaceContract are both required before any
// subscription is attempted.
type EthereumConfig struct {
	WebSocketURL        string        `mapstructure:"websocket_url"`
	RPCURL              string        `mapstructure:"rpc_url"`
	StoryContract       string        `mapstructure:"story_contract"`
	MarketplaceContract string        `mapstructure:"marketplace_contract"`
	StartBlock          uint64        `mapstructure:"start_block"`
	ResubscribeAttempts int           `mapstructure:"resubscribe_attempts"`
	ResubscribeBaseWait time.Duration `mapstructure:"resubscribe_base_wait"`
}

// NATSConfig holds NATS JetStream configuration for the notification stream
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// PinataConfig holds Pinata pinning credentials
type PinataConfig struct {
	BaseURL string `mapstructure:"base_url"`
	JWT     string `mapstructure:"jwt"`
}

// Web3StorageConfig holds web3.storage credentials
type Web3StorageConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// StorageConfig holds content-storage provider configuration.
// A provider is enabled only when its credentials are complete; the
// order of ProviderOrder is the fixed fallback order.
type StorageConfig struct {
	ProviderOrder []string          `mapstructure:"provider_order"`
	Retries       int               `mapstructure:"retries"`
	BaseDelay     time.Duration     `mapstructure:"base_delay"`
	MaxDelay      time.Duration     `mapstructure:"max_delay"`
	Pinata        PinataConfig      `mapstructure:"pinata"`
	Web3Storage   Web3StorageConfig `mapstructure:"web3storage"`
}

// GatewayConfig holds IPFS gateway configuration for metadata enrichment
type GatewayConfig struct {
	IPFSGateways []string      `mapstructure:"ipfs_gateways"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// ReconcilerConfig holds reconciler worker configuration
type ReconcilerConfig struct {
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	CursorSaveFreq  uint64        `mapstructure:"cursor_save_freq"`
	CursorSaveDelay time.Duration `mapstructure:"cursor_save_delay"`
}

// CacheConfig holds read-path cache TTLs
type CacheConfig struct {
	ListingTTL      time.Duration `mapstructure:"listing_ttl"`
	PriceHistoryTTL time.Duration `mapstructure:"price_history_ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
}

// SignedURLConfig holds signed download link configuration
type SignedURLConfig struct {
	Secret  string        `mapstructure:"secret"`
	BaseURL string        `mapstructure:"base_url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// ListenerConfig holds configuration for event-listener
type ListenerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	Cache      CacheConfig      `mapstructure:"cache"`
	SignedURL  SignedURLConfig  `mapstructure:"signed_url"`
}

// BackfillConfig holds configuration for backfill
type BackfillConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
}

// LoadListenerConfig loads configuration for event-listener
func LoadListenerConfig(configFile string, envPath string) (*ListenerConfig, error) {
	v := configureViper("event-listener", configFile, envPath)
	setCommonDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ListenerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateEthereum(&cfg.Ethereum); err != nil {
		return nil, err
	}
	if cfg.Ethereum.WebSocketURL == "" {
		return nil, errors.New("ethereum.websocket_url is required")
	}

	return &cfg, nil
}

// LoadBackfillConfig loads configuration for backfill
func LoadBackfillConfig(configFile string, envPath string) (*BackfillConfig, error) {
	v := configureViper("backfill", configFile, envPath)
	setCommonDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg BackfillConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateEthereum(&cfg.Ethereum); err != nil {
		return nil, err
	}
	if cfg.Ethereum.RPCURL == "" {
		return nil, errors.New("ethereum.rpc_url is required")
	}

	return &cfg, nil
}

// validateEthereum ensures required contract addresses are configured
// before any subscription is attempted
func validateEthereum(cfg *EthereumConfig) error {
	if cfg.StoryContract == "" {
		return errors.New("ethereum.story_contract is required")
	}
	if cfg.MarketplaceContract == "" {
		return errors.New("ethereum.marketplace_contract is required")
	}
	return nil
}

// EnabledStorageProviders returns the provider names with complete
// credentials, in the configured fallback order
func (c *StorageConfig) EnabledStorageProviders() []string {
	var enabled []string
	for _, name := range c.ProviderOrder {
		switch name {
		case "pinata":
			if c.Pinata.JWT != "" {
				enabled = append(enabled, name)
			}
		case "web3storage":
			if c.Web3Storage.Token != "" {
				enabled = append(enabled, name)
			}
		}
	}
	return enabled
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("ethereum.resubscribe_attempts", 5)
	v.SetDefault("ethereum.resubscribe_base_wait", "2s")
	v.SetDefault("nats.stream_name", "LEDGER_NOTIFICATIONS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("gateway.ipfs_gateways", []string{"https://ipfs.io", "https://cloudflare-ipfs.com"})
	v.SetDefault("gateway.http_timeout", "30s")
	v.SetDefault("reconciler.workers", 8)
	v.SetDefault("reconciler.queue_size", 2048)
	v.SetDefault("reconciler.max_attempts", 3)
	v.SetDefault("reconciler.retry_base_delay", "500ms")
	v.SetDefault("reconciler.cursor_save_freq", 2)
	v.SetDefault("reconciler.cursor_save_delay", "30s")
	v.SetDefault("storage.provider_order", []string{"pinata", "web3storage"})
	v.SetDefault("storage.retries", 3)
	v.SetDefault("storage.base_delay", "1s")
	v.SetDefault("storage.max_delay", "30s")
	v.SetDefault("storage.pinata.base_url", "https://api.pinata.cloud")
	v.SetDefault("storage.web3storage.base_url", "https://api.web3.storage")
	v.SetDefault("cache.listing_ttl", "30s")
	v.SetDefault("cache.price_history_ttl", "60s")
	v.SetDefault("cache.max_entries", 1024)
	v.SetDefault("signed_url.ttl", "15m")
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("HERITAGE_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.rpc_url",
		"ethereum.story_contract",
		"ethereum.marketplace_contract",
		"ethereum.start_block",
		"ethereum.resubscribe_attempts",
		"ethereum.resubscribe_base_wait",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Storage providers
		"storage.provider_order",
		"storage.retries",
		"storage.base_delay",
		"storage.max_delay",
		"storage.pinata.base_url",
		"storage.pinata.jwt",
		"storage.web3storage.base_url",
		"storage.web3storage.token",
		// Gateway
		"gateway.ipfs_gateways",
		"gateway.http_timeout",
		// Reconciler
		"reconciler.workers",
		"reconciler.queue_size",
		"reconciler.max_attempts",
		"reconciler.retry_base_delay",
		"reconciler.cursor_save_freq",
		"reconciler.cursor_save_delay",
		// Cache
		"cache.listing_ttl",
		"cache.price_history_ttl",
		"cache.max_entries",
		// Signed URLs
		"signed_url.secret",
		"signed_url.base_url",
		"signed_url.ttl",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
