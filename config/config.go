package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Storage       StorageConfig
	OpenFoodFacts OpenFoodFactsConfig
	USDA          USDAConfig
	GenAI         GenAIConfig
	OCR           OCRConfig
	Cache         CacheConfig
	RateLimit     RateLimitConfig
	History       HistoryConfig
	Log           LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"` // CIDRs or IPs allowed to set X-Forwarded-For
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// StorageConfig selects and configures the document store
type StorageConfig struct {
	Type            string `mapstructure:"type"` // "s3", "postgres" or "memory"
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	UsersKey        string `mapstructure:"users_key"`
	ProfilesKey     string `mapstructure:"profiles_key"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
}

// OpenFoodFactsConfig holds Open Food Facts API configuration
type OpenFoodFactsConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	UserAgent         string `mapstructure:"user_agent"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// USDAConfig holds USDA API configuration. An empty key disables the fallback.
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GenAIConfig holds generative model configuration
type GenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	BaseURL     string  `mapstructure:"base_url"`
}

// OCRConfig holds Tesseract settings
type OCRConfig struct {
	Language    string `mapstructure:"language"`
	PageSegMode int    `mapstructure:"page_seg_mode"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// HistoryConfig holds product history settings
type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// LoadOptions tweak which settings Load insists on
type LoadOptions struct {
	// ForServer requires the secrets only the API server uses
	ForServer bool
}

// Load loads configuration for the API server
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{ForServer: true})
}

// LoadWithOptions loads configuration from a .env file, environment variables and config files
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if os.Getenv("NUTRISCAN_SERVER_ENVIRONMENT") != "production" {
		// A missing .env is the normal case outside local development
		_ = godotenv.Load()
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutriscan/")

	v.SetEnvPrefix("NUTRISCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config, opts); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h") // 30 days
	v.SetDefault("auth.issuer", "nutriscan")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-2")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.users_key", "users/credentials.json")
	v.SetDefault("storage.profiles_key", "users/profiles.json")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "NutriScan/1.0 (contact@nutriscan.app)")
	v.SetDefault("openfoodfacts.requests_per_minute", 100)

	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-2.0-flash")
	v.SetDefault("genai.temperature", 0.4)
	v.SetDefault("genai.base_url", "")

	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.page_seg_mode", 6)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "168h") // 7 days

	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("history.max_entries", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config, opts LoadOptions) error {
	if opts.ForServer {
		if err := validateServer(config); err != nil {
			return err
		}
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.History.MaxEntries <= 0 {
		return fmt.Errorf("history max entries must be positive, got: %d", config.History.MaxEntries)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}

// validateServer checks the settings only the API server needs
func validateServer(config *Config) error {
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required (set NUTRISCAN_AUTH_JWT_SECRET)")
	}

	if config.GenAI.APIKey == "" {
		return fmt.Errorf("generative model API key is required (set NUTRISCAN_GENAI_API_KEY)")
	}

	switch config.Storage.Type {
	case "s3":
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required when storage type is 's3'")
		}
	case "postgres":
		if config.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres DSN is required when storage type is 'postgres'")
		}
	case "memory":
	default:
		return fmt.Errorf("storage type must be 's3', 'postgres' or 'memory', got: %s", config.Storage.Type)
	}

	return nil
}
