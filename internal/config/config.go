package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		MigrationsPath  string   `yaml:"migrations_path" env:"SERVER_MIGRATIONS_PATH"`
		AllowedOrigins  []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Store struct {
		Driver string `yaml:"driver" env:"STORE_DRIVER"`
		Seed   bool   `yaml:"seed" env:"STORE_SEED"`
	} `yaml:"store"`

	Redis struct {
		URL      string `yaml:"url" env:"REDIS_URL"`
		Channel  string `yaml:"channel" env:"REDIS_CHANNEL"`
		PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
	} `yaml:"redis"`

	AMQP struct {
		URL      string `yaml:"url" env:"AMQP_URL"`
		Exchange string `yaml:"exchange" env:"AMQP_EXCHANGE"`
	} `yaml:"amqp"`

	Identity struct {
		Secret string `yaml:"secret" env:"IDENTITY_SECRET"`
		Issuer string `yaml:"issuer" env:"IDENTITY_ISSUER"`
	} `yaml:"identity"`

	Suggest struct {
		Endpoint string `yaml:"endpoint" env:"SUGGEST_ENDPOINT"`
		APIKey   string `yaml:"api_key" env:"SUGGEST_API_KEY"`
		Model    string `yaml:"model" env:"SUGGEST_MODEL"`
		Timeout  string `yaml:"timeout" env:"SUGGEST_TIMEOUT"`
	} `yaml:"suggest"`

	Video struct {
		BaseURL    string `yaml:"base_url" env:"VIDEO_BASE_URL"`
		RoomPrefix string `yaml:"room_prefix" env:"VIDEO_ROOM_PREFIX"`
	} `yaml:"video"`

	Feed struct {
		Size         int `yaml:"size" env:"FEED_SIZE"`
		DiscoverSize int `yaml:"discover_size" env:"FEED_DISCOVER_SIZE"`
	} `yaml:"feed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "10s"
	config.Server.MigrationsPath = "migrations"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campusconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Store.Driver = StoreDriverPostgres

	config.Redis.Channel = "campusconnect:changes"
	config.Redis.PoolSize = 10

	config.AMQP.Exchange = "campusconnect.events"

	config.Identity.Issuer = "campusconnect.app"

	config.Suggest.Model = "gemini-2.5-flash"
	config.Suggest.Timeout = "15s"

	config.Video.BaseURL = "https://meet.jit.si/"
	config.Video.RoomPrefix = "CampusConnect-"

	config.Feed.Size = 5
	config.Feed.DiscoverSize = 3

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Store.Driver {
	case StoreDriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection lifetime: %w", err)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.Identity.Secret == "" {
		return fmt.Errorf("identity secret is required")
	}

	if _, err := time.ParseDuration(config.Suggest.Timeout); err != nil {
		return fmt.Errorf("invalid suggestion timeout: %w", err)
	}

	if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if config.Feed.Size <= 0 {
		return fmt.Errorf("feed size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
