package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// MongoConfig holds event store settings. An empty URL switches the service
// to the in-memory store (development only).
type MongoConfig struct {
	URL      string
	Database string
	PoolSize int
}

// RedisConfig holds admin token store settings. An empty URL falls back to
// the in-memory token store.
type RedisConfig struct {
	URL string
	DB  int
}

// KafkaConfig holds the optional attack event publisher settings.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// ClickhouseConfig holds the optional analytics mirror settings.
type ClickhouseConfig struct {
	Enabled  bool
	URL      string
	Database string
	Username string
	Password string
	Table    string
}

// AdminConfig holds dashboard authentication settings.
type AdminConfig struct {
	Password string
	TokenTTL time.Duration
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the full service configuration, loaded once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	Environment   string
	EndpointLabel string
	CORSOrigins   []string
	Server        ServerConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Clickhouse    ClickhouseConfig
	Admin         AdminConfig
	Logging       LoggingConfig
}

// LoadConfig reads configuration from the environment. A missing .env file
// is not an error; container deployments inject real environment variables.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		EndpointLabel: getEnv("HONEYPOT_ENDPOINT_LABEL", "/login"),
		CORSOrigins:   getEnvSlice("CORS_ORIGINS", []string{"*"}),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8001),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Mongo: MongoConfig{
			URL:      getEnv("MONGO_URL", ""),
			Database: getEnv("DB_NAME", "honeypot"),
			PoolSize: getEnvInt("MONGO_POOL_SIZE", 100),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			DB:  getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_ATTACK_TOPIC", "honeypot.attacks"),
		},
		Clickhouse: ClickhouseConfig{
			Enabled:  getEnvBool("CLICKHOUSE_ENABLED", false),
			URL:      getEnv("CLICKHOUSE_URL", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "honeypot"),
			Username: getEnv("CLICKHOUSE_USERNAME", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			Table:    getEnv("CLICKHOUSE_ATTACK_TABLE", "attack_events"),
		},
		Admin: AdminConfig{
			Password: getEnv("ADMIN_PASSWORD", "honeyadmin123"),
			TokenTTL: getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GetServerAddress returns the listen address for the HTTP server.
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
