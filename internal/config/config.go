package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Remote    RemoteConfig
	Store     StoreConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// RemoteConfig holds the two connection secrets for the remote tables.
// Remote mode is on only when both are present.
type RemoteConfig struct {
	URL          string
	Key          string
	Migrate      bool
	ProbeInitial time.Duration
	ProbeMax     time.Duration
}

type StoreConfig struct {
	Dir  string
	File string
	// Ephemeral is set on serverless platforms where only the temp dir is writable
	Ephemeral bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

func Load() *Config {
	// Populate the process environment first so child tools see the same values
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("REMOTE_DB_URL", "")
	v.SetDefault("REMOTE_DB_KEY", "")
	v.SetDefault("REMOTE_DB_MIGRATE", true)
	v.SetDefault("REMOTE_PROBE_INITIAL", "1s")
	v.SetDefault("REMOTE_PROBE_MAX", "1m")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DATA_FILE", "db.json")
	v.SetDefault("VERCEL", "")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("JWT_ACCESS_EXPIRY", 60)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "storefront.changes")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Could not read config file: %v", err)
		}
	}

	store := StoreConfig{
		Dir:       v.GetString("DATA_DIR"),
		File:      v.GetString("DATA_FILE"),
		Ephemeral: v.GetString("VERCEL") != "",
	}
	if store.Ephemeral {
		store.Dir = filepath.Join(os.TempDir(), "storefront")
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Remote: RemoteConfig{
			URL:          strings.TrimSpace(v.GetString("REMOTE_DB_URL")),
			Key:          strings.TrimSpace(v.GetString("REMOTE_DB_KEY")),
			Migrate:      v.GetBool("REMOTE_DB_MIGRATE"),
			ProbeInitial: v.GetDuration("REMOTE_PROBE_INITIAL"),
			ProbeMax:     v.GetDuration("REMOTE_PROBE_MAX"),
		},
		Store: store,
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
		},
	}
}

// Enabled reports whether both remote secrets are configured
func (r RemoteConfig) Enabled() bool {
	return r.URL != "" && r.Key != ""
}

// DataPath is the location of the local JSON document
func (s StoreConfig) DataPath() string {
	return filepath.Join(s.Dir, s.File)
}

// RedisEnabled reports whether a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// IsDevelopment reports whether the server runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
