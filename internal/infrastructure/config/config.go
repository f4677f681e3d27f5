package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIKey gates every endpoint behind an X-API-Key header when set.
	// Empty means the check is disabled.
	APIKey string `env:"API_KEY"`

	JWT      JWTConfig
	Password PasswordConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
	// RevocationEnabled turns on the Redis-backed refresh-token
	// denylist consulted on refresh and logout.
	RevocationEnabled bool `env:"JWT_REVOCATION_ENABLED, default=false"`
}

type PasswordConfig struct {
	MinLength int `env:"PASSWORD_MIN_LENGTH, default=8"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
