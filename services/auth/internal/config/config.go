package config

import (
	"os"
	"time"

	_ "github.com/lib/pq"

	pkgconfig "github.com/taskhive/taskhive/pkg/config"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers []string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string

	RefreshTTL time.Duration
}

// Load assembles the full auth-service configuration and validates it in one
// place. Anything the token engine cannot run without kills the process here,
// never on the first request.
func Load() Config {
	pkgconfig.LoadDotEnv()

	cfg := Config{
		ListenAddr: pkgconfig.EnvDefault("AUTH_ADDR", ":8081"),
		LogLevel:   pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   pkgconfig.EnvDefault("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),

		RefreshTTL: time.Duration(pkgconfig.EnvIntDefault("REFRESH_TTL_DAYS", 7)) * 24 * time.Hour,
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	pkgconfig.MustNonEmpty(cfg.JWTIssuer, "JWT_ISSUER")
	pkgconfig.MustNonEmpty(cfg.JWTAudience, "JWT_AUDIENCE")

	return cfg
}
