package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

const devSecret = "dev-secret-change-in-production"

// Storage drivers accepted in DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

var (
	ErrSecretRequired = errors.New("ACCESS_TOKEN_SECRET must be set in production environment")
	ErrUnknownDriver  = errors.New("unknown DB_DRIVER")
)

type Config struct {
	Port        string
	Env         string
	Driver      string
	MongoURI    string
	DBName      string
	MySQLDSN    string
	TokenSecret string
	TokenExpiry time.Duration
	CORSOrigins []string
	LogLevel    slog.Level
}

// IsProduction reports whether cookies must be issued as Secure/SameSite=None.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "5000"),
		Env:         getEnv("NODE_ENV", "development"),
		Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
		DBName:      getEnv("DB_NAME", "meal-mafia"),
		MySQLDSN:    getEnv("MYSQL_DSN", "root:password@tcp(127.0.0.1:3306)/mealmafia?parseTime=true"),
		TokenSecret: getEnv("ACCESS_TOKEN_SECRET", devSecret),
		TokenExpiry: 365 * 24 * time.Hour,
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		cfg.MongoURI = MongoURI(os.Getenv("DB_USER"), os.Getenv("DB_PASS"), getEnv("DB_HOST", "cluster0.iduz7rm.mongodb.net"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	switch cfg.Driver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	if cfg.IsProduction() && cfg.TokenSecret == devSecret {
		return Config{}, ErrSecretRequired
	}

	return cfg, nil
}

// MongoURI builds the Atlas SRV connection string, escaping the credentials.
func MongoURI(user, pass, host string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority&appName=Cluster0",
	}
	if user != "" {
		u.User = url.UserPassword(user, pass)
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
