// Package config loads application configuration from environment
// variables. main calls godotenv.Load first so a local .env file works in
// development; in production the variables come from the deployment.
package config

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values. The token secret and
// lifetimes are copied into an auth.Config at startup; core packages
// never read the environment themselves.
type Config struct {
	Env         string        // application environment (development/production)
	Port        string        // HTTP port to listen on
	DBUser      string        // database username
	DBPass      string        // database password (optional)
	DBHost      string        // database host address
	DBPort      string        // database port number
	DBName      string        // database name
	DBConnLimit int           // max open connections in the pool
	JWTSecret   string        // secret used to sign tokens (required)
	JWTIssuer   string        // issuer claim on signed tokens
	AccessTTL   time.Duration // access token lifetime
	RefreshTTL  time.Duration // refresh token lifetime
	BcryptCost  int           // bcrypt cost for password hashing
}

// Load reads configuration from the environment. JWT_SECRET is required;
// everything else has a development default. The defaults are not meant
// for production deployments.
func Load() Config {
	return Config{
		Env:         envStr("APP_ENV", "development"),
		Port:        envStr("PORT", "5000"),
		DBUser:      envStr("DB_USER", "root"),
		DBPass:      os.Getenv("DB_PASSWORD"),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envStr("DB_PORT", "3306"),
		DBName:      envStr("DB_NAME", "rgr_db"),
		DBConnLimit: envInt("DB_CONNECTION_LIMIT", 10),
		JWTSecret:   must("JWT_SECRET"),
		JWTIssuer:   envStr("JWT_ISSUER", "rgr-api"),
		AccessTTL:   envDur("JWT_EXPIRES_IN", 24*time.Hour),
		RefreshTTL:  envDur("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		BcryptCost:  envInt("BCRYPT_ROUNDS", 12),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
