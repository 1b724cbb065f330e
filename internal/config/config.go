package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	JWTSecret      string        // JWT_SECRET, signs the token cookie
	TokenTTL       time.Duration // token cookie lifetime
	DatabaseURL    string
	RedisURL       string
	FrontendURL    string        // allowed CORS origin
	QueryTimeout   time.Duration // per persistence round-trip bound
	HealthAdminKey string        // guards GET /reset
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "5555"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	frontend := viper.GetString("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:5173"
	}

	tokenTTL := viper.GetDuration("TOKEN_TTL")
	if tokenTTL == 0 {
		tokenTTL = time.Hour
	}
	queryTimeout := viper.GetDuration("QUERY_TIMEOUT")
	if queryTimeout == 0 {
		queryTimeout = 5 * time.Second
	}

	return &Config{
		Env:            env,
		Port:           port,
		JWTSecret:      viper.GetString("JWT_SECRET"),
		TokenTTL:       tokenTTL,
		DatabaseURL:    dbURL,
		RedisURL:       viper.GetString("REDIS_URL"),
		FrontendURL:    frontend,
		QueryTimeout:   queryTimeout,
		HealthAdminKey: viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}
