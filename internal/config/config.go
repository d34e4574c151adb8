package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string

	SecretKey string
	// EphemeralSecret is set when no secret was configured and Load generated one.
	// Tokens then do not survive a restart.
	EphemeralSecret          bool
	Algorithm                string
	AccessTokenExpireMinutes int
	BcryptCost               int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading a .env file from
// the working directory if one exists. Variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:                     8080,
		DatabaseURL:              firstEnv("TODOLIST_DATABASE_URL", "DATABASE_URL"),
		SecretKey:                firstEnv("TODOLIST_SECRET_KEY", "SECRET_KEY"),
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
		LogLevel:                 "info",
		LogFormat:                "text",
	}

	if v := os.Getenv("TODOLIST_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			cfg.Port = p
		}
	}

	if v := strings.ToUpper(strings.TrimSpace(firstEnv("TODOLIST_ALGORITHM", "ALGORITHM"))); v != "" {
		cfg.Algorithm = v
	}

	if v := firstEnv("TODOLIST_ACCESS_TOKEN_EXPIRE_MINUTES", "ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AccessTokenExpireMinutes = n
		}
	}

	if v := os.Getenv("TODOLIST_BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 4 && n <= 31 {
			cfg.BcryptCost = n
		}
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TODOLIST_LOG_LEVEL"))); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TODOLIST_LOG_FORMAT"))); v == "json" || v == "text" {
		cfg.LogFormat = v
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		cfg.EphemeralSecret = true
	}

	return cfg
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate secret key: " + err.Error())
	}
	return hex.EncodeToString(b)
}
