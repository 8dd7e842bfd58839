package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Session
	SessionSecret string
	SessionMaxAge int

	// Password reset
	ResetTokenTTL time.Duration
	BcryptCost    int

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Worker
	CleanupInterval time.Duration
	MetricsPort     string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// ENV_FILE（デフォルト .env）が存在すれば先に読み込むが、
// 既に設定済みの環境変数は上書きしない。
// 必須環境変数が欠けている場合は、欠けている名前をすべて挙げたエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(envOr("ENV_FILE", ".env", parseString)); err != nil {
		return nil, err
	}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		DatabaseURL:   required("DATABASE_URL"),
		SessionSecret: required("SESSION_SECRET"),
		BaseURL:       required("BASE_URL"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	cfg.DBMaxOpenConns = envOr("DB_MAX_OPEN_CONNS", 20, strconv.Atoi)
	cfg.DBMaxIdleConns = envOr("DB_MAX_IDLE_CONNS", 5, strconv.Atoi)
	cfg.DBConnMaxLifetime = envOr("DB_CONN_MAX_LIFETIME", 30*time.Minute, time.ParseDuration)

	cfg.SessionMaxAge = envOr("SESSION_MAX_AGE", 86400, strconv.Atoi)
	cfg.ResetTokenTTL = envOr("RESET_TOKEN_TTL", 30*time.Minute, time.ParseDuration)
	cfg.BcryptCost = envOr("BCRYPT_COST", 10, strconv.Atoi)

	cfg.RateLimitGeneral = envOr("RATE_LIMIT_GENERAL", 120, strconv.Atoi)
	cfg.RateLimitAuth = envOr("RATE_LIMIT_AUTH", 10, strconv.Atoi)

	cfg.CleanupInterval = envOr("CLEANUP_INTERVAL", 24*time.Hour, time.ParseDuration)
	cfg.MetricsPort = envOr("METRICS_PORT", "9090", parseString)
	cfg.ServerPort = envOr("SERVER_PORT", "8080", parseString)

	// HTTPSで公開されている場合のみSecure属性を付ける
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = envOr("COOKIE_DOMAIN", "", parseString)
	cfg.CORSAllowedOrigin = envOr("CORS_ALLOWED_ORIGIN", "http://localhost:3000", parseString)

	return cfg, nil
}

// loadDotEnv はdotenvファイルを読み込む。ファイルが無い場合は何もしない。
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func parseString(v string) (string, error) { return v, nil }

// envOr はkeyの値をparseで変換して返す。未設定や変換できない値ならdefaultValを返す。
func envOr[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parsed, err := parse(v)
	if err != nil {
		return defaultVal
	}
	return parsed
}
