package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const devJWTSecret = "dev_secret_change_me"

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークンの有効期限

	GoEnv    string // dev/prod/test
	LogLevel string

	CheckoutTimeout time.Duration   // 決済トランザクションの上限時間
	InitialBalance  decimal.Decimal // 登録時に付与する残高

	UploadDir      string
	MaxUploadBytes int64

	RedisAddr      string // 空ならトークンはDBに保存
	VerifyTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	PublicBaseURL  string // 確認・再設定リンクのベース

	SeedSampleData bool
	AdminEmail     string
	AdminPassword  string
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// DSNを組み立てる
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Loadは.envを読んでから環境変数を読む。.envが無くてもエラーにしない
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnvは環境変数だけから組み立てる
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8080"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	switch cfg.GoEnv {
	case "dev", "prod", "test":
	default:
		return Config{}, fmt.Errorf("GO_ENV must be dev, prod or test: %q", cfg.GoEnv)
	}

	if cfg.PostgresPort, err = intEnv("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutTimeout, err = durationEnv("CHECKOUT_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.VerifyTokenTTL, err = durationEnv("VERIFY_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ResetTokenTTL, err = durationEnv("RESET_TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes, err = int64Env("MAX_UPLOAD_BYTES", 5<<20); err != nil {
		return Config{}, err
	}
	if cfg.SeedSampleData, err = boolEnv("SEED_SAMPLE_DATA", cfg.GoEnv == "dev"); err != nil {
		return Config{}, err
	}

	cfg.InitialBalance = decimal.NewFromInt(10000000)
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("INITIAL_BALANCE must be decimal: %w", err)
		}
		if d.IsNegative() {
			return Config{}, fmt.Errorf("INITIAL_BALANCE must not be negative")
		}
		cfg.InitialBalance = d
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.CheckoutTimeout <= 0 {
		return Config{}, fmt.Errorf("CHECKOUT_TIMEOUT must be positive")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
